package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/geo"
)

// NormalizedIntent is the reconciled output of the intent payload: always
// well-formed, regardless of what the provider sent.
type NormalizedIntent struct {
	Intent     transport.ParsedIntent
	Candidates []transport.PlaceCandidate
}

// payloadMatcher recognizes one known provider payload shape. Matchers are
// tried in order; the first one that claims the document wins. New provider
// shapes are added to the list, not to a conditional tree.
type payloadMatcher struct {
	name  string
	apply func(doc map[string]any, originalQuery string) (*NormalizedIntent, bool)
}

var payloadMatchers = []payloadMatcher{
	{name: "canonical", apply: matchCanonical},
	{name: "search-intent", apply: matchSearchIntent},
}

// NormalizeIntentPayload reconciles an arbitrary intent service response into
// a NormalizedIntent. It is a total function: any JSON-decodable input
// (null, arrays, partial or alias-shaped objects) yields a usable result,
// falling back to the original query with no candidates.
func NormalizeIntentPayload(raw json.RawMessage, originalQuery string) *NormalizedIntent {
	fallback := &NormalizedIntent{
		Intent:     transport.ParsedIntent{SearchTerm: originalQuery},
		Candidates: []transport.PlaceCandidate{},
	}

	if len(raw) == 0 {
		return fallback
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fallback
	}

	doc, ok := decoded.(map[string]any)
	if !ok {
		return fallback
	}

	for _, matcher := range payloadMatchers {
		if result, ok := matcher.apply(doc, originalQuery); ok {
			return result
		}
	}

	return fallback
}

// matchCanonical handles the documented {parsedQuery, results} shape,
// folding flattened filter aliases into the nested filter structure.
func matchCanonical(doc map[string]any, originalQuery string) (*NormalizedIntent, bool) {
	parsedQuery, ok := mapField(doc, "parsedQuery", "parsed_query")
	if !ok {
		return nil, false
	}

	intent := transport.ParsedIntent{
		SearchTerm: stringField(parsedQuery, "searchTerm", "search_term", "query"),
		AreaHint:   stringField(parsedQuery, "areaHint", "area_hint", "area"),
		TypeHint:   stringField(parsedQuery, "typeHint", "type_hint", "type"),
		Filters:    parseFilters(parsedQuery),
	}
	if intent.SearchTerm == "" {
		intent.SearchTerm = originalQuery
	}

	return &NormalizedIntent{
		Intent:     intent,
		Candidates: parsePlaces(sliceField(doc, "results", "places")),
	}, true
}

// matchSearchIntent handles the looser alias shape: an intermediate
// search-intent object plus one of several known names for the places array.
func matchSearchIntent(doc map[string]any, originalQuery string) (*NormalizedIntent, bool) {
	intentObj, hasIntent := mapField(doc, "searchIntent", "search_intent", "intent")
	places, hasPlaces := sliceFieldOK(doc, "suggestedPlaces", "suggested_places", "places", "results", "candidates")
	if !hasIntent && !hasPlaces {
		return nil, false
	}

	// Search term priority: query text, intent string, original input.
	term := ""
	if hasIntent {
		term = stringField(intentObj, "query", "queryText", "searchTerm", "search_term")
		if term == "" {
			term = stringField(intentObj, "intent")
		}
	}
	if term == "" {
		term = stringField(doc, "query", "queryText", "searchTerm")
	}
	if term == "" {
		term = originalQuery
	}

	intent := transport.ParsedIntent{SearchTerm: term}
	if hasIntent {
		intent.AreaHint = stringField(intentObj, "areaHint", "area_hint", "area", "location")
		intent.TypeHint = stringField(intentObj, "typeHint", "type_hint", "type", "category")
		intent.Filters = parseFilters(intentObj)
	}

	return &NormalizedIntent{
		Intent:     intent,
		Candidates: parsePlaces(places),
	}, true
}

// parseFilters reads the nested filters object and folds flattened alias
// keys on the parent into it. Returns nil when no filter data is present.
func parseFilters(obj map[string]any) *transport.IntentFilters {
	filters := transport.IntentFilters{}
	found := false

	if nested, ok := mapField(obj, "filters"); ok {
		filters.OpenNow = boolField(nested, "openNow", "open_now")
		filters.PriceRange = stringField(nested, "priceRange", "price_range", "price")
		filters.MinRating, _ = floatField(nested, "minRating", "min_rating")
		found = true
	}

	// Flattened aliases on the parent win over nothing, not over nested values.
	if !filters.OpenNow {
		if v := boolField(obj, "openNow", "open_now"); v {
			filters.OpenNow = v
			found = true
		}
	}
	if filters.PriceRange == "" {
		if v := stringField(obj, "priceRange", "price_range"); v != "" {
			filters.PriceRange = v
			found = true
		}
	}
	if filters.MinRating == 0 {
		if v, ok := floatField(obj, "minRating", "min_rating"); ok && v != 0 {
			filters.MinRating = v
			found = true
		}
	}

	if !found {
		return nil
	}
	return &filters
}

func parsePlaces(entries []any) []transport.PlaceCandidate {
	candidates := make([]transport.PlaceCandidate, 0, len(entries))
	for i, entry := range entries {
		place, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		candidates = append(candidates, parsePlace(place, i))
	}
	return candidates
}

func parsePlace(place map[string]any, index int) transport.PlaceCandidate {
	candidate := transport.PlaceCandidate{
		ID:          stringField(place, "id", "placeId", "place_id"),
		Name:        stringField(place, "name", "title", "placeName"),
		Description: stringField(place, "description", "summary"),
		Address:     stringField(place, "address", "formattedAddress", "formatted_address"),
		PriceRange:  stringField(place, "priceRange", "price_range", "price"),
		Website:     stringField(place, "website", "url"),
		Phone:       stringField(place, "phone", "phoneNumber", "phone_number"),
		Coordinates: resolveCoordinates(place),
		Sources:     parseSources(place),
	}
	candidate.Rating, _ = floatField(place, "rating")

	if candidate.ID == "" {
		candidate.ID = fmt.Sprintf("place-%d", index)
	}

	return candidate
}

// coordinateAliases is the ordered precedence list for coordinate field
// names: the first pair with a populated latitude wins.
var coordinateAliases = [][2]string{
	{"latitude", "longitude"},
	{"lat", "lng"},
	{"lat", "lon"},
	{"x", "y"},
}

// resolveCoordinates picks coordinates by alias precedence. A (0, 0) pair is
// treated as unpopulated: providers emit zeros when they are unsure.
func resolveCoordinates(place map[string]any) *geo.Point {
	for _, pair := range coordinateAliases {
		lat, latOK := floatField(place, pair[0])
		lon, lonOK := floatField(place, pair[1])
		if !latOK || !lonOK {
			continue
		}
		if lat == 0 && lon == 0 {
			continue
		}
		return &geo.Point{Lat: lat, Lon: lon}
	}
	return nil
}

// parseSources accepts string entries as-is and {name, url} objects folded
// into the "Name | URL" form.
func parseSources(place map[string]any) []string {
	raw, ok := sliceFieldOK(place, "sources")
	if !ok {
		return nil
	}

	sources := make([]string, 0, len(raw))
	for _, entry := range raw {
		switch v := entry.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				sources = append(sources, s)
			}
		case map[string]any:
			name := stringField(v, "name", "title")
			url := stringField(v, "url", "link")
			switch {
			case name != "" && url != "":
				sources = append(sources, name+" | "+url)
			case url != "":
				sources = append(sources, url)
			}
		}
	}

	if len(sources) == 0 {
		return nil
	}
	return sources
}

// ---- loosely-typed field access ------------------------------------------

func stringField(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := obj[key].(string); ok {
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func boolField(obj map[string]any, keys ...string) bool {
	for _, key := range keys {
		if v, ok := obj[key].(bool); ok {
			return v
		}
	}
	return false
}

// floatField accepts JSON numbers and numeric strings.
func floatField(obj map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case float64:
			return v, true
		case string:
			var f float64
			if _, err := fmt.Sscanf(strings.TrimSpace(v), "%g", &f); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func mapField(obj map[string]any, keys ...string) (map[string]any, bool) {
	for _, key := range keys {
		if v, ok := obj[key].(map[string]any); ok {
			return v, true
		}
	}
	return nil, false
}

func sliceField(obj map[string]any, keys ...string) []any {
	v, _ := sliceFieldOK(obj, keys...)
	return v
}

func sliceFieldOK(obj map[string]any, keys ...string) ([]any, bool) {
	for _, key := range keys {
		if v, ok := obj[key].([]any); ok {
			return v, true
		}
	}
	return nil, false
}
