package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"wayfinder_backend/internal/geocode"
	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/events"
	"wayfinder_backend/platform/geo"
	"wayfinder_backend/platform/logger"
)

// ---- fakes -----------------------------------------------------------------

type searchConfig struct {
	limit        int
	stationLimit int
	radius       float64
	cacheSize    int
	cacheTTL     time.Duration
}

func (c searchConfig) GetResultLimit() int        { return c.limit }
func (c searchConfig) GetStationMatchLimit() int  { return c.stationLimit }
func (c searchConfig) GetRadiusKm() float64       { return c.radius }
func (c searchConfig) GetCacheTTL() time.Duration { return c.cacheTTL }
func (c searchConfig) GetCacheSize() int          { return c.cacheSize }

func defaultConfig() searchConfig {
	return searchConfig{limit: 12, stationLimit: 3, radius: 10, cacheSize: 16, cacheTTL: time.Minute}
}

type fakeIntent struct {
	mu    sync.Mutex
	calls map[string]int
	parse func(query string) (json.RawMessage, error)
}

func newFakeIntent(parse func(query string) (json.RawMessage, error)) *fakeIntent {
	return &fakeIntent{calls: make(map[string]int), parse: parse}
}

func (f *fakeIntent) Parse(_ context.Context, query string, _ *geo.Point, _ string) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls[query]++
	f.mu.Unlock()
	return f.parse(query)
}

func (f *fakeIntent) callCount(query string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[query]
}

// passEnricher returns candidates untouched.
type passEnricher struct{}

func (passEnricher) Enrich(_ context.Context, candidates []transport.PlaceCandidate, _ *geo.Point, _ float64) []transport.PlaceCandidate {
	return candidates
}

type fakeStations struct {
	mu       sync.Mutex
	names    []string
	lastTerm string
}

func (f *fakeStations) Match(term string, limit int) []transport.StationMatch {
	f.mu.Lock()
	f.lastTerm = term
	f.mu.Unlock()

	matches := make([]transport.StationMatch, 0, limit)
	for i, name := range f.names {
		if !strings.Contains(strings.ToLower(name), strings.ToLower(term)) {
			continue
		}
		matches = append(matches, transport.StationMatch{
			ID:          name,
			Name:        name,
			Lines:       []string{"northern"},
			Coordinates: geo.Point{Lat: 51.52 + float64(i)*0.001, Lon: -0.09},
		})
		if len(matches) == limit {
			break
		}
	}
	return matches
}

func (f *fakeStations) term() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTerm
}

func newCoordinator(cfg searchConfig, parser IntentParser, enricher CandidateEnricher, stations StationMatcher) *Coordinator {
	log := logger.New("test")
	return NewCoordinator(cfg, parser, enricher, stations, events.NewInMemoryBus(log), log)
}

func placePayload(places ...map[string]any) json.RawMessage {
	doc := map[string]any{
		"parsedQuery": map[string]any{"searchTerm": "ignored"},
		"results":     places,
	}
	raw, _ := json.Marshal(doc)
	return raw
}

// ---- tests -----------------------------------------------------------------

func TestSubmit_EmptyQueryRejected(t *testing.T) {
	c := newCoordinator(defaultConfig(), nil, passEnricher{}, &fakeStations{})

	if _, err := c.Submit(context.Background(), "   ", nil, ""); err == nil {
		t.Fatal("expected validation error for blank query")
	}
}

func TestSubmit_CacheHitSkipsNetwork(t *testing.T) {
	intent := newFakeIntent(func(string) (json.RawMessage, error) {
		return placePayload(map[string]any{
			"name": "Soho Sushi", "latitude": 51.51, "longitude": -0.13,
		}), nil
	})
	c := newCoordinator(defaultConfig(), intent, passEnricher{}, &fakeStations{})

	first, err := c.Submit(context.Background(), "  Sushi ", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := c.Submit(context.Background(), "sushi", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatal("expected the identical cached result set on the second call")
	}
	if got := intent.callCount("  Sushi ") + intent.callCount("sushi"); got != 1 {
		t.Fatalf("expected exactly 1 intent call, got %d", got)
	}
}

func TestSubmit_SequenceGuardDiscardsStaleResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	intent := newFakeIntent(func(query string) (json.RawMessage, error) {
		if query == "first" {
			started <- struct{}{}
			<-release
		}
		return placePayload(map[string]any{
			"name": query, "latitude": 51.51, "longitude": -0.13,
		}), nil
	})
	c := newCoordinator(defaultConfig(), intent, passEnricher{}, &fakeStations{})

	var (
		wg       sync.WaitGroup
		firstSet *transport.SearchResultSet
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstSet, firstErr = c.Submit(context.Background(), "first", nil, "")
	}()

	<-started

	secondSet, err := c.Submit(context.Background(), "second", nil, "")
	if err != nil {
		t.Fatalf("second submission failed: %v", err)
	}
	if secondSet == nil || len(secondSet.Results) != 1 {
		t.Fatalf("unexpected second result: %+v", secondSet)
	}

	close(release)
	wg.Wait()

	if !errors.Is(firstErr, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded for stale submission, got %v", firstErr)
	}
	if firstSet != nil {
		t.Fatalf("stale submission must not produce a result, got %+v", firstSet)
	}

	// The stale result must not have been cached: resubmitting "first"
	// issues a fresh intent call instead of hitting the cache.
	if _, err := c.Submit(context.Background(), "first", nil, ""); err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if got := intent.callCount("first"); got != 2 {
		t.Fatalf("expected 2 intent calls for 'first' (no cache write), got %d", got)
	}
}

func TestSubmit_IntentFailureDegradesToStations(t *testing.T) {
	intent := newFakeIntent(func(string) (json.RawMessage, error) {
		return nil, errors.New("provider down")
	})
	stations := &fakeStations{names: []string{"Old Street", "Oval"}}
	c := newCoordinator(defaultConfig(), intent, passEnricher{}, stations)

	result, err := c.Submit(context.Background(), "old street", nil, "")
	if err != nil {
		t.Fatalf("intent failure must not fail the search: %v", err)
	}

	if result.Intent.SearchTerm != "old street" {
		t.Fatalf("expected literal query echoed, got %q", result.Intent.SearchTerm)
	}
	if len(result.Results) != 1 || result.Results[0].Type != transport.ResultTypeStation {
		t.Fatalf("expected the local station match to survive, got %+v", result.Results)
	}
}

func TestSubmit_NoIntentParserConfigured(t *testing.T) {
	stations := &fakeStations{names: []string{"Old Street"}}
	c := newCoordinator(defaultConfig(), nil, passEnricher{}, stations)

	result, err := c.Submit(context.Background(), "old street", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Intent.SearchTerm != "old street" || len(result.Results) != 1 {
		t.Fatalf("expected fallback intent with station match, got %+v", result)
	}
}

func TestSubmit_ExcludesCandidatesWithoutCoordinates(t *testing.T) {
	intent := newFakeIntent(func(string) (json.RawMessage, error) {
		return placePayload(
			map[string]any{"name": "Resolved", "latitude": 51.51, "longitude": -0.13},
			map[string]any{"name": "Never resolved"},
		), nil
	})
	c := newCoordinator(defaultConfig(), intent, passEnricher{}, &fakeStations{})

	result, err := c.Submit(context.Background(), "anything", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Results) != 1 || result.Results[0].Place.Name != "Resolved" {
		t.Fatalf("expected only the resolved candidate, got %+v", result.Results)
	}
}

func TestSubmit_TruncatesToResultCeiling(t *testing.T) {
	places := make([]map[string]any, 10)
	for i := range places {
		places[i] = map[string]any{"name": "P", "latitude": 51.5, "longitude": -0.1}
	}
	intent := newFakeIntent(func(string) (json.RawMessage, error) {
		return placePayload(places...), nil
	})
	cfg := defaultConfig()
	cfg.limit = 5

	c := newCoordinator(cfg, intent, passEnricher{}, &fakeStations{names: []string{"P Station"}})

	result, err := c.Submit(context.Background(), "p", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 5 {
		t.Fatalf("expected truncation to 5, got %d", len(result.Results))
	}
}

func TestSubmit_StationsMatchedOnEffectiveTerm(t *testing.T) {
	intent := newFakeIntent(func(string) (json.RawMessage, error) {
		return json.RawMessage(`{"parsedQuery": {"searchTerm": "sushi"}, "results": []}`), nil
	})
	stations := &fakeStations{}
	c := newCoordinator(defaultConfig(), intent, passEnricher{}, stations)

	if _, err := c.Submit(context.Background(), "find me sushi", nil, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stations.term(); got != "sushi" {
		t.Fatalf("expected stations matched on effective term %q, got %q", "sushi", got)
	}
}

func TestApplyVerified(t *testing.T) {
	intent := newFakeIntent(func(string) (json.RawMessage, error) {
		return placePayload(map[string]any{"name": "Cafe", "latitude": 51.5, "longitude": -0.1}), nil
	})
	c := newCoordinator(defaultConfig(), intent, passEnricher{}, &fakeStations{})

	if _, err := c.Submit(context.Background(), "cafe", nil, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verified := &transport.SearchResultSet{Intent: transport.ParsedIntent{SearchTerm: "cafe"}}
	if !c.ApplyVerified("cafe", verified) {
		t.Fatal("expected verified set applied to existing cache entry")
	}

	got, err := c.Submit(context.Background(), "cafe", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != verified {
		t.Fatal("expected cache to serve the verified result set")
	}

	if c.ApplyVerified("never-searched", verified) {
		t.Fatal("expected no-op for an absent cache key")
	}
}

// fakeGeocoder backs the real enricher in the end-to-end test.
type fakeGeocoder struct {
	results map[string]*geo.Point
}

func (f *fakeGeocoder) Resolve(_ context.Context, address string, _ *geo.BoundingBox) (*geo.Point, error) {
	return f.results[address], nil
}

func TestSubmit_EndToEndRadiusFiltering(t *testing.T) {
	origin := geo.Point{Lat: 51.5074, Lon: -0.1278}
	inRadius := geo.Point{Lat: 51.52, Lon: -0.12}             // ~1.5 km away
	outOfRadius := geo.Point{Lat: origin.Lat + 1, Lon: origin.Lon} // ~111 km away

	intent := newFakeIntent(func(string) (json.RawMessage, error) {
		return placePayload(
			map[string]any{"name": "Near Sushi", "address": "1 Near St"},
			map[string]any{"name": "Far Sushi", "address": "9 Far Rd"},
		), nil
	})
	enricher := geocode.NewEnricher(&fakeGeocoder{results: map[string]*geo.Point{
		"1 Near St": &inRadius,
		"9 Far Rd":  &outOfRadius,
	}}, 2, logger.New("test"))
	stations := &fakeStations{names: []string{"Old Street", "Oval"}}

	c := newCoordinator(defaultConfig(), intent, enricher, stations)

	result, err := c.Submit(context.Background(), "sushi", &origin, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Results) != 1 {
		t.Fatalf("expected exactly the in-radius candidate, got %+v", result.Results)
	}
	item := result.Results[0]
	if item.Type != transport.ResultTypePlace || item.Place.Name != "Near Sushi" {
		t.Fatalf("unexpected result item: %+v", item)
	}
	if item.Place.Coordinates == nil {
		t.Fatal("in-radius candidate must carry resolved coordinates")
	}
	if len(result.Results) > defaultConfig().limit {
		t.Fatalf("result ceiling exceeded: %d", len(result.Results))
	}
}
