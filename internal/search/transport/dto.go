// Package transport defines the request/response DTOs for the search module.
package transport

import "wayfinder_backend/platform/geo"

// SearchRequest represents the query parameters from the frontend.
type SearchRequest struct {
	Query   string   `form:"q" binding:"required,min=1"`
	Lat     *float64 `form:"lat" binding:"omitempty,min=-90,max=90"`
	Lon     *float64 `form:"lon" binding:"omitempty,min=-180,max=180"`
	Address string   `form:"address"`
}

// Origin returns the request's origin location, when both coordinates
// were supplied.
func (r SearchRequest) Origin() *geo.Point {
	if r.Lat == nil || r.Lon == nil {
		return nil
	}
	return &geo.Point{Lat: *r.Lat, Lon: *r.Lon}
}

// IntentFilters carries optional structured constraints extracted from the query.
type IntentFilters struct {
	OpenNow    bool   `json:"openNow,omitempty"`
	PriceRange string `json:"priceRange,omitempty"`
	MinRating  float64 `json:"minRating,omitempty"`
}

// ParsedIntent is the canonical structured interpretation of a free-text
// query. It is produced once per request and immutable afterwards.
type ParsedIntent struct {
	SearchTerm string         `json:"searchTerm"`
	AreaHint   string         `json:"areaHint,omitempty"`
	TypeHint   string         `json:"typeHint,omitempty"`
	Filters    *IntentFilters `json:"filters,omitempty"`
}

// ConfidenceTier classifies candidate data quality.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// PlaceCandidate is a place suggested by the intent service. Coordinates may
// be filled in by the geocode enricher, and ConfidenceTier by the source
// validator; no other stage mutates a candidate after normalization.
type PlaceCandidate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Address     string         `json:"address,omitempty"`
	Coordinates *geo.Point     `json:"coordinates,omitempty"`
	Rating      float64        `json:"rating,omitempty"`
	PriceRange  string         `json:"priceRange,omitempty"`
	Website     string         `json:"website,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	Sources     []string       `json:"sources,omitempty"`
	Confidence  ConfidenceTier `json:"confidence,omitempty"`
}

// StationMatch is a read-only projection of a station directory record.
type StationMatch struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Zone        string    `json:"zone,omitempty"`
	Lines       []string  `json:"lines"`
	Coordinates geo.Point `json:"coordinates"`
}

// Result item types.
const (
	ResultTypePlace   = "place"
	ResultTypeStation = "station"
)

// SearchResultItem is one ranked entry in a result set: either a place
// candidate or a station match.
type SearchResultItem struct {
	Type    string          `json:"type"`
	Place   *PlaceCandidate `json:"place,omitempty"`
	Station *StationMatch   `json:"station,omitempty"`
}

// SearchResultSet is the cached, ranked outcome of one search.
type SearchResultSet struct {
	Intent  ParsedIntent       `json:"intent"`
	Results []SearchResultItem `json:"results"`
}
