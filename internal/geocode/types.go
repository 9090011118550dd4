package geocode

import "wayfinder_backend/platform/geo"

// LookupRequest represents the query parameters for the address lookup
// endpoint used by the frontend's origin field.
type LookupRequest struct {
	Query string `form:"q" binding:"required,min=3"`
}

// AddressSuggestion is one address autocomplete entry.
type AddressSuggestion struct {
	Label       string    `json:"label"`
	Coordinates geo.Point `json:"coordinates"`
}
