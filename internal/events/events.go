// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// SearchCompleted is published after a search result set has been cached.
// The source verification module subscribes to it so URL probing and
// confidence scoring never add latency to the search critical path.
type SearchCompleted struct {
	BaseEvent
	CacheKey string                     `json:"cacheKey"`
	Results  *transport.SearchResultSet `json:"results"`
}

func (e SearchCompleted) EventName() string { return "search.completed" }
