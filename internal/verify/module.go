package verify

import (
	"context"
	"fmt"

	"wayfinder_backend/internal/events"
	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/config"
	"wayfinder_backend/platform/logger"
)

// ResultUpdater writes a verified result set back to the search cache.
// The update is a no-op when the entry has already been evicted.
type ResultUpdater interface {
	ApplyVerified(cacheKey string, results *transport.SearchResultSet) bool
}

// Module subscribes to search completions and runs source verification
// in the background.
type Module struct {
	verifier *Verifier
	updater  ResultUpdater
	log      *logger.Logger
	enabled  bool
}

func NewModule(cfg config.VerifyConfig, updater ResultUpdater, log *logger.Logger) *Module {
	return &Module{
		verifier: NewVerifier(cfg, log),
		updater:  updater,
		log:      log,
		enabled:  cfg.GetVerifyEnabled(),
	}
}

func (m *Module) Name() string {
	return "verify"
}

// RegisterHandlers subscribes the module to the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	if !m.enabled {
		m.log.Info("source verification disabled")
		return
	}
	bus.Subscribe(events.SearchCompleted{}.EventName(), events.HandlerFunc(m.onSearchCompleted))
}

func (m *Module) onSearchCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.SearchCompleted)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if completed.Results == nil {
		return nil
	}

	candidates := placeCandidates(completed.Results)
	if len(candidates) == 0 {
		return nil
	}

	verified := m.verifier.VerifyCandidates(ctx, candidates)

	updated := withVerifiedPlaces(completed.Results, verified)
	if m.updater.ApplyVerified(completed.CacheKey, updated) {
		m.log.Debug("verified result set stored", "key", completed.CacheKey, "places", len(verified))
	}

	return nil
}

func placeCandidates(set *transport.SearchResultSet) []transport.PlaceCandidate {
	candidates := make([]transport.PlaceCandidate, 0, len(set.Results))
	for _, item := range set.Results {
		if item.Type == transport.ResultTypePlace && item.Place != nil {
			candidates = append(candidates, *item.Place)
		}
	}
	return candidates
}

// withVerifiedPlaces rebuilds the result set with verified place candidates
// substituted in order; station items pass through untouched.
func withVerifiedPlaces(set *transport.SearchResultSet, verified []transport.PlaceCandidate) *transport.SearchResultSet {
	updated := &transport.SearchResultSet{
		Intent:  set.Intent,
		Results: make([]transport.SearchResultItem, 0, len(set.Results)),
	}

	next := 0
	for _, item := range set.Results {
		if item.Type == transport.ResultTypePlace && item.Place != nil && next < len(verified) {
			place := verified[next]
			next++
			updated.Results = append(updated.Results, transport.SearchResultItem{
				Type:  transport.ResultTypePlace,
				Place: &place,
			})
			continue
		}
		updated.Results = append(updated.Results, item)
	}

	return updated
}
