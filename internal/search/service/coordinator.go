// Package service implements the search orchestration pipeline: request
// sequencing and cancellation, intent payload reconciliation, geocode
// enrichment, station merging, and result caching.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"wayfinder_backend/internal/events"
	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/apperr"
	"wayfinder_backend/platform/config"
	"wayfinder_backend/platform/geo"
	"wayfinder_backend/platform/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrSuperseded reports that a newer submission was issued while this one
// was in flight. It is a silent discard, not a failure: callers drop the
// result without surfacing an error to the user.
var ErrSuperseded = errors.New("search superseded by newer submission")

// NormalizeQuery canonicalizes raw input into a cache key. Idempotent:
// NormalizeQuery(NormalizeQuery(x)) == NormalizeQuery(x).
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IntentParser calls the AI intent service and returns its raw, untrusted
// JSON document.
type IntentParser interface {
	Parse(ctx context.Context, query string, origin *geo.Point, originAddress string) (json.RawMessage, error)
}

// CandidateEnricher resolves missing candidate coordinates and applies the
// origin-radius filter.
type CandidateEnricher interface {
	Enrich(ctx context.Context, candidates []transport.PlaceCandidate, origin *geo.Point, radiusKm float64) []transport.PlaceCandidate
}

// StationMatcher filters the station directory snapshot by substring.
type StationMatcher interface {
	Match(term string, limit int) []transport.StationMatch
}

// Options are the coordinator's policy values, supplied by configuration
// rather than hardcoded.
type Options struct {
	ResultLimit       int
	StationMatchLimit int
	RadiusKm          float64
}

// OptionsFromConfig builds Options from the search configuration.
func OptionsFromConfig(cfg config.SearchConfig) Options {
	return Options{
		ResultLimit:       cfg.GetResultLimit(),
		StationMatchLimit: cfg.GetStationMatchLimit(),
		RadiusKm:          cfg.GetRadiusKm(),
	}
}

// Coordinator owns the search pipeline: one instance per process, holding
// the result cache, the latest-sequence counter, and the in-flight
// cancellation handle. No other component writes these.
type Coordinator struct {
	intent   IntentParser // nil when the provider is not configured
	enricher CandidateEnricher
	stations StationMatcher
	bus      events.Bus
	log      *logger.Logger
	opts     Options

	cache  *expirable.LRU[string, *transport.SearchResultSet]
	latest atomic.Uint64

	mu             sync.Mutex
	cancelInFlight context.CancelFunc
}

// NewCoordinator creates a coordinator. intent may be nil: searches then
// degrade to the raw query with station matches only.
func NewCoordinator(cfg config.SearchConfig, intent IntentParser, enricher CandidateEnricher, stations StationMatcher, bus events.Bus, log *logger.Logger) *Coordinator {
	return &Coordinator{
		intent:   intent,
		enricher: enricher,
		stations: stations,
		bus:      bus,
		log:      log,
		opts:     OptionsFromConfig(cfg),
		cache:    expirable.NewLRU[string, *transport.SearchResultSet](cfg.GetCacheSize(), nil, cfg.GetCacheTTL()),
	}
}

// Submit runs one search: read-through cache, cancellation of the previous
// in-flight request, concurrent fan-out to the station directory and the
// intent service, normalization, enrichment, merge, and guarded cache write.
// Only the newest submission may make its result visible.
func (c *Coordinator) Submit(ctx context.Context, query string, origin *geo.Point, originAddress string) (*transport.SearchResultSet, error) {
	key := NormalizeQuery(query)
	if key == "" {
		return nil, apperr.Validation("query must not be empty").WithOp("search.Submit")
	}

	if cached, ok := c.cache.Get(key); ok {
		c.log.WithContext(ctx).Debug("cache hit", "key", key)
		return cached, nil
	}

	reqCtx, cancel, seq := c.begin(ctx)
	defer cancel()

	// Fan out: directory match and intent call settle independently.
	// A failure on either side must not block or cancel the other, so
	// this is deliberately not an errgroup sharing a context.
	var (
		stationMatches []transport.StationMatch
		rawIntent      json.RawMessage
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		stationMatches = c.stations.Match(key, c.opts.StationMatchLimit)
	}()
	go func() {
		defer wg.Done()
		rawIntent = c.parseIntent(reqCtx, query, origin, originAddress)
	}()
	wg.Wait()

	normalized := NormalizeIntentPayload(rawIntent, query)

	candidates := c.enricher.Enrich(reqCtx, normalized.Candidates, origin, c.opts.RadiusKm)

	// Stations are matched against the effective search term. Re-matching
	// is a pure local computation, so a differing term from the intent
	// service only costs another pass over the snapshot.
	if term := NormalizeQuery(normalized.Intent.SearchTerm); term != "" && term != key {
		stationMatches = c.stations.Match(term, c.opts.StationMatchLimit)
	}

	result := &transport.SearchResultSet{
		Intent:  normalized.Intent,
		Results: mergeResults(candidates, stationMatches, c.opts.ResultLimit),
	}

	// Authoritative staleness guard. Cancellation is best-effort and may
	// race with an already-resolved response; this check alone decides
	// whether the result becomes visible.
	if c.latest.Load() != seq {
		c.log.WithContext(ctx).Debug("stale search discarded", "key", key, "seq", seq)
		return nil, ErrSuperseded
	}

	c.cache.Add(key, result)
	c.bus.Publish(ctx, events.SearchCompleted{
		BaseEvent: events.NewBaseEvent(),
		CacheKey:  key,
		Results:   result,
	})

	return result, nil
}

// ApplyVerified replaces a cached result set after source verification.
// Returns false when the entry has been evicted in the meantime; verified
// data for an evicted entry is simply dropped.
func (c *Coordinator) ApplyVerified(cacheKey string, results *transport.SearchResultSet) bool {
	if _, ok := c.cache.Get(cacheKey); !ok {
		return false
	}
	c.cache.Add(cacheKey, results)
	return true
}

// begin cancels the previous in-flight request and allocates the next
// sequence id under the same lock, so ids observed by concurrent
// submissions are strictly ordered with their cancellations.
func (c *Coordinator) begin(ctx context.Context) (context.Context, context.CancelFunc, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelInFlight != nil {
		c.cancelInFlight()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancelInFlight = cancel

	return reqCtx, cancel, c.latest.Add(1)
}

// parseIntent degrades every provider failure to a nil payload; the
// normalizer turns that into the raw-query fallback. Station matches, a
// purely local computation, still appear in the worst case.
func (c *Coordinator) parseIntent(ctx context.Context, query string, origin *geo.Point, originAddress string) json.RawMessage {
	if c.intent == nil {
		return nil
	}

	raw, err := c.intent.Parse(ctx, query, origin, originAddress)
	if err != nil {
		c.log.WithContext(ctx).Warn("intent service degraded to fallback", "error", err)
		return nil
	}
	return raw
}

// mergeResults keeps AI candidates in provider order (their order is
// semantic relevance), excludes candidates that never resolved coordinates,
// appends station matches, and truncates to the result ceiling.
func mergeResults(candidates []transport.PlaceCandidate, stations []transport.StationMatch, limit int) []transport.SearchResultItem {
	results := make([]transport.SearchResultItem, 0, len(candidates)+len(stations))

	for _, candidate := range candidates {
		if candidate.Coordinates == nil {
			continue
		}
		results = append(results, transport.SearchResultItem{
			Type:  transport.ResultTypePlace,
			Place: &candidate,
		})
	}

	for _, station := range stations {
		results = append(results, transport.SearchResultItem{
			Type:    transport.ResultTypeStation,
			Station: &station,
		})
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
