package geocode

import (
	"context"

	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/geo"
	"wayfinder_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Geocoder resolves a free-text address to a coordinate pair, optionally
// bounded to a box. (nil, nil) means the provider found no match.
type Geocoder interface {
	Resolve(ctx context.Context, address string, box *geo.BoundingBox) (*geo.Point, error)
}

// Enricher fills in missing candidate coordinates and applies the
// origin-radius filter.
type Enricher struct {
	geocoder    Geocoder
	concurrency int
	log         *logger.Logger
}

// NewEnricher creates an enricher with the given lookup concurrency.
func NewEnricher(geocoder Geocoder, concurrency int, log *logger.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{geocoder: geocoder, concurrency: concurrency, log: log}
}

// Enrich resolves coordinates for every candidate that has an address but no
// coordinates, then drops candidates farther than radiusKm from the origin.
// Lookups run concurrently; a failed or empty lookup leaves coordinates unset
// and never fails the batch. Candidates that still lack coordinates are kept
// here; the coordinator excludes them from the final list.
func (e *Enricher) Enrich(ctx context.Context, candidates []transport.PlaceCandidate, origin *geo.Point, radiusKm float64) []transport.PlaceCandidate {
	if len(candidates) == 0 {
		return candidates
	}

	var box *geo.BoundingBox
	if origin != nil {
		b := geo.BoxAround(*origin, 2*radiusKm)
		box = &b
	}

	enriched := make([]transport.PlaceCandidate, len(candidates))
	copy(enriched, candidates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range enriched {
		if enriched[i].Coordinates != nil || enriched[i].Address == "" {
			continue
		}

		g.Go(func() error {
			point, err := e.geocoder.Resolve(gctx, enriched[i].Address, box)
			if err != nil {
				e.log.Warn("geocode lookup failed", "candidate", enriched[i].ID, "error", err)
				return nil
			}
			enriched[i].Coordinates = point
			return nil
		})
	}
	_ = g.Wait()

	if origin == nil {
		return enriched
	}

	filtered := make([]transport.PlaceCandidate, 0, len(enriched))
	for _, c := range enriched {
		if c.Coordinates != nil && geo.Haversine(*origin, *c.Coordinates) > radiusKm {
			e.log.Debug("candidate outside radius", "candidate", c.ID, "radius_km", radiusKm)
			continue
		}
		filtered = append(filtered, c)
	}

	return filtered
}
