package geocode

import (
	"context"
	"errors"
	"sync"
	"testing"

	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/geo"
	"wayfinder_backend/platform/logger"
)

type fakeGeocoder struct {
	mu      sync.Mutex
	calls   int
	results map[string]*geo.Point
	err     error
	lastBox *geo.BoundingBox
}

func (f *fakeGeocoder) Resolve(_ context.Context, address string, box *geo.BoundingBox) (*geo.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastBox = box
	if f.err != nil {
		return nil, f.err
	}
	return f.results[address], nil
}

var testOrigin = geo.Point{Lat: 51.5074, Lon: -0.1278}

func testLog() *logger.Logger { return logger.New("test") }

func TestEnrich_ResolvesMissingCoordinates(t *testing.T) {
	near := geo.Point{Lat: 51.51, Lon: -0.13}
	g := &fakeGeocoder{results: map[string]*geo.Point{"1 Soho Square": &near}}
	e := NewEnricher(g, 4, testLog())

	out := e.Enrich(context.Background(), []transport.PlaceCandidate{
		{ID: "place-0", Name: "Soho Sushi", Address: "1 Soho Square"},
	}, &testOrigin, 10)

	if len(out) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(out))
	}
	if out[0].Coordinates == nil || out[0].Coordinates.Lat != near.Lat {
		t.Fatalf("expected resolved coordinates, got %+v", out[0].Coordinates)
	}
}

func TestEnrich_DropsCandidatesOutsideRadius(t *testing.T) {
	near := geo.Point{Lat: 51.51, Lon: -0.13}
	far := geo.Point{Lat: 52.5074, Lon: -0.1278} // 1 degree north, ~111 km
	g := &fakeGeocoder{results: map[string]*geo.Point{
		"near st": &near,
		"far st":  &far,
	}}
	e := NewEnricher(g, 4, testLog())

	out := e.Enrich(context.Background(), []transport.PlaceCandidate{
		{ID: "place-0", Address: "near st"},
		{ID: "place-1", Address: "far st"},
	}, &testOrigin, 10)

	if len(out) != 1 {
		t.Fatalf("expected 1 candidate after radius filter, got %d", len(out))
	}
	if out[0].ID != "place-0" {
		t.Fatalf("expected in-radius candidate place-0, got %s", out[0].ID)
	}
}

func TestEnrich_FailedLookupKeepsCandidateUnresolved(t *testing.T) {
	g := &fakeGeocoder{err: errors.New("provider down")}
	e := NewEnricher(g, 4, testLog())

	out := e.Enrich(context.Background(), []transport.PlaceCandidate{
		{ID: "place-0", Address: "somewhere"},
	}, &testOrigin, 10)

	if len(out) != 1 {
		t.Fatalf("expected candidate kept, got %d", len(out))
	}
	if out[0].Coordinates != nil {
		t.Fatalf("expected coordinates unset after failure, got %+v", out[0].Coordinates)
	}
}

func TestEnrich_SkipsCandidatesWithCoordinatesOrNoAddress(t *testing.T) {
	g := &fakeGeocoder{results: map[string]*geo.Point{}}
	e := NewEnricher(g, 4, testLog())

	already := geo.Point{Lat: 51.51, Lon: -0.12}
	e.Enrich(context.Background(), []transport.PlaceCandidate{
		{ID: "place-0", Coordinates: &already, Address: "has coords"},
		{ID: "place-1"}, // no address, no coordinates
	}, nil, 10)

	if g.calls != 0 {
		t.Fatalf("expected no geocode calls, got %d", g.calls)
	}
}

func TestEnrich_NoOriginSkipsBoxAndFilter(t *testing.T) {
	far := geo.Point{Lat: 40.7128, Lon: -74.006}
	g := &fakeGeocoder{results: map[string]*geo.Point{"far st": &far}}
	e := NewEnricher(g, 4, testLog())

	out := e.Enrich(context.Background(), []transport.PlaceCandidate{
		{ID: "place-0", Address: "far st"},
	}, nil, 10)

	if g.lastBox != nil {
		t.Fatalf("expected no bounding box without origin, got %+v", g.lastBox)
	}
	if len(out) != 1 || out[0].Coordinates == nil {
		t.Fatalf("expected candidate kept with coordinates, got %+v", out)
	}
}
