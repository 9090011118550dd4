package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wayfinder_backend/platform/geo"
)

type clientConfig struct {
	url     string
	timeout time.Duration
}

func (c clientConfig) GetGeocodeURL() string             { return c.url }
func (c clientConfig) GetGeocodeTimeout() time.Duration  { return c.timeout }
func (c clientConfig) GetGeocodeInterval() time.Duration { return 0 }
func (c clientConfig) GetGeocodeConcurrency() int        { return 4 }

func TestResolve_ParsesBestMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "1 Soho Square" {
			t.Errorf("unexpected query %q", got)
		}
		if r.URL.Query().Get("bounded") != "" {
			t.Errorf("bounded should not be set without a box")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"51.51","lon":"-0.13"}]`))
	}))
	defer srv.Close()

	c := NewClient(clientConfig{url: srv.URL, timeout: time.Second}, testLog())

	point, err := c.Resolve(context.Background(), "1 Soho Square", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point == nil || point.Lat != 51.51 || point.Lon != -0.13 {
		t.Fatalf("unexpected point: %+v", point)
	}
}

func TestResolve_BoundingBoxConstrainsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("bounded") != "1" {
			t.Errorf("expected bounded=1")
		}
		if r.URL.Query().Get("viewbox") == "" {
			t.Errorf("expected viewbox parameter")
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(clientConfig{url: srv.URL, timeout: time.Second}, testLog())

	box := geo.BoxAround(geo.Point{Lat: 51.5074, Lon: -0.1278}, 20)
	point, err := c.Resolve(context.Background(), "nowhere", &box)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point != nil {
		t.Fatalf("expected no match, got %+v", point)
	}
}

func TestResolve_UpstreamErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(clientConfig{url: srv.URL, timeout: time.Second}, testLog())

	if _, err := c.Resolve(context.Background(), "anywhere", nil); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}
