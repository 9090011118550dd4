// Package geocode resolves free-text addresses to coordinates and enriches
// place candidates with geography. The provider is OSM Nominatim.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"wayfinder_backend/platform/config"
	"wayfinder_backend/platform/geo"
	"wayfinder_backend/platform/logger"

	"golang.org/x/time/rate"
)

const userAgent = "WayfinderBackend/1.0"

// Client is a rate-limited Nominatim client. The limiter keeps the client
// inside the provider's usage policy regardless of enrichment concurrency.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewClient creates a geocoding client from configuration.
func NewClient(cfg config.GeocodeConfig, log *logger.Logger) *Client {
	interval := cfg.GetGeocodeInterval()
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	if interval <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	return &Client{
		baseURL: cfg.GetGeocodeURL(),
		client:  &http.Client{Timeout: cfg.GetGeocodeTimeout()},
		limiter: limiter,
		log:     log,
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Resolve returns the best-match coordinates for the address, constrained to
// the bounding box when one is given. A "no match" response returns (nil, nil);
// only transport and decoding failures produce an error.
func (c *Client) Resolve(ctx context.Context, address string, box *geo.BoundingBox) (*geo.Point, error) {
	results, err := c.search(ctx, address, box, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return resultPoint(results[0])
}

// Suggest returns address autocomplete entries for the frontend's origin
// field. Entries without parseable coordinates are skipped.
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]AddressSuggestion, error) {
	if limit <= 0 {
		limit = 5
	}

	results, err := c.search(ctx, query, nil, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]AddressSuggestion, 0, len(results))
	for _, r := range results {
		point, err := resultPoint(r)
		if err != nil {
			continue
		}
		suggestions = append(suggestions, AddressSuggestion{
			Label:       r.DisplayName,
			Coordinates: *point,
		})
	}
	return suggestions, nil
}

func (c *Client) search(ctx context.Context, query string, box *geo.BoundingBox, limit int) ([]nominatimResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("limit", strconv.Itoa(limit))
	if box != nil {
		// viewbox is left,top,right,bottom in lon/lat order.
		params.Add("viewbox", fmt.Sprintf("%f,%f,%f,%f", box.MinLon, box.MaxLat, box.MaxLon, box.MinLat))
		params.Add("bounded", "1")
	}

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.ProviderError("nominatim", "search", err)
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("upstream api error: %d", resp.StatusCode)
		c.log.ProviderError("nominatim", "search", err)
		return nil, err
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.log.ProviderError("nominatim", "decode", err)
		return nil, err
	}

	return results, nil
}

func resultPoint(result nominatimResult) (*geo.Point, error) {
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", result.Lat, err)
	}
	lon, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", result.Lon, err)
	}
	return &geo.Point{Lat: lat, Lon: lon}, nil
}
