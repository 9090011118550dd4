// Package verify probes candidate source URLs and derives confidence tiers.
// It runs off the search critical path, triggered by the search.completed
// event, so URL verification never adds latency to a search.
package verify

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/config"
	"wayfinder_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

const sourceSeparator = " | "

// Verifier checks URL existence and scores candidate data quality.
type Verifier struct {
	client    *http.Client
	batchSize int
	log       *logger.Logger
}

// NewVerifier creates a verifier from configuration. Redirects are not
// followed: a 3xx answer already proves the URL exists.
func NewVerifier(cfg config.VerifyConfig, log *logger.Logger) *Verifier {
	return &Verifier{
		client: &http.Client{
			Timeout: cfg.GetVerifyTimeout(),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		batchSize: max(cfg.GetVerifyBatchSize(), 1),
		log:       log,
	}
}

// VerifyCandidates probes each candidate's website and "Name | URL" source
// entries with bounded concurrency, strips entries that fail the probe, and
// assigns a confidence tier. The input slice is not mutated.
func (v *Verifier) VerifyCandidates(ctx context.Context, candidates []transport.PlaceCandidate) []transport.PlaceCandidate {
	verified := make([]transport.PlaceCandidate, len(candidates))
	copy(verified, candidates)

	// Probe each distinct URL once across the whole batch.
	results := v.probeAll(ctx, collectURLs(verified))

	for i := range verified {
		c := &verified[i]

		if c.Website != "" && !results[c.Website] {
			c.Website = ""
		}

		kept := make([]string, 0, len(c.Sources))
		verifiedSources := 0
		for _, source := range c.Sources {
			u := sourceURL(source)
			if u == "" {
				// Not a probeable entry; keep as-is.
				kept = append(kept, source)
				continue
			}
			if !results[u] {
				continue
			}
			kept = append(kept, source)
			verifiedSources++
		}
		c.Sources = kept

		c.Confidence = tierFor(score(*c, verifiedSources))
	}

	return verified
}

// probeAll checks URL existence in batches of batchSize.
func (v *Verifier) probeAll(ctx context.Context, urls []string) map[string]bool {
	results := make(map[string]bool, len(urls))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.batchSize)

	for _, u := range urls {
		g.Go(func() error {
			ok := v.probe(gctx, u)
			mu.Lock()
			results[u] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// probe performs a lightweight existence check: 2xx and 3xx count as valid.
func (v *Verifier) probe(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Debug("url probe failed", "url", rawURL, "error", err)
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func collectURLs(candidates []transport.PlaceCandidate) []string {
	seen := make(map[string]struct{})
	urls := make([]string, 0)
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, c := range candidates {
		add(c.Website)
		for _, source := range c.Sources {
			add(sourceURL(source))
		}
	}
	return urls
}

// sourceURL extracts the URL from a "Name | URL" source entry. Entries
// without the separator or with a non-HTTP target are not probeable.
func sourceURL(source string) string {
	_, after, found := strings.Cut(source, sourceSeparator)
	if !found {
		return ""
	}
	u := strings.TrimSpace(after)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return ""
	}
	return u
}

// score computes the data-quality score for a candidate after stripping.
func score(c transport.PlaceCandidate, verifiedSources int) int {
	s := 0
	if c.Website != "" {
		s += 2
	}
	if verifiedSources >= 1 {
		s += 3
	}
	if len(c.Sources) > 1 {
		s++
	}
	if c.Rating > 0 {
		s++
	}
	if c.Address != "" {
		s++
	}
	if c.Description != "" {
		s++
	}
	return s
}

func tierFor(score int) transport.ConfidenceTier {
	switch {
	case score >= 7:
		return transport.ConfidenceHigh
	case score >= 4:
		return transport.ConfidenceMedium
	default:
		return transport.ConfidenceLow
	}
}
