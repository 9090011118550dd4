// Package intent calls the AI intent service that turns free-text map
// queries into structured search intent plus suggested places. The response
// document is provider-controlled: callers must treat its shape as untrusted
// and run it through the search module's payload normalizer.
package intent

import (
	"context"
	"encoding/json"
	"fmt"

	"wayfinder_backend/platform/config"
	"wayfinder_backend/platform/geo"
	"wayfinder_backend/platform/logger"

	"google.golang.org/genai"
)

// Client wraps the Gemini API for intent parsing.
type Client struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewClient creates an intent client. Returns nil (and no error) when no API
// key is configured: the coordinator degrades to an empty-result fallback.
func NewClient(ctx context.Context, cfg config.IntentConfig, log *logger.Logger) (*Client, error) {
	if !cfg.IsIntentEnabled() {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client: client,
		model:  cfg.GetGeminiModel(),
		log:    log,
	}, nil
}

// Parse sends the query to the intent service and returns the raw JSON
// document it produced. No schema is enforced here.
func (c *Client) Parse(ctx context.Context, query string, origin *geo.Point, originAddress string) (json.RawMessage, error) {
	prompt := buildPrompt(query, origin, originAddress)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		c.log.ProviderError("intent", "generate", err)
		return nil, err
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("intent service returned empty response")
	}

	return json.RawMessage(text), nil
}
