package stations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"wayfinder_backend/platform/config"

	"gopkg.in/yaml.v3"
)

// Load builds the directory snapshot from the configured source. A local
// YAML file takes precedence over the remote endpoint so development and
// tests can run without network access.
func Load(ctx context.Context, cfg config.StationsConfig) (*Directory, error) {
	if path := cfg.GetStationsFile(); path != "" {
		return loadFile(path)
	}
	return fetchRemote(ctx, cfg.GetStationsURL())
}

func loadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stations file: %w", err)
	}

	var records []Station
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse stations file: %w", err)
	}

	return NewDirectory(records), nil
}

func fetchRemote(ctx context.Context, url string) (*Directory, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch station directory: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("station directory upstream error: %d", resp.StatusCode)
	}

	var records []Station
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode station directory: %w", err)
	}

	return NewDirectory(records), nil
}
