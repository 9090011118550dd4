// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// IntentConfig provides settings for the AI intent service.
type IntentConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsIntentEnabled() bool
}

// GeocodeConfig provides settings for the geocoding provider.
type GeocodeConfig interface {
	GetGeocodeURL() string
	GetGeocodeTimeout() time.Duration
	GetGeocodeInterval() time.Duration
	GetGeocodeConcurrency() int
}

// StationsConfig provides settings for the station directory source.
type StationsConfig interface {
	GetStationsURL() string
	GetStationsFile() string
}

// SearchConfig provides settings for the search coordinator.
type SearchConfig interface {
	GetResultLimit() int
	GetStationMatchLimit() int
	GetRadiusKm() float64
	GetCacheTTL() time.Duration
	GetCacheSize() int
}

// VerifyConfig provides settings for source verification.
type VerifyConfig interface {
	GetVerifyEnabled() bool
	GetVerifyTimeout() time.Duration
	GetVerifyBatchSize() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	GeminiAPIKey       string
	GeminiModel        string
	GeocodeURL         string
	GeocodeTimeout     time.Duration
	GeocodeInterval    time.Duration
	GeocodeConcurrency int
	StationsURL        string
	StationsFile       string
	ResultLimit        int
	StationMatchLimit  int
	RadiusKm           float64
	CacheTTL           time.Duration
	CacheSize          int
	VerifyEnabled      bool
	VerifyTimeout      time.Duration
	VerifyBatchSize    int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// IntentConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsIntentEnabled() bool   { return c.GeminiAPIKey != "" }

// GeocodeConfig implementation
func (c *Config) GetGeocodeURL() string             { return c.GeocodeURL }
func (c *Config) GetGeocodeTimeout() time.Duration  { return c.GeocodeTimeout }
func (c *Config) GetGeocodeInterval() time.Duration { return c.GeocodeInterval }
func (c *Config) GetGeocodeConcurrency() int        { return c.GeocodeConcurrency }

// StationsConfig implementation
func (c *Config) GetStationsURL() string  { return c.StationsURL }
func (c *Config) GetStationsFile() string { return c.StationsFile }

// SearchConfig implementation
func (c *Config) GetResultLimit() int        { return c.ResultLimit }
func (c *Config) GetStationMatchLimit() int  { return c.StationMatchLimit }
func (c *Config) GetRadiusKm() float64       { return c.RadiusKm }
func (c *Config) GetCacheTTL() time.Duration { return c.CacheTTL }
func (c *Config) GetCacheSize() int          { return c.CacheSize }

// VerifyConfig implementation
func (c *Config) GetVerifyEnabled() bool          { return c.VerifyEnabled }
func (c *Config) GetVerifyTimeout() time.Duration { return c.VerifyTimeout }
func (c *Config) GetVerifyBatchSize() int         { return c.VerifyBatchSize }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeocodeURL:         getEnv("GEOCODE_URL", "https://nominatim.openstreetmap.org/search"),
		GeocodeTimeout:     mustDuration(getEnv("GEOCODE_TIMEOUT", "5s")),
		GeocodeInterval:    mustDuration(getEnv("GEOCODE_INTERVAL", "1s")),
		GeocodeConcurrency: mustInt(getEnv("GEOCODE_CONCURRENCY", "4")),
		StationsURL:        getEnv("STATIONS_URL", ""),
		StationsFile:       getEnv("STATIONS_FILE", ""),
		ResultLimit:        mustInt(getEnv("SEARCH_RESULT_LIMIT", "12")),
		StationMatchLimit:  mustInt(getEnv("SEARCH_STATION_MATCH_LIMIT", "3")),
		RadiusKm:           mustFloat(getEnv("SEARCH_RADIUS_KM", "10")),
		CacheTTL:           mustDuration(getEnv("SEARCH_CACHE_TTL", "15m")),
		CacheSize:          mustInt(getEnv("SEARCH_CACHE_SIZE", "256")),
		VerifyEnabled:      strings.EqualFold(getEnv("VERIFY_ENABLED", "true"), "true"),
		VerifyTimeout:      mustDuration(getEnv("VERIFY_TIMEOUT", "3s")),
		VerifyBatchSize:    mustInt(getEnv("VERIFY_BATCH_SIZE", "5")),
	}

	if cfg.StationsURL == "" && cfg.StationsFile == "" {
		return nil, fmt.Errorf("STATIONS_URL or STATIONS_FILE is required")
	}
	if cfg.ResultLimit < 1 {
		return nil, fmt.Errorf("SEARCH_RESULT_LIMIT must be at least 1")
	}
	if cfg.RadiusKm <= 0 {
		return nil, fmt.Errorf("SEARCH_RADIUS_KM must be positive")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
