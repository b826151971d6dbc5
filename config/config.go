package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Pool      PoolConfig      `yaml:"pool"`
	Extract   ExtractConfig   `yaml:"extract"`
	Export    ExportConfig    `yaml:"export"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Batch     BatchConfig     `yaml:"batch"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 8080
	Mode string `yaml:"mode"` // "debug", "release", "test"; default: "release"
}

// FetchConfig controls the fetcher and its HTTP transport.
type FetchConfig struct {
	// Timeout bounds one fetch, connect to last body byte.
	Timeout time.Duration `yaml:"timeout"` // default: 30s

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 `yaml:"max_body_bytes"` // default: 10 MiB

	// ChromeFingerprint dials TLS with a Chrome ClientHello (utls).
	ChromeFingerprint bool `yaml:"chrome_fingerprint"` // default: true

	// Proxy is an optional http(s) proxy URL.
	Proxy string `yaml:"proxy"`

	// HeaderSeed seeds header-profile rotation. 0 seeds from the clock.
	HeaderSeed int64 `yaml:"header_seed"`
}

// PoolConfig controls the orchestrator's worker pool.
type PoolConfig struct {
	// Workers is the number of concurrent lanes. 1 is strictly sequential.
	Workers int `yaml:"workers"` // default: 1

	// Delay is the politeness pause between successive requests of one lane.
	Delay time.Duration `yaml:"delay"` // default: 1.5s
}

// ExtractConfig controls extraction.
type ExtractConfig struct {
	// Parser selects the markup capability: "dom" (full parser) or
	// "strip" (pattern-based markup stripping).
	Parser string `yaml:"parser"` // default: "dom"
}

// ExportConfig controls the file exporters.
type ExportConfig struct {
	// Dir is where export files are written.
	Dir string `yaml:"dir"` // default: "exports"

	// Formats is the set written for "all".
	Formats []string `yaml:"formats"`

	// DedupeDistance drops near-duplicate records from the jsonl export
	// when their SimHash distance is at most this value. Negative disables.
	DedupeDistance int `yaml:"dedupe_distance"` // default: -1
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool     `yaml:"enabled"` // default: false
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 5

	// Burst is the maximum burst size per API key.
	Burst int `yaml:"burst"` // default: 10
}

// CacheConfig controls the single-page record cache.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"` // default: 1000
}

// BatchConfig controls asynchronous batch jobs.
type BatchConfig struct {
	MaxURLs       int    `yaml:"max_urls"` // default: 500
	WebhookSecret string `yaml:"webhook_secret"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "json"
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, Mode: "release"},
		Fetch: FetchConfig{
			Timeout:           30 * time.Second,
			MaxBodyBytes:      10 << 20,
			ChromeFingerprint: true,
		},
		Pool:    PoolConfig{Workers: 1, Delay: 1500 * time.Millisecond},
		Extract: ExtractConfig{Parser: "dom"},
		Export: ExportConfig{
			Dir:            "exports",
			Formats:        []string{"json", "csv", "html", "xml", "jsonl", "txt"},
			DedupeDistance: -1,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 5.0, Burst: 10},
		Cache:     CacheConfig{MaxEntries: 1000},
		Batch:     BatchConfig{MaxURLs: 500},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from the defaults, the YAML file named by
// GLEANER_CONFIG (if set), and finally environment variables.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("GLEANER_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Pool.Workers < 1 {
		return fmt.Errorf("config: pool.workers must be >= 1, got %d", c.Pool.Workers)
	}
	if c.Pool.Delay < 0 {
		return fmt.Errorf("config: pool.delay must not be negative")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("config: fetch.timeout must be positive")
	}
	switch c.Extract.Parser {
	case "dom", "strip":
	default:
		return fmt.Errorf("config: extract.parser must be \"dom\" or \"strip\", got %q", c.Extract.Parser)
	}
	return nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.Server.Host = envOr("GLEANER_HOST", c.Server.Host)
	c.Server.Port = envIntOr("GLEANER_PORT", c.Server.Port)
	c.Server.Mode = envOr("GLEANER_MODE", c.Server.Mode)

	c.Fetch.Timeout = envDurationOr("GLEANER_FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.MaxBodyBytes = int64(envIntOr("GLEANER_MAX_BODY_BYTES", int(c.Fetch.MaxBodyBytes)))
	c.Fetch.ChromeFingerprint = envBoolOr("GLEANER_CHROME_FINGERPRINT", c.Fetch.ChromeFingerprint)
	c.Fetch.Proxy = envOr("GLEANER_PROXY", c.Fetch.Proxy)
	c.Fetch.HeaderSeed = int64(envIntOr("GLEANER_HEADER_SEED", int(c.Fetch.HeaderSeed)))

	c.Pool.Workers = envIntOr("GLEANER_WORKERS", c.Pool.Workers)
	c.Pool.Delay = envDurationOr("GLEANER_DELAY", c.Pool.Delay)

	c.Extract.Parser = envOr("GLEANER_PARSER", c.Extract.Parser)

	c.Export.Dir = envOr("GLEANER_EXPORT_DIR", c.Export.Dir)
	c.Export.Formats = envSliceOr("GLEANER_EXPORT_FORMATS", c.Export.Formats)
	c.Export.DedupeDistance = envIntOr("GLEANER_DEDUPE_DISTANCE", c.Export.DedupeDistance)

	c.Auth.Enabled = envBoolOr("GLEANER_AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.APIKeys = envSliceOr("GLEANER_API_KEYS", c.Auth.APIKeys)

	c.RateLimit.RequestsPerSecond = envFloatOr("GLEANER_RATE_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = envIntOr("GLEANER_RATE_BURST", c.RateLimit.Burst)

	c.Cache.MaxEntries = envIntOr("GLEANER_CACHE_MAX_ENTRIES", c.Cache.MaxEntries)

	c.Batch.MaxURLs = envIntOr("GLEANER_BATCH_MAX_URLS", c.Batch.MaxURLs)
	c.Batch.WebhookSecret = envOr("GLEANER_WEBHOOK_SECRET", c.Batch.WebhookSecret)

	c.Log.Level = envOr("GLEANER_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("GLEANER_LOG_FORMAT", c.Log.Format)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
