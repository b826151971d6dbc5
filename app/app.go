// Package app assembles the pipeline services from configuration. Both
// binaries share it.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/use-agent/gleaner/cache"
	"github.com/use-agent/gleaner/cleaner"
	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/engine"
	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/extractor"
	"github.com/use-agent/gleaner/metrics"
	"github.com/use-agent/gleaner/scraper"
	"github.com/use-agent/gleaner/webhook"
)

// cacheTTL bounds how long a single-page record may stay cached.
const cacheTTL = time.Hour

// App holds the wired services.
type App struct {
	Config   *config.Config
	Version  string
	Scraper  *scraper.Scraper
	Exports  *export.Registry
	Cache    *cache.Cache
	Metrics  *metrics.Metrics
	Notifier *webhook.Notifier
}

// New builds every service from cfg.
func New(cfg *config.Config, version string) (*App, error) {
	markup, err := extractor.NewMarkupParser(cfg.Extract.Parser)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	eng := engine.NewHTTPEngine(engine.HTTPOptions{
		ChromeFingerprint: cfg.Fetch.ChromeFingerprint,
		MaxBodyBytes:      cfg.Fetch.MaxBodyBytes,
		Proxy:             cfg.Fetch.Proxy,
	})
	seed := cfg.Fetch.HeaderSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fetcher := engine.NewFetcher(eng, engine.NewSeededProfiles(seed, nil), cfg.Fetch.Timeout)

	m := metrics.New()
	sc := scraper.New(fetcher, extractor.New(markup), scraper.PoolOptions{
		Workers: cfg.Pool.Workers,
		Delay:   cfg.Pool.Delay,
	})
	sc.SetObserver(m)

	exports := export.NewRegistry(export.Options{
		Version:        "gleaner " + version,
		DedupeDistance: cfg.Export.DedupeDistance,
		Cleaner:        cleaner.NewCleaner(),
		OnExport:       m.ObserveExport,
	})

	slog.Debug("services wired",
		"engine", eng.Name(),
		"parser", markup.Name(),
		"workers", cfg.Pool.Workers,
		"delay", cfg.Pool.Delay,
		"timeout", cfg.Fetch.Timeout,
	)

	return &App{
		Config:   cfg,
		Version:  version,
		Scraper:  sc,
		Exports:  exports,
		Cache:    cache.New(cfg.Cache.MaxEntries, cacheTTL),
		Metrics:  m,
		Notifier: webhook.NewNotifier(cfg.Batch.WebhookSecret),
	}, nil
}

// Close stops background work.
func (a *App) Close() {
	a.Cache.Close()
}

// InitLogger configures the default slog logger from cfg, writing to w.
func InitLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
