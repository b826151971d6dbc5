package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/gleaner/api/handler"
	"github.com/use-agent/gleaner/api/middleware"
	"github.com/use-agent/gleaner/cache"
	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/metrics"
	"github.com/use-agent/gleaner/scraper"
	"github.com/use-agent/gleaner/webhook"
)

// batchTTL is how long finished batch jobs stay queryable.
const batchTTL = time.Hour

// Deps are the services the router wires into handlers.
type Deps struct {
	Scraper  *scraper.Scraper
	Exports  *export.Registry
	Cache    *cache.Cache
	Metrics  *metrics.Metrics
	Notifier *webhook.Notifier
	Config   *config.Config
	Version  string
}

// NewRouter creates a configured Gin engine with all routes and middleware.
// Background sweepers stop when ctx is done.
//
// Middleware chain:
//
//	Global:  Recovery → RequestLog
//	API:     Auth (if enabled) → RateLimit
//
// Health and /metrics stay outside auth so probes and scrapers always work.
func NewRouter(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Config
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog())

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(d.Scraper, d.Version))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	// Scrape
	protected.POST("/scrape", handler.Scrape(d.Scraper, d.Exports, cfg.Export))
	protected.POST("/scrape/single", handler.ScrapeSingle(d.Scraper, d.Cache))

	// Batch
	batches := handler.NewBatchStore(ctx, batchTTL)
	protected.POST("/batch", handler.PostBatch(d.Scraper, batches, d.Notifier, d.Metrics, cfg.Batch.MaxURLs))
	protected.GET("/batch/:id", handler.GetBatch(batches))
	protected.DELETE("/batch/:id", handler.CancelBatch(batches))

	// Session
	protected.GET("/records", handler.Records(d.Scraper))
	protected.GET("/stats", handler.Stats(d.Scraper))
	protected.POST("/export", handler.Export(d.Scraper, d.Exports, cfg.Export))

	return r
}
