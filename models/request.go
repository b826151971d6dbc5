package models

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URLs is the ordered list of targets. Blank entries are skipped.
	URLs []string `json:"urls" binding:"required,min=1"`

	// Workers is the pool size for this request.
	// Default: the server's configured worker count. Max: 32.
	Workers int `json:"workers,omitempty" binding:"omitempty,min=1,max=32"`

	// DelayMs overrides the per-worker politeness delay in milliseconds.
	DelayMs *int `json:"delay_ms,omitempty" binding:"omitempty,min=0,max=60000"`

	// ExportFormat selects an exporter ("json", "csv", ...) or "all".
	// Empty means no export.
	ExportFormat string `json:"export_format,omitempty"`
}

// SingleScrapeRequest is the payload for POST /api/v1/scrape/single.
type SingleScrapeRequest struct {
	// URL is the page to scrape. Required.
	URL string `json:"url" binding:"required"`

	// MaxAge enables the response cache: a cached record younger than
	// MaxAge milliseconds is returned without fetching.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// ExportRequest is the payload for POST /api/v1/export.
type ExportRequest struct {
	// Format is an exporter name or "all". Required.
	Format string `json:"format" binding:"required"`
}
