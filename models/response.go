package models

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Status is "success" or "error".
	Status  string `json:"status"`
	Message string `json:"message"`

	Results []ScrapedRecord `json:"results"`
	Stats   Stats           `json:"stats"`

	// ExportedFiles lists files written when an export format was requested.
	ExportedFiles []string `json:"exported_files,omitempty"`

	// Error is populated only when Status is "error".
	Error *ErrorDetail `json:"error,omitempty"`
}

// SingleScrapeResponse is the response for POST /api/v1/scrape/single.
type SingleScrapeResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Result  *ScrapedRecord `json:"result"`

	// CacheStatus indicates whether the record was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// RecordsResponse is the response for GET /api/v1/records.
type RecordsResponse struct {
	Total   int             `json:"total"`
	Records []ScrapedRecord `json:"records"`
}

// ExportResponse is the response for POST /api/v1/export.
type ExportResponse struct {
	Success bool         `json:"success"`
	Files   []string     `json:"files,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Records int    `json:"records"`
	Workers int    `json:"workers"`
	Version string `json:"version"`
}
