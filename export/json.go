package export

import (
	"encoding/json"
	"time"

	"github.com/use-agent/gleaner/models"
)

type exportMetadata struct {
	ExportTimestamp   string `json:"export_timestamp"`
	TotalResults      int    `json:"total_results"`
	SuccessfulScrapes int    `json:"successful_scrapes"`
	FailedScrapes     int    `json:"failed_scrapes"`
	ScraperVersion    string `json:"scraper_version"`
}

type jsonDocument struct {
	Metadata exportMetadata         `json:"metadata"`
	Results  []models.ScrapedRecord `json:"results"`
}

func (r *Registry) metadata(records []models.ScrapedRecord) exportMetadata {
	ok := countSuccessful(records)
	return exportMetadata{
		ExportTimestamp:   r.opts.Now().Format(time.RFC3339Nano),
		TotalResults:      len(records),
		SuccessfulScrapes: ok,
		FailedScrapes:     len(records) - ok,
		ScraperVersion:    r.opts.Version,
	}
}

// JSON writes "<base>.json": metadata plus every record in full.
func (r *Registry) JSON(records []models.ScrapedRecord, basePath string) (string, error) {
	path := basePath + ".json"
	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if records == nil {
		records = []models.ScrapedRecord{}
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonDocument{Metadata: r.metadata(records), Results: records}); err != nil {
		return "", err
	}
	return path, f.Close()
}
