package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/gleaner/cache"
	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
)

// viewerListLimit caps the links and images returned by the single-page view.
const viewerListLimit = 10

// Scrape returns a handler for POST /api/v1/scrape.
//
// The request blocks until every URL has a record. A disconnecting client
// cancels the run: URLs not yet started come back as error records.
func Scrape(sc *scraper.Scraper, reg *export.Registry, exportCfg config.ExportConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}

		urls := cleanURLs(req.URLs)
		if len(urls) == 0 {
			invalidInput(c, "no URLs provided")
			return
		}

		var formats []string
		if req.ExportFormat != "" {
			var err error
			if formats, err = reg.Resolve(req.ExportFormat, exportCfg.Formats); err != nil {
				respondError(c, err)
				return
			}
		}

		results := sc.Run(c.Request.Context(), urls, poolOptions(sc.Defaults(), req.Workers, req.DelayMs))
		stats := scraper.ComputeStats(results)

		resp := models.ScrapeResponse{
			Status:  "success",
			Message: fmt.Sprintf("Scraped %d URLs, %d successful", stats.Total, stats.Successful),
			Results: results,
			Stats:   stats,
		}

		if len(formats) > 0 {
			files, err := reg.All(results, exportCfg.Dir, "scraped_data", formats)
			resp.ExportedFiles = files
			if err != nil {
				slog.Warn("scrape export incomplete", "format", req.ExportFormat, "error", err)
				resp.Message += "; export failed: " + models.AsScrapeError(err).Message
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

// ScrapeSingle returns a handler for POST /api/v1/scrape/single.
//
// The record is not added to the session. With max_age > 0 a cached record
// younger than max_age milliseconds is served without fetching.
func ScrapeSingle(sc *scraper.Scraper, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SingleScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}

		key := cache.Key(req.URL)
		maxAge := time.Duration(req.MaxAge) * time.Millisecond

		cacheStatus := ""
		rec, hit := models.ScrapedRecord{}, false
		if cc != nil && maxAge > 0 {
			rec, hit = cc.Get(key, maxAge)
			cacheStatus = "miss"
			if hit {
				cacheStatus = "hit"
			}
		}
		if !hit {
			rec = sc.ScrapeURL(c.Request.Context(), key)
			if cc != nil && maxAge > 0 {
				cc.Set(key, rec)
			}
		}

		view := viewerRecord(rec)
		resp := models.SingleScrapeResponse{
			Status:      "success",
			Message:     "Scraped " + view.URL,
			Result:      &view,
			CacheStatus: cacheStatus,
		}
		if !view.Succeeded() {
			resp.Status = "error"
			resp.Message = view.CleanText
			if view.ContentType != models.ContentTypeError {
				resp.Message = fmt.Sprintf("HTTP %d from %s", view.StatusCode, view.URL)
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func viewerRecord(rec models.ScrapedRecord) models.ScrapedRecord {
	if len(rec.LinksList) > viewerListLimit {
		rec.LinksList = rec.LinksList[:viewerListLimit]
	}
	if len(rec.ImagesList) > viewerListLimit {
		rec.ImagesList = rec.ImagesList[:viewerListLimit]
	}
	return rec
}
