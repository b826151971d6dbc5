package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
)

// Records returns a handler for GET /api/v1/records.
func Records(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		records := sc.Records()
		c.JSON(http.StatusOK, models.RecordsResponse{Total: len(records), Records: records})
	}
}

// Stats returns a handler for GET /api/v1/stats.
func Stats(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sc.Stats())
	}
}

// Export returns a handler for POST /api/v1/export.
func Export(sc *scraper.Scraper, reg *export.Registry, exportCfg config.ExportConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}

		records := sc.Records()
		if len(records) == 0 {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "no records to export", nil))
			return
		}

		formats, err := reg.Resolve(req.Format, exportCfg.Formats)
		if err != nil {
			respondError(c, err)
			return
		}

		files, err := reg.All(records, exportCfg.Dir, "scraped_data", formats)
		if err != nil {
			se := models.AsScrapeError(err)
			c.JSON(mapErrorToStatus(se), models.ExportResponse{Success: false, Files: files, Error: se.ToDetail()})
			return
		}
		c.JSON(http.StatusOK, models.ExportResponse{Success: true, Files: files})
	}
}
