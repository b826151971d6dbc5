package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
)

// Health returns a handler for GET /api/v1/health.
func Health(sc *scraper.Scraper, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(sc.StartTime()).Round(time.Second).String(),
			Records: sc.Len(),
			Workers: sc.Defaults().Workers,
			Version: version,
		})
	}
}
