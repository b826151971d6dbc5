package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
)

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	se := models.AsScrapeError(err)
	c.JSON(mapErrorToStatus(se), gin.H{
		"status": "error",
		"error":  se.ToDetail(),
	})
}

func invalidInput(c *gin.Context, message string) {
	respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, message, nil))
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeTransport:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// cleanURLs trims every entry and drops the blank ones.
func cleanURLs(raw []string) []string {
	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// poolOptions applies per-request overrides to the server defaults.
func poolOptions(defaults scraper.PoolOptions, workers int, delayMs *int) scraper.PoolOptions {
	opts := defaults
	if workers > 0 {
		opts.Workers = workers
	}
	if delayMs != nil {
		opts.Delay = time.Duration(*delayMs) * time.Millisecond
	}
	return opts
}
