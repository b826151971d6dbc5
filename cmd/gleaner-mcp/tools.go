package main

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
)

const previewRunes = 300

// compactRecord is the per-URL summary returned by scrape_urls.
type compactRecord struct {
	URL         string `json:"url"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Language    string `json:"language"`
	WordCount   int    `json:"word_count"`
	LinksFound  int    `json:"links_found"`
	ImagesFound int    `json:"images_found"`
	Preview     string `json:"preview"`
}

type scrapeURLsResult struct {
	Stats   models.Stats    `json:"stats"`
	Records []compactRecord `json:"records"`
}

func compact(rec *models.ScrapedRecord) compactRecord {
	text := rec.CleanText
	if utf8.RuneCountInString(text) > previewRunes {
		text = string([]rune(text)[:previewRunes]) + "..."
	}
	return compactRecord{
		URL:         rec.URL,
		StatusCode:  rec.StatusCode,
		ContentType: rec.ContentType,
		Title:       rec.Title,
		Language:    rec.Language,
		WordCount:   rec.WordCount,
		LinksFound:  rec.LinksFound,
		ImagesFound: rec.ImagesFound,
		Preview:     text,
	}
}

func handleScrapeURLs(sc *scraper.Scraper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		var urls []string
		for _, u := range raw {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) == 0 {
			return mcp.NewToolResultError("no URLs provided"), nil
		}
		if len(urls) > maxToolURLs {
			return mcp.NewToolResultError(fmt.Sprintf("maximum %d URLs per call", maxToolURLs)), nil
		}

		opts := sc.Defaults()
		if w := request.GetInt("workers", 0); w > 0 {
			opts.Workers = min(w, 32)
		}
		if d := request.GetInt("delay_ms", -1); d >= 0 {
			opts.Delay = time.Duration(d) * time.Millisecond
		}

		records := sc.Run(ctx, urls, opts)
		result := scrapeURLsResult{
			Stats:   scraper.ComputeStats(records),
			Records: make([]compactRecord, len(records)),
		}
		for i := range records {
			result.Records[i] = compact(&records[i])
		}
		return jsonResult(result)
	}
}

func handleScrapePage(sc *scraper.Scraper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		rec := sc.ScrapeURL(ctx, strings.TrimSpace(url))
		if rec.ContentType == models.ContentTypeError {
			return mcp.NewToolResultError(rec.CleanText), nil
		}
		return jsonResult(rec)
	}
}
