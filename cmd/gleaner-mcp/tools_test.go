package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/gleaner/engine"
	"github.com/use-agent/gleaner/extractor"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
)

func newTestScraper(t *testing.T) (*scraper.Scraper, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>Tool Page</title></head><body><p>" + strings.Repeat("word ", 200) + "</p></body></html>"))
	}))
	t.Cleanup(srv.Close)

	f := engine.NewFetcher(engine.NewHTTPEngine(engine.HTTPOptions{}), engine.NewSeededProfiles(3, nil), 5*time.Second)
	return scraper.New(f, extractor.New(nil), scraper.PoolOptions{Workers: 1}), srv.URL
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestScrapeURLs(t *testing.T) {
	sc, base := newTestScraper(t)

	res, err := handleScrapeURLs(sc)(context.Background(), call(map[string]any{
		"urls":     []any{base + "/a", " ", "ftp://bad"},
		"delay_ms": 0,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var out scrapeURLsResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, 2, out.Stats.Total)
	require.Len(t, out.Records, 2)
	assert.Equal(t, "Tool Page", out.Records[0].Title)
	assert.GreaterOrEqual(t, out.Records[0].WordCount, 200)
	assert.True(t, strings.HasSuffix(out.Records[0].Preview, "..."))
	assert.Equal(t, models.ContentTypeError, out.Records[1].ContentType)
}

func TestScrapeURLs_Missing(t *testing.T) {
	sc, _ := newTestScraper(t)
	res, err := handleScrapeURLs(sc)(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestScrapePage(t *testing.T) {
	sc, base := newTestScraper(t)

	res, err := handleScrapePage(sc)(context.Background(), call(map[string]any{"url": base}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var rec models.ScrapedRecord
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &rec))
	assert.Equal(t, "Tool Page", rec.Title)
	assert.Equal(t, 200, rec.StatusCode)

	res, err = handleScrapePage(sc)(context.Background(), call(map[string]any{"url": "mailto:x@y"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), models.ErrCodeInvalidInput)
}

func TestNewServer(t *testing.T) {
	sc, _ := newTestScraper(t)
	assert.NotNil(t, newServer(sc))
}
