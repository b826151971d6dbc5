package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/gleaner/cache"
	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/engine"
	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/extractor"
	"github.com/use-agent/gleaner/metrics"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
	"github.com/use-agent/gleaner/webhook"
)

type testEnv struct {
	router  *gin.Engine
	origin  *httptest.Server
	fetches atomic.Int32
	// gate, when set, blocks /slow until closed.
	gate    chan struct{}
	started chan struct{}
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	env := &testEnv{started: make(chan struct{}, 16)}

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		env.fetches.Add(1)
		var links strings.Builder
		for i := range 15 {
			fmt.Fprintf(&links, `<a href="/l%d">l</a><img src="/i%d.png">`, i, i)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html lang="en"><head><title>Test Page</title></head><body><p>hello api world</p>%s</body></html>`, links.String())
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		env.fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"gleaner","ok":true}`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		env.started <- struct{}{}
		if env.gate != nil {
			<-env.gate
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("slow"))
	})
	env.origin = httptest.NewServer(mux)
	t.Cleanup(env.origin.Close)

	cfg := config.Defaults()
	cfg.Server.Mode = gin.TestMode
	cfg.Export.Dir = t.TempDir()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000}
	if mutate != nil {
		mutate(cfg)
	}

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	f := engine.NewFetcher(engine.NewHTTPEngine(engine.HTTPOptions{}), engine.NewSeededProfiles(7, nil), 5*time.Second)
	sc := scraper.New(f, extractor.New(nil), scraper.PoolOptions{Workers: 2})
	sc.SetObserver(m)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cc := cache.New(100, 0)
	t.Cleanup(cc.Close)

	env.router = NewRouter(ctx, Deps{
		Scraper:  sc,
		Exports:  export.NewRegistry(export.Options{OnExport: m.ObserveExport}),
		Cache:    cc,
		Metrics:  m,
		Notifier: webhook.NewNotifier(""),
		Config:   cfg,
		Version:  "test",
	})
	return env
}

func (e *testEnv) url(path string) string { return e.origin.URL + path }

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}
	})

	w := env.do(t, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	h := decode[models.HealthResponse](t, w)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, 2, h.Workers)
	assert.Equal(t, "test", h.Version)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/records", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/records", nil, "X-API-Key", "secret").Code)
}

func TestScrape(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/scrape", gin.H{
		"urls":          []string{"  ", env.url("/page"), env.url("/data"), "ftp://nope"},
		"delay_ms":      0,
		"export_format": "json",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.ScrapeResponse](t, w)
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "Test Page", resp.Results[0].Title)
	assert.Equal(t, "application/json", resp.Results[1].ContentType)
	assert.Equal(t, models.ContentTypeError, resp.Results[2].ContentType)
	assert.Equal(t, 3, resp.Stats.Total)
	assert.Equal(t, 2, resp.Stats.Successful)
	require.Len(t, resp.ExportedFiles, 1)
	assert.FileExists(t, resp.ExportedFiles[0])

	// Session now has the records.
	recs := decode[models.RecordsResponse](t, env.do(t, http.MethodGet, "/api/v1/records", nil))
	assert.Equal(t, 3, recs.Total)

	st := decode[models.Stats](t, env.do(t, http.MethodGet, "/api/v1/stats", nil))
	assert.Equal(t, 3, st.Total)
	assert.InDelta(t, 66.67, st.SuccessRate, 0.01)

	metricsBody := env.do(t, http.MethodGet, "/metrics", nil).Body.String()
	assert.Contains(t, metricsBody, `gleaner_records_total{bucket="html",status="2xx"} 1`)
	assert.Contains(t, metricsBody, `gleaner_exports_total{format="json",result="ok"} 1`)
}

func TestScrape_BadRequests(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/scrape", gin.H{"urls": []string{" ", ""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeInvalidInput)

	w = env.do(t, http.MethodPost, "/api/v1/scrape", gin.H{"urls": []string{env.url("/page")}, "export_format": "pdf"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), env.fetches.Load(), "unknown format is rejected before scraping")

	w = env.do(t, http.MethodPost, "/api/v1/scrape", gin.H{"urls": []string{env.url("/page")}, "workers": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScrapeSingle_CacheAndViewerLimits(t *testing.T) {
	env := newTestEnv(t, nil)
	body := gin.H{"url": env.url("/page"), "max_age": 60000}

	first := decode[models.SingleScrapeResponse](t, env.do(t, http.MethodPost, "/api/v1/scrape/single", body))
	assert.Equal(t, "success", first.Status)
	assert.Equal(t, "miss", first.CacheStatus)
	require.NotNil(t, first.Result)
	assert.Len(t, first.Result.LinksList, 10)
	assert.Len(t, first.Result.ImagesList, 10)
	assert.Equal(t, 15, first.Result.LinksFound)

	second := decode[models.SingleScrapeResponse](t, env.do(t, http.MethodPost, "/api/v1/scrape/single", body))
	assert.Equal(t, "hit", second.CacheStatus)
	assert.Equal(t, int32(1), env.fetches.Load())

	// Not part of the session.
	recs := decode[models.RecordsResponse](t, env.do(t, http.MethodGet, "/api/v1/records", nil))
	assert.Equal(t, 0, recs.Total)
}

func TestScrapeSingle_ErrorRecord(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := decode[models.SingleScrapeResponse](t, env.do(t, http.MethodPost, "/api/v1/scrape/single", gin.H{"url": "not a url"}))
	assert.Equal(t, "error", resp.Status)
	assert.Empty(t, resp.CacheStatus)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "ERROR", resp.Result.Title)
}

func TestBatch(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/batch", gin.H{"urls": []string{env.url("/page"), env.url("/data")}, "delay_ms": 0})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	created := decode[models.BatchResponse](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 2, created.Total)

	var status models.BatchStatusResponse
	require.Eventually(t, func() bool {
		status = decode[models.BatchStatusResponse](t, env.do(t, http.MethodGet, "/api/v1/batch/"+created.ID, nil))
		return status.Status != models.BatchProcessing
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, models.BatchCompleted, status.Status)
	assert.Equal(t, 2, status.Completed)
	require.Len(t, status.Results, 2)
	require.NotNil(t, status.Stats)
	assert.Equal(t, 2, status.Stats.Successful)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/batch/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/batch/missing", nil).Code)
}

func TestBatch_TooMany(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Batch.MaxURLs = 1 })
	w := env.do(t, http.MethodPost, "/api/v1/batch", gin.H{"urls": []string{env.url("/page"), env.url("/data")}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "maximum 1 URLs")
}

func TestBatch_Cancel(t *testing.T) {
	env := newTestEnv(t, nil)
	env.gate = make(chan struct{})

	w := env.do(t, http.MethodPost, "/api/v1/batch", gin.H{
		"urls":     []string{env.url("/slow"), env.url("/page"), env.url("/data")},
		"workers":  1,
		"delay_ms": 0,
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	id := decode[models.BatchResponse](t, w).ID

	select {
	case <-env.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first fetch never started")
	}
	assert.Equal(t, http.StatusAccepted, env.do(t, http.MethodDelete, "/api/v1/batch/"+id, nil).Code)
	close(env.gate)

	var status models.BatchStatusResponse
	require.Eventually(t, func() bool {
		status = decode[models.BatchStatusResponse](t, env.do(t, http.MethodGet, "/api/v1/batch/"+id, nil))
		return status.Status != models.BatchProcessing
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, models.BatchCancelled, status.Status)
	require.Len(t, status.Results, 3)
	assert.Contains(t, status.Results[0].CleanText, "slow", "in-flight fetch completes")
	assert.Contains(t, status.Results[1].CleanText, "cancelled")
	assert.Contains(t, status.Results[2].CleanText, "cancelled")
	assert.Equal(t, int32(0), env.fetches.Load())
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/export", gin.H{"format": "csv"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.do(t, http.MethodPost, "/api/v1/scrape", gin.H{"urls": []string{env.url("/page")}})

	w = env.do(t, http.MethodPost, "/api/v1/export", gin.H{"format": "csv"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.ExportResponse](t, w)
	assert.True(t, resp.Success)
	require.Len(t, resp.Files, 1)
	assert.True(t, strings.HasSuffix(resp.Files[0], ".csv"))

	w = env.do(t, http.MethodPost, "/api/v1/export", gin.H{"format": "docx"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
