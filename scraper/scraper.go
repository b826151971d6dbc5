package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/use-agent/gleaner/engine"
	"github.com/use-agent/gleaner/extractor"
	"github.com/use-agent/gleaner/models"
)

// Observer is notified once per finished record. Calls may be concurrent.
type Observer interface {
	ObserveRecord(rec *models.ScrapedRecord, bucket string)
}

// PoolOptions controls one run of the worker pool.
type PoolOptions struct {
	// Workers is the number of lanes. Values below 1 mean 1.
	Workers int

	// Delay is the pause between two requests of the same lane. The first
	// request of a lane is not delayed, so nothing waits after the last URL.
	Delay time.Duration

	// OnRecord, if set, is called from the worker as each slot is filled.
	OnRecord func(index int, rec *models.ScrapedRecord)
}

// Scraper is the orchestrator: it drives URLs through fetch, classify,
// extract and normalize, and keeps the session's records.
// It is safe for concurrent use.
type Scraper struct {
	fetcher   *engine.Fetcher
	extractor *extractor.Extractor
	defaults  PoolOptions
	observer  Observer
	startTime time.Time

	mu      sync.RWMutex
	records []models.ScrapedRecord
}

// New creates a Scraper. defaults apply to ScrapeAll.
func New(fetcher *engine.Fetcher, ex *extractor.Extractor, defaults PoolOptions) *Scraper {
	if ex == nil {
		ex = extractor.New(nil)
	}
	return &Scraper{
		fetcher:   fetcher,
		extractor: ex,
		defaults:  defaults,
		startTime: time.Now(),
	}
}

// SetObserver installs a per-record hook (metrics). Call before use.
func (s *Scraper) SetObserver(o Observer) {
	s.observer = o
}

// Defaults returns the pool options used by ScrapeAll.
func (s *Scraper) Defaults() PoolOptions { return s.defaults }

// StartTime is when the session began.
func (s *Scraper) StartTime() time.Time { return s.startTime }

// ScrapeAll scrapes urls with the default pool options. See Run.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string) []models.ScrapedRecord {
	return s.Run(ctx, urls, s.defaults)
}

// Run scrapes urls and returns exactly one record per URL, in input order.
// Cancelling ctx stops dequeuing: URLs not yet started get an error record,
// in-flight fetches finish or time out. The records are appended to the
// session once the run is complete.
func (s *Scraper) Run(ctx context.Context, urls []string, opts PoolOptions) []models.ScrapedRecord {
	started := time.Now()
	slog.Info("scrape started", "urls", len(urls), "workers", opts.Workers, "delay", opts.Delay)

	results := runPool(ctx, urls, opts, s.scrape)

	s.mu.Lock()
	s.records = append(s.records, results...)
	s.mu.Unlock()

	st := ComputeStats(results)
	slog.Info("scrape finished",
		"total", st.Total,
		"successful", st.Successful,
		"failed", st.Failed,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return results
}

// ScrapeURL scrapes a single URL without adding it to the session.
func (s *Scraper) ScrapeURL(ctx context.Context, rawURL string) models.ScrapedRecord {
	return s.scrape(ctx, rawURL)
}

// Records returns a copy of every record of the session, oldest first.
func (s *Scraper) Records() []models.ScrapedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Len returns the number of records in the session.
func (s *Scraper) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Stats folds the session's records.
func (s *Scraper) Stats() models.Stats {
	return ComputeStats(s.Records())
}

// scrape runs one URL end to end. It never panics and always returns a
// fully populated record.
func (s *Scraper) scrape(ctx context.Context, rawURL string) (rec models.ScrapedRecord) {
	start := time.Now()
	a := attempt{URL: rawURL, Domain: hostOf(rawURL)}
	bucket := "error"

	defer func() {
		if s.observer != nil {
			s.observer.ObserveRecord(&rec, bucket)
		}
	}()

	res, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		a.finish(start)
		slog.Warn("fetch failed", "url", rawURL, "error", err)
		return toRecord(a, &extractor.ErrorResult{Err: err})
	}

	a.StatusCode = res.StatusCode
	a.ContentType = res.Header.Get("Content-Type")
	a.Header = res.Header
	a.Size = len(res.Body)

	out := s.extract(a, res.Body)
	a.finish(start)
	rec = toRecord(a, out)

	if _, failed := out.(*extractor.ErrorResult); failed {
		slog.Warn("extraction failed", "url", rawURL, "status", rec.StatusCode, "error", rec.CleanText)
		return rec
	}
	bucket = extractor.Classify(a.ContentType).String()
	slog.Info("scraped",
		"url", rawURL,
		"status", rec.StatusCode,
		"bucket", bucket,
		"words", rec.WordCount,
		"links", rec.LinksFound,
		"images", rec.ImagesFound,
		"load_time", rec.LoadTimeSeconds,
	)
	return rec
}

// extract runs the extractor, converting a panic into an ErrorResult that
// keeps the received status.
func (s *Scraper) extract(a attempt, body []byte) (out extractor.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = &extractor.ErrorResult{
				StatusCode: a.StatusCode,
				Err:        models.NewScrapeError(models.ErrCodeExtraction, panicMessage(r), nil),
			}
		}
	}()

	u, err := url.Parse(a.URL)
	if err != nil {
		return &extractor.ErrorResult{
			StatusCode: a.StatusCode,
			Err:        models.NewScrapeError(models.ErrCodeExtraction, "parse request URL", err),
		}
	}
	return s.extractor.Extract(extractor.Response{
		URL:         u,
		ContentType: a.ContentType,
		Body:        body,
	})
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
