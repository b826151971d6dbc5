package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/gleaner/engine"
	"github.com/use-agent/gleaner/extractor"
	"github.com/use-agent/gleaner/models"
)

type page struct {
	status      int
	contentType string
	body        string
	delay       time.Duration
}

// fakeEngine serves canned pages by URL; unknown URLs fail like a refused
// connection.
type fakeEngine struct {
	pages map[string]page
	hook  func(url string)
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	if f.hook != nil {
		f.hook(req.URL)
	}
	p, ok := f.pages[req.URL]
	if !ok {
		return nil, errors.New("dial tcp: connection refused")
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	h := http.Header{}
	if p.contentType != "" {
		h.Set("Content-Type", p.contentType)
	}
	status := p.status
	if status == 0 {
		status = http.StatusOK
	}
	return &engine.FetchResult{StatusCode: status, Header: h, Body: []byte(p.body), FinalURL: req.URL}, nil
}

func newTestScraper(eng engine.Engine, markup extractor.MarkupParser) *Scraper {
	f := engine.NewFetcher(eng, engine.NewSeededProfiles(1, nil), 2*time.Second)
	return New(f, extractor.New(markup), PoolOptions{Workers: 1})
}

func htmlPage(title string) page {
	return page{contentType: "text/html; charset=utf-8", body: "<html><head><title>" + title + "</title></head><body><p>hello world</p></body></html>"}
}

func TestRun_CompleteAndOrdered(t *testing.T) {
	pages := map[string]page{}
	var urls []string
	for i := 0; i < 12; i++ {
		u := fmt.Sprintf("https://order.test/%d", i)
		p := htmlPage(fmt.Sprintf("page %d", i))
		// Later URLs finish first.
		p.delay = time.Duration(12-i) * 3 * time.Millisecond
		pages[u] = p
		urls = append(urls, u)
	}
	urls = append(urls, "https://order.test/missing")

	s := newTestScraper(&fakeEngine{pages: pages}, nil)
	got := s.Run(context.Background(), urls, PoolOptions{Workers: 4})

	require.Len(t, got, len(urls))
	for i, rec := range got {
		assert.Equal(t, urls[i], rec.URL)
	}
	for i := 0; i < 12; i++ {
		assert.Equal(t, fmt.Sprintf("page %d", i), got[i].Title)
	}
	assert.Equal(t, 0, got[12].StatusCode)
}

func TestRun_NonCrash(t *testing.T) {
	s := newTestScraper(&fakeEngine{}, nil)
	urls := []string{"not a url", "ftp://files.test/x", "http://", "https://refused.test/"}

	got := s.ScrapeAll(context.Background(), urls)
	require.Len(t, got, len(urls))
	for _, rec := range got {
		assert.Equal(t, 0, rec.StatusCode, rec.URL)
		assert.NotEmpty(t, rec.CleanText, rec.URL)
		assert.Equal(t, rec.CleanText, rec.RawContent)
		assert.Equal(t, 0, rec.WordCount)
		assert.Equal(t, 0, rec.LinksFound)
		assert.Equal(t, models.ContentTypeError, rec.ContentType)
		assert.Equal(t, "ERROR", rec.Title)
		assert.NotNil(t, rec.Headers)
		assert.NotNil(t, rec.LinksList)
	}
	assert.Equal(t, "unknown", got[0].Domain)
	assert.Equal(t, "refused.test", got[3].Domain)
	assert.Contains(t, got[0].CleanText, models.ErrCodeInvalidInput)
	assert.Contains(t, got[3].CleanText, models.ErrCodeTransport)
}

func TestRun_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL + "/gone"
	srv.Close()

	f := engine.NewFetcher(engine.NewHTTPEngine(engine.HTTPOptions{}), nil, 2*time.Second)
	s := New(f, nil, PoolOptions{Workers: 1})

	got := s.ScrapeAll(context.Background(), []string{addr})
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].StatusCode)
	assert.Equal(t, 0, got[0].WordCount)
	assert.Equal(t, 0, got[0].LinksFound)
	assert.NotEmpty(t, got[0].CleanText)
}

func TestRun_JSONRecord(t *testing.T) {
	u := "https://example.com/page.json"
	s := newTestScraper(&fakeEngine{pages: map[string]page{
		u: {contentType: "application/json", body: `{"a": 1, "b": [1,2]}`},
	}}, nil)

	rec := s.ScrapeAll(context.Background(), []string{u})[0]
	assert.Equal(t, 200, rec.StatusCode)
	assert.Equal(t, "JSON API Response from example.com", rec.Title)
	assert.Contains(t, rec.CleanText, "a: 1")
	data, ok := rec.StructuredData[models.StructuredJSONData].(map[string]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
	assert.Equal(t, len(strings.Fields(rec.CleanText)), rec.WordCount)
	assert.Equal(t, len(`{"a": 1, "b": [1,2]}`), rec.ResponseSize)
	assert.Equal(t, "application/json", rec.ContentType)
}

func TestRun_HTMLRecord(t *testing.T) {
	var body strings.Builder
	body.WriteString(`<html lang="es"><head><title>T</title>`)
	body.WriteString(`<meta name="description" content="` + strings.Repeat("d", 600) + `">`)
	body.WriteString(`</head><body>`)
	for i := 0; i < 70; i++ {
		fmt.Fprintf(&body, `<a href="/l/%d">x</a><img src="/i/%d.png">`, i, i)
	}
	body.WriteString(`</body></html>`)

	u := "https://site.com/"
	s := newTestScraper(&fakeEngine{pages: map[string]page{
		u: {contentType: "text/html", body: body.String()},
	}}, nil)

	rec := s.ScrapeAll(context.Background(), []string{u})[0]
	assert.Equal(t, "es", rec.Language)
	assert.Equal(t, "T", rec.Title)
	assert.Equal(t, 70, rec.LinksFound)
	assert.Equal(t, 70, rec.ImagesFound)
	assert.Len(t, rec.LinksList, models.MaxLinksListed)
	assert.Len(t, rec.ImagesList, models.MaxImagesListed)
	assert.Equal(t, "https://site.com/l/0", rec.LinksList[0])
	assert.Len(t, []rune(rec.MetaDescription), models.MaxMetaDescription)
	assert.NotContains(t, rec.StructuredData, models.StructuredOpenGraph)
	assert.Equal(t, len(strings.Fields(rec.CleanText)), rec.WordCount)
}

func TestRun_NonOKPagesAreExtracted(t *testing.T) {
	u := "https://site.test/nope"
	s := newTestScraper(&fakeEngine{pages: map[string]page{
		u: {status: 404, contentType: "text/html", body: "<title>Not Found</title><p>missing page</p>"},
	}}, nil)

	rec := s.ScrapeAll(context.Background(), []string{u})[0]
	assert.Equal(t, 404, rec.StatusCode)
	assert.Equal(t, "Not Found", rec.Title)
	assert.Equal(t, 1, s.Stats().Failed)
}

func TestRun_UnknownContentType(t *testing.T) {
	u := "https://bare.test/"
	s := newTestScraper(&fakeEngine{pages: map[string]page{
		u: {body: "<p>no header</p>"},
	}}, nil)

	rec := s.ScrapeAll(context.Background(), []string{u})[0]
	assert.Equal(t, models.ContentTypeUnknown, rec.ContentType)
	assert.Equal(t, "Page from bare.test", rec.Title)
	assert.Equal(t, "no header", rec.CleanText)
}

type panicParser struct{}

func (panicParser) Name() string { return "panic" }

func (panicParser) Parse(string, *url.URL) (*extractor.HTMLResult, error) {
	panic("attribute exploded")
}

func TestRun_ExtractionPanicBecomesErrorRecord(t *testing.T) {
	u := "https://boom.test/"
	s := newTestScraper(&fakeEngine{pages: map[string]page{u: htmlPage("boom")}}, panicParser{})

	got := s.ScrapeAll(context.Background(), []string{u, "https://boom.test/other"})
	require.Len(t, got, 2)
	rec := got[0]
	assert.Equal(t, 200, rec.StatusCode, "status of the received response is kept")
	assert.Equal(t, models.ContentTypeError, rec.ContentType)
	assert.Contains(t, rec.CleanText, models.ErrCodeExtraction)
	assert.Contains(t, rec.CleanText, "attribute exploded")
	assert.Equal(t, rec.CleanText, rec.StructuredData[models.StructuredError])
}

func TestRun_Cancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	pages := map[string]page{}
	urls := make([]string, 5)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://slow.test/%d", i)
		pages[urls[i]] = htmlPage("ok")
	}
	eng := &fakeEngine{pages: pages, hook: func(u string) {
		if u == urls[0] {
			once.Do(func() { close(started) })
			<-release
		}
	}}
	s := newTestScraper(eng, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []models.ScrapedRecord)
	go func() { done <- s.Run(ctx, urls, PoolOptions{Workers: 1}) }()

	<-started
	cancel()
	close(release)
	got := <-done

	require.Len(t, got, len(urls))
	assert.Equal(t, 200, got[0].StatusCode, "in-flight fetch completes")
	for i := 1; i < len(urls); i++ {
		assert.Equal(t, urls[i], got[i].URL)
		assert.Equal(t, 0, got[i].StatusCode)
		assert.Contains(t, got[i].CleanText, cancelledMessage)
	}
	assert.Equal(t, len(urls), s.Len())
}

func TestRun_PerLaneDelay(t *testing.T) {
	pages := map[string]page{}
	urls := make([]string, 3)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://polite.test/%d", i)
		pages[urls[i]] = htmlPage("p")
	}
	s := newTestScraper(&fakeEngine{pages: pages}, nil)

	start := time.Now()
	got := s.Run(context.Background(), urls, PoolOptions{Workers: 1, Delay: 40 * time.Millisecond})
	require.Len(t, got, 3)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

type countingObserver struct {
	n       atomic.Int32
	buckets sync.Map
}

func (o *countingObserver) ObserveRecord(rec *models.ScrapedRecord, bucket string) {
	o.n.Add(1)
	o.buckets.Store(rec.URL, bucket)
}

func TestRun_ObserverAndSession(t *testing.T) {
	pages := map[string]page{
		"https://a.test/":  htmlPage("a"),
		"https://b.test/x": {contentType: "application/xml", body: "<a>b</a>"},
	}
	s := newTestScraper(&fakeEngine{pages: pages}, nil)
	obs := &countingObserver{}
	s.SetObserver(obs)

	var progress atomic.Int32
	s.Run(context.Background(), []string{"https://a.test/", "https://b.test/x"}, PoolOptions{
		Workers:  2,
		OnRecord: func(int, *models.ScrapedRecord) { progress.Add(1) },
	})
	s.ScrapeAll(context.Background(), []string{"https://c.test/"})

	assert.Equal(t, int32(3), obs.n.Load())
	assert.Equal(t, int32(2), progress.Load())
	b, _ := obs.buckets.Load("https://b.test/x")
	assert.Equal(t, "xml", b)
	e, _ := obs.buckets.Load("https://c.test/")
	assert.Equal(t, "error", e)

	records := s.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "https://c.test/", records[2].URL)

	records[0].Title = "mutated"
	assert.NotEqual(t, "mutated", s.Records()[0].Title)

	st := s.Stats()
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.Successful)
}

func TestScrapeURL_DoesNotTouchSession(t *testing.T) {
	s := newTestScraper(&fakeEngine{pages: map[string]page{"https://one.test/": htmlPage("one")}}, nil)
	rec := s.ScrapeURL(context.Background(), "https://one.test/")
	assert.Equal(t, "one", rec.Title)
	assert.Equal(t, 0, s.Len())
}

func TestRun_Empty(t *testing.T) {
	s := newTestScraper(&fakeEngine{}, nil)
	assert.Empty(t, s.Run(context.Background(), nil, PoolOptions{Workers: 3}))
}
