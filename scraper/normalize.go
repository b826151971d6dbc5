package scraper

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/gleaner/extractor"
	"github.com/use-agent/gleaner/models"
)

// attempt carries the response facts that every record needs, whatever
// the extraction outcome.
type attempt struct {
	URL         string
	Domain      string
	StatusCode  int
	ContentType string
	Header      http.Header
	Size        int
	LoadTime    float64
	Timestamp   string
}

func (a *attempt) finish(start time.Time) {
	a.LoadTime = time.Since(start).Seconds()
	a.Timestamp = time.Now().Format(time.RFC3339Nano)
}

// toRecord normalizes an extraction outcome into the shared record shape.
func toRecord(a attempt, out extractor.Outcome) models.ScrapedRecord {
	if e, ok := out.(*extractor.ErrorResult); ok {
		return models.NewErrorRecord(a.URL, a.Domain, e.StatusCode, describe(e.Err), a.LoadTime, a.Timestamp)
	}

	contentType := a.ContentType
	if contentType == "" {
		contentType = models.ContentTypeUnknown
	}
	rec := models.ScrapedRecord{
		URL:             a.URL,
		Domain:          a.Domain,
		StatusCode:      a.StatusCode,
		ContentType:     contentType,
		Language:        "en",
		LinksList:       []string{},
		ImagesList:      []string{},
		StructuredData:  map[string]any{},
		ResponseSize:    a.Size,
		LoadTimeSeconds: a.LoadTime,
		Timestamp:       a.Timestamp,
		Headers:         flattenHeader(a.Header),
	}

	switch r := out.(type) {
	case *extractor.JSONResult:
		rec.Title = r.Title
		rec.Encoding = r.Encoding
		rec.RawContent = r.Pretty
		rec.CleanText = r.CleanText
		if r.Parsed {
			rec.StructuredData[models.StructuredJSONData] = r.Data
		}
	case *extractor.XMLResult:
		rec.Title = r.Title
		rec.Encoding = r.Encoding
		rec.RawContent = r.Raw
		rec.CleanText = r.CleanText
	case *extractor.HTMLResult:
		rec.Title = r.Title
		rec.MetaDescription = truncateRunes(r.MetaDescription, models.MaxMetaDescription)
		rec.MetaKeywords = r.MetaKeywords
		rec.Language = r.Language
		rec.Encoding = r.Encoding
		rec.RawContent = r.Raw
		rec.CleanText = r.CleanText
		rec.LinksFound = r.LinksFound
		rec.ImagesFound = r.ImagesFound
		rec.LinksList = head(r.Links, models.MaxLinksListed)
		rec.ImagesList = head(r.Images, models.MaxImagesListed)
		if len(r.JSONLD) > 0 {
			rec.StructuredData[models.StructuredJSONLD] = r.JSONLD
		}
		if len(r.OpenGraph) > 0 {
			rec.StructuredData[models.StructuredOpenGraph] = r.OpenGraph
		}
		if len(r.Twitter) > 0 {
			rec.StructuredData[models.StructuredTwitter] = r.Twitter
		}
	default:
		return models.NewErrorRecord(a.URL, a.Domain, a.StatusCode,
			models.NewScrapeError(models.ErrCodeExtraction, fmt.Sprintf("unexpected outcome %T", out), nil).Error(),
			a.LoadTime, a.Timestamp)
	}

	if rec.Encoding == "" {
		rec.Encoding = "utf-8"
	}
	rec.WordCount = len(strings.Fields(rec.CleanText))
	return rec
}

// describe renders an error for a record's text fields. It is never empty.
func describe(err error) string {
	if err == nil {
		return models.NewScrapeError(models.ErrCodeInternal, "unknown error", nil).Error()
	}
	return err.Error()
}

func panicMessage(r any) string {
	return fmt.Sprintf("panic during extraction: %v", r)
}

// flattenHeader joins multi-valued headers with ", ".
func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func head(list []string, n int) []string {
	if len(list) > n {
		list = list[:n]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
