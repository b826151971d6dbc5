package extractor

import (
	"log/slog"
	"net/url"
)

// Response is what an extractor needs from a fetched resource.
type Response struct {
	// URL is the requested URL; relative links resolve against it.
	URL         *url.URL
	ContentType string
	Body        []byte
}

// Extractor classifies a response and runs the matching strategy. The
// markup capability for HTML is fixed at construction.
type Extractor struct {
	markup MarkupParser
}

// New creates an Extractor. A nil parser selects the DOM parser.
func New(markup MarkupParser) *Extractor {
	if markup == nil {
		markup = NewDOMParser()
	}
	return &Extractor{markup: markup}
}

// Markup returns the configured markup capability.
func (e *Extractor) Markup() MarkupParser { return e.markup }

// Extract turns resp into an outcome. It does not recover panics; callers
// that must never crash convert them to an ErrorResult.
func (e *Extractor) Extract(resp Response) Outcome {
	domain := ""
	if resp.URL != nil {
		domain = resp.URL.Host
	}

	bucket := Classify(resp.ContentType)
	encoding := detectEncoding(resp.Body, resp.ContentType, bucket == BucketHTML || bucket == BucketOther)
	text := decode(resp.Body, encoding)

	switch bucket {
	case BucketJSON:
		res := ExtractJSON(text, domain)
		res.Encoding = encoding
		return res
	case BucketXML:
		res := ExtractXML(text, domain)
		res.Encoding = encoding
		return res
	}

	res := e.extractHTML(text, resp.URL)
	if res.Title == "" {
		res.Title = "Page from " + domain
	}
	if res.Language == "" {
		res.Language = "en"
	}
	res.Encoding = encoding
	return res
}

// extractHTML runs the configured parser and degrades to StripParser
// when it fails.
func (e *Extractor) extractHTML(text string, base *url.URL) *HTMLResult {
	res, err := e.markup.Parse(text, base)
	if err == nil {
		return res
	}
	slog.Debug("markup parser failed, stripping tags", "parser", e.markup.Name(), "error", err)
	res, _ = StripParser{}.Parse(text, base)
	return res
}
