package cleaner

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/gleaner/extractor"
	"github.com/use-agent/gleaner/models"
)

// Cleaner renders records as LLM-friendly documents. It is safe for
// concurrent use; the Markdown converter is built once and reused.
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner creates a Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{mdConverter: newMarkdownConverter()}
}

// Document is the cleaned form of one record.
type Document struct {
	Title    string
	Markdown string
	Tokens   int
	// Readable is true when readability located the main content.
	Readable bool
}

// Markdown converts a record's content to Markdown. HTML records go through
// readability first; JSON becomes a fenced block; everything else uses the
// clean text. Error records are rendered as their description.
func (c *Cleaner) Markdown(rec *models.ScrapedRecord) (*Document, error) {
	doc := &Document{Title: rec.Title}

	switch {
	case rec.ContentType == models.ContentTypeError:
		doc.Markdown = rec.CleanText
	case extractor.Classify(contentTypeOf(rec)) == extractor.BucketJSON:
		doc.Markdown = "```json\n" + rec.RawContent + "\n```"
	case extractor.Classify(contentTypeOf(rec)) == extractor.BucketXML:
		doc.Markdown = rec.CleanText
	default:
		article, ok := MainContent(rec.RawContent, rec.CleanText, rec.URL)
		doc.Readable = ok
		if ok && article.Title != "" {
			doc.Title = article.Title
		}
		md, err := ToMarkdown(c.mdConverter, article.Content, rec.URL)
		if err != nil {
			return nil, fmt.Errorf("cleaner: convert %s to markdown: %w", rec.URL, err)
		}
		doc.Markdown = strings.TrimSpace(md)
	}

	doc.Tokens = EstimateTokens(doc.Markdown)
	return doc, nil
}

func contentTypeOf(rec *models.ScrapedRecord) string {
	if rec.ContentType == models.ContentTypeUnknown {
		return ""
	}
	return rec.ContentType
}
