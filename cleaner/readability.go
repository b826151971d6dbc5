package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the shortest TextContent accepted from readability.
// Shorter output means the main content was not found.
const minContentLength = 50

// MainContent runs the Readability algorithm over a page's HTML and reports
// whether it found an article. When it did not, the returned article wraps
// the input HTML and text unchanged so callers can proceed uniformly.
func MainContent(rawHTML, cleanText, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Debug("readability: invalid source URL", "url", sourceURL, "error", err)
		return fallbackArticle(rawHTML, cleanText), false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("readability: extraction failed", "url", sourceURL, "error", err)
		return fallbackArticle(rawHTML, cleanText), false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Debug("readability: content too short", "url", sourceURL, "length", len(article.TextContent))
		return fallbackArticle(rawHTML, cleanText), false
	}

	return article, true
}

func fallbackArticle(rawHTML, cleanText string) readability.Article {
	return readability.Article{
		Content:     rawHTML,
		TextContent: cleanText,
	}
}
