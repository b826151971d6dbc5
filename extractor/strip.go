package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	scriptStylePattern = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)\s*>`)
	titlePattern       = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title\s*>`)
	langPattern        = regexp.MustCompile(`(?is)<html\b[^>]*?\blang\s*=\s*["']?([^"'\s>]+)`)
)

// StripParser is the pattern-based markup capability. It never fails and
// does not resolve links, it only counts anchors and images.
type StripParser struct{}

func (StripParser) Name() string { return ParserStrip }

func (StripParser) Parse(text string, _ *url.URL) (*HTMLResult, error) {
	res := &HTMLResult{
		Parser:      ParserStrip,
		Raw:         text,
		CleanText:   CollapseWhitespace(html.UnescapeString(stripTags(scriptStylePattern.ReplaceAllString(text, " ")))),
		Links:       []string{},
		Images:      []string{},
		LinksFound:  strings.Count(text, "<a "),
		ImagesFound: strings.Count(text, "<img "),
	}
	if m := titlePattern.FindStringSubmatch(text); m != nil {
		res.Title = CollapseWhitespace(html.UnescapeString(stripTags(m[1])))
	}
	if m := langPattern.FindStringSubmatch(text); m != nil {
		res.Language = m[1]
	}
	return res, nil
}
