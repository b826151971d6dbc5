package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selectors are compiled once and shared; cascadia matchers are safe for
// concurrent use.
var (
	selTitle       = cascadia.MustCompile("title")
	selHTML        = cascadia.MustCompile("html")
	selDescription = cascadia.MustCompile(`meta[name="description"]`)
	selKeywords    = cascadia.MustCompile(`meta[name="keywords"]`)
	selLinks       = cascadia.MustCompile("a[href]")
	selImages      = cascadia.MustCompile("img[src]")
	selJSONLD      = cascadia.MustCompile(`script[type="application/ld+json"]`)
	selOpenGraph   = cascadia.MustCompile(`meta[property^="og:"]`)
	selTwitter     = cascadia.MustCompile(`meta[name^="twitter:"]`)
	selNoise       = cascadia.MustCompile("script, style, nav, footer, header")
)

// DOMParser is the full markup capability built on x/net/html and goquery.
type DOMParser struct{}

func NewDOMParser() DOMParser { return DOMParser{} }

func (DOMParser) Name() string { return ParserDOM }

func (DOMParser) Parse(text string, base *url.URL) (*HTMLResult, error) {
	root, err := html.ParseWithOptions(strings.NewReader(text), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("extractor: parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	res := &HTMLResult{
		Parser:          ParserDOM,
		Title:           strings.TrimSpace(doc.FindMatcher(selTitle).First().Text()),
		MetaDescription: strings.TrimSpace(doc.FindMatcher(selDescription).First().AttrOr("content", "")),
		MetaKeywords:    strings.TrimSpace(doc.FindMatcher(selKeywords).First().AttrOr("content", "")),
		Language:        strings.TrimSpace(doc.FindMatcher(selHTML).First().AttrOr("lang", "")),
	}

	res.Links = resolveAll(doc.FindMatcher(selLinks), "href", base)
	res.Images = resolveAll(doc.FindMatcher(selImages), "src", base)
	res.LinksFound = len(res.Links)
	res.ImagesFound = len(res.Images)

	res.JSONLD = jsonLD(doc)
	res.OpenGraph = prefixedMeta(doc.FindMatcher(selOpenGraph), "property", "og:")
	res.Twitter = prefixedMeta(doc.FindMatcher(selTwitter), "name", "twitter:")

	// Structured data is read first: JSON-LD lives in <script>.
	doc.FindMatcher(selNoise).Remove()

	raw, err := renderDocument(root)
	if err != nil {
		return nil, err
	}
	res.Raw = raw
	res.CleanText = visibleText(root)
	return res, nil
}

func resolveAll(sel *goquery.Selection, attr string, base *url.URL) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(attr)
		out = append(out, Resolve(base, v))
	})
	return out
}

// jsonLD decodes every JSON-LD script, skipping those that do not parse.
func jsonLD(doc *goquery.Document) []any {
	var out []any
	doc.FindMatcher(selJSONLD).Each(func(_ int, s *goquery.Selection) {
		dec := json.NewDecoder(strings.NewReader(s.Text()))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return
		}
		out = append(out, v)
	})
	return out
}

// prefixedMeta maps meta[attr^=prefix] to content, keyed by the attribute
// value without the prefix. It returns nil when nothing qualifies.
func prefixedMeta(sel *goquery.Selection, attr, prefix string) map[string]string {
	var out map[string]string
	sel.Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimPrefix(s.AttrOr(attr, ""), prefix)
		content := s.AttrOr("content", "")
		if name == "" || content == "" {
			return
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[name] = content
	})
	return out
}

func renderDocument(root *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("extractor: render html: %w", err)
		}
	}
	return buf.String(), nil
}

// visibleText joins every non-blank text node with single spaces.
func visibleText(root *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return CollapseWhitespace(strings.Join(parts, " "))
}
