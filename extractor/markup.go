package extractor

import (
	"fmt"
	"net/url"
)

// MarkupParser turns an HTML document into an HTMLResult. Title, language
// and encoding defaults are applied by the caller, not the parser.
type MarkupParser interface {
	Name() string
	Parse(text string, base *url.URL) (*HTMLResult, error)
}

// Parser names accepted by NewMarkupParser.
const (
	ParserDOM   = "dom"
	ParserStrip = "strip"
)

// NewMarkupParser returns the capability selected by name.
func NewMarkupParser(name string) (MarkupParser, error) {
	switch name {
	case ParserDOM, "":
		return NewDOMParser(), nil
	case ParserStrip:
		return StripParser{}, nil
	default:
		return nil, fmt.Errorf("extractor: unknown markup parser %q", name)
	}
}
