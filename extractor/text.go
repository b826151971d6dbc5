package extractor

import (
	"net/url"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// CollapseWhitespace replaces every whitespace run with one space and trims.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripTags replaces every tag with a space and collapses whitespace.
func stripTags(s string) string {
	return CollapseWhitespace(tagPattern.ReplaceAllString(s, " "))
}

// Resolve makes ref absolute against base. An already absolute ref is
// returned unchanged, and a ref that does not parse is kept as written.
func Resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() || base == nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
