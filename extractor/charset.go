package extractor

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

const defaultEncoding = "utf-8"

// detectEncoding names the body's character encoding. A charset parameter
// on the declared type wins; markup bodies are then sniffed (BOM and
// <meta charset>); everything else is assumed UTF-8.
func detectEncoding(body []byte, contentType string, sniff bool) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if cs := strings.TrimSpace(params["charset"]); cs != "" {
			if _, name := charset.Lookup(cs); name != "" {
				return name
			}
			return strings.ToLower(cs)
		}
	}
	if !sniff {
		return defaultEncoding
	}
	_, name, certain := charset.DetermineEncoding(body, contentType)
	// DetermineEncoding falls back to windows-1252 when it finds nothing.
	if !certain && name == "windows-1252" && utf8.Valid(body) {
		return defaultEncoding
	}
	return name
}

// decode converts body from the named encoding to a UTF-8 string. Unknown
// labels and decoder failures leave the bytes as they are.
func decode(body []byte, encoding string) string {
	if encoding == defaultEncoding || encoding == "" {
		return string(body)
	}
	r, err := charset.NewReaderLabel(encoding, bytes.NewReader(body))
	if err != nil {
		return string(body)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(out)
}
