package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ExtractJSON pretty-prints text and flattens it to "key: value" text.
// Invalid JSON is passed through as plain text under the generic title.
func ExtractJSON(text, domain string) *JSONResult {
	res := &JSONResult{Title: "Content from " + domain}

	data := []byte(text)
	var pretty bytes.Buffer
	if !json.Valid(data) || json.Indent(&pretty, data, "", "  ") != nil {
		res.Pretty = text
		res.CleanText = CollapseWhitespace(text)
		return res
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		res.Pretty = text
		res.CleanText = CollapseWhitespace(text)
		return res
	}

	var parts []string
	walker := json.NewDecoder(bytes.NewReader(data))
	walker.UseNumber()
	if err := flattenJSON(walker, "", &parts); err != nil && !errors.Is(err, io.EOF) {
		parts = []string{text}
	}

	res.Parsed = true
	res.Title = "JSON API Response from " + domain
	res.Pretty = pretty.String()
	res.CleanText = CollapseWhitespace(strings.Join(parts, " "))
	res.Data = value
	return res
}

// flattenJSON reads one value from dec in document order. Scalars under a
// key render as "key: value", nulls are skipped, containers recurse.
func flattenJSON(dec *json.Decoder, key string, parts *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			for dec.More() {
				k, err := dec.Token()
				if err != nil {
					return err
				}
				name, _ := k.(string)
				if err := flattenJSON(dec, name, parts); err != nil {
					return err
				}
			}
		case '[':
			for dec.More() {
				if err := flattenJSON(dec, "", parts); err != nil {
					return err
				}
			}
		}
		_, err = dec.Token() // closing delimiter
		return err
	case nil:
		return nil
	}

	s := scalarText(tok)
	if key != "" {
		s = key + ": " + s
	}
	if s != "" {
		*parts = append(*parts, s)
	}
	return nil
}

func scalarText(tok json.Token) string {
	switch v := tok.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ""
}
