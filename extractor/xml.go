package extractor

// ExtractXML strips tags without parsing. The raw text is kept as received.
func ExtractXML(text, domain string) *XMLResult {
	return &XMLResult{
		Title:     "XML Document from " + domain,
		Raw:       text,
		CleanText: stripTags(text),
	}
}
