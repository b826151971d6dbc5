package models

// Limits applied to the bounded lists of a record.
const (
	MaxLinksListed  = 50
	MaxImagesListed = 30

	// MaxMetaDescription is the rune cap for the meta description.
	MaxMetaDescription = 500
)

// Structured-data keys.
const (
	StructuredJSONLD    = "json_ld"
	StructuredOpenGraph = "open_graph"
	StructuredTwitter   = "twitter"
	StructuredJSONData  = "json_data"
	StructuredError     = "error"
)

// Content-type sentinels used when no real MIME type is available.
const (
	ContentTypeUnknown = "unknown"
	ContentTypeError   = "error"
)

// ScrapedRecord is the normalized result of one fetch attempt. Every
// exporter and API response is a re-serialization of this shape.
//
// A record is never partially populated: error records carry fallback
// values for every field (see NewErrorRecord).
type ScrapedRecord struct {
	// URL is the requested resource identifier.
	URL string `json:"url"`

	// Domain is the authority component of URL (host[:port]).
	Domain string `json:"domain"`

	// StatusCode is the HTTP status; 0 means no HTTP response was received.
	StatusCode int `json:"status_code"`

	// ContentType is the declared MIME type, or "unknown"/"error".
	ContentType string `json:"content_type"`

	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
	Language        string `json:"language"`
	Encoding        string `json:"encoding"`

	// RawContent is the processed body: HTML with noise subtrees removed,
	// pretty-printed JSON, or the XML text as received.
	RawContent string `json:"content"`

	// CleanText is markup-free text with whitespace collapsed to single spaces.
	CleanText string `json:"clean_text"`

	WordCount   int `json:"word_count"`
	LinksFound  int `json:"links_found"`
	ImagesFound int `json:"images_found"`

	// LinksList holds at most MaxLinksListed absolute URLs in document order.
	LinksList []string `json:"links_list"`

	// ImagesList holds at most MaxImagesListed absolute URLs in document order.
	ImagesList []string `json:"images_list"`

	// StructuredData maps a source kind ("json_ld", "open_graph", "twitter",
	// "json_data") to its payload. Empty, never nil, when nothing was found.
	StructuredData map[string]any `json:"structured_data"`

	ResponseSize    int     `json:"response_size"`
	LoadTimeSeconds float64 `json:"load_time"`

	// Timestamp is the ISO-8601 capture time.
	Timestamp string `json:"timestamp"`

	Headers map[string]string `json:"headers"`
}

// Succeeded reports whether the record counts as a successful scrape.
func (r *ScrapedRecord) Succeeded() bool {
	return r.StatusCode == 200
}

// NewErrorRecord builds a fully populated record describing a failed
// scrape. statusCode is 0 for transport failures and the received HTTP
// status for failures that happened after a response arrived.
func NewErrorRecord(url, domain string, statusCode int, description string, loadTime float64, timestamp string) ScrapedRecord {
	if domain == "" {
		domain = ContentTypeUnknown
	}
	return ScrapedRecord{
		URL:             url,
		Domain:          domain,
		StatusCode:      statusCode,
		ContentType:     ContentTypeError,
		Title:           "ERROR",
		MetaDescription: "Error occurred",
		Language:        "en",
		Encoding:        "utf-8",
		RawContent:      description,
		CleanText:       description,
		LinksList:       []string{},
		ImagesList:      []string{},
		StructuredData:  map[string]any{StructuredError: description},
		LoadTimeSeconds: loadTime,
		Timestamp:       timestamp,
		Headers:         map[string]string{},
	}
}
