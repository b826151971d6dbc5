package extractor

// Outcome is the result of extracting one response body. It is one of
// *JSONResult, *XMLResult, *HTMLResult or *ErrorResult.
type Outcome interface {
	outcome()
}

// JSONResult is produced for JSON bodies. When Parsed is false the body
// was not valid JSON and Pretty/CleanText hold the body text as received.
type JSONResult struct {
	Parsed    bool
	Title     string
	Pretty    string
	CleanText string
	// Data is the decoded document; numbers are json.Number.
	Data     any
	Encoding string
}

// XMLResult is produced for XML bodies.
type XMLResult struct {
	Title     string
	Raw       string
	CleanText string
	Encoding  string
}

// HTMLResult is produced for HTML and unclassified bodies.
type HTMLResult struct {
	// Parser names the MarkupParser that produced the result.
	Parser string

	Title           string
	MetaDescription string
	MetaKeywords    string
	Language        string
	Encoding        string

	// Raw is the serialized document after noise removal.
	Raw       string
	CleanText string

	// Links and Images are absolute URLs in document order, untruncated.
	// LinksFound and ImagesFound may exceed their lengths when a parser
	// can count elements without resolving them.
	Links       []string
	Images      []string
	LinksFound  int
	ImagesFound int

	JSONLD    []any
	OpenGraph map[string]string
	Twitter   map[string]string
}

// ErrorResult describes a failed attempt. StatusCode is the HTTP status
// if a response was received, else 0.
type ErrorResult struct {
	StatusCode int
	Err        error
}

func (*JSONResult) outcome()  {}
func (*XMLResult) outcome()   {}
func (*HTMLResult) outcome()  {}
func (*ErrorResult) outcome() {}
