package extractor

import "strings"

// Bucket is the content kind that selects an extraction strategy.
type Bucket int

const (
	BucketHTML Bucket = iota
	BucketJSON
	BucketXML
	// BucketOther is used when no content type was declared. It is
	// extracted on the HTML path.
	BucketOther
)

func (b Bucket) String() string {
	switch b {
	case BucketJSON:
		return "json"
	case BucketXML:
		return "xml"
	case BucketOther:
		return "other"
	default:
		return "html"
	}
}

// Classify buckets a declared Content-Type by substring match. It never fails.
func Classify(contentType string) Bucket {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case ct == "":
		return BucketOther
	case strings.Contains(ct, "json"):
		return BucketJSON
	case strings.Contains(ct, "xml"):
		return BucketXML
	default:
		return BucketHTML
	}
}
