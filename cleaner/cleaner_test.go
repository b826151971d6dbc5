package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/gleaner/models"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcdef", 2},
		{"日本語の文章", 2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(tt.in))
		})
	}
}

func TestMarkdown_HTMLArticle(t *testing.T) {
	para := strings.Repeat("Gleaner turns pages into tidy records for downstream tools. ", 8)
	rec := &models.ScrapedRecord{
		URL:         "https://blog.test/post",
		ContentType: "text/html",
		Title:       "Post",
		RawContent: `<html><head><title>Post</title></head><body><article><h1>Post</h1><p>` + para +
			`</p><p><a href="/next">next</a></p></article></body></html>`,
	}

	doc, err := NewCleaner().Markdown(rec)
	require.NoError(t, err)
	assert.Contains(t, doc.Markdown, "Gleaner turns pages")
	assert.Contains(t, doc.Markdown, "https://blog.test/next")
	assert.Greater(t, doc.Tokens, 0)
}

func TestMarkdown_JSONAndError(t *testing.T) {
	c := NewCleaner()

	doc, err := c.Markdown(&models.ScrapedRecord{ContentType: "application/json", RawContent: "{\n  \"a\": 1\n}"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.Markdown, "```json\n"))

	errRec := models.NewErrorRecord("https://x.test", "x.test", 0, "TRANSPORT_ERROR: request failed", 0, "")
	doc, err = c.Markdown(&errRec)
	require.NoError(t, err)
	assert.Equal(t, "TRANSPORT_ERROR: request failed", doc.Markdown)
	assert.False(t, doc.Readable)
}
