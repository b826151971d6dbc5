package export

import (
	"bufio"
	"encoding/json"

	"github.com/use-agent/gleaner/cleaner"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/simhash"
)

type trainingMetadata struct {
	Language        string `json:"language"`
	WordCount       int    `json:"word_count"`
	ContentType     string `json:"content_type"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
	LinksCount      int    `json:"links_count"`
	ImagesCount     int    `json:"images_count"`
	Timestamp       string `json:"timestamp"`
	ResponseSize    int    `json:"response_size"`
	TokenEstimate   int    `json:"token_estimate"`
}

type trainingLine struct {
	URL            string           `json:"url"`
	Domain         string           `json:"domain"`
	Title          string           `json:"title"`
	Content        string           `json:"content"`
	Metadata       trainingMetadata `json:"metadata"`
	StructuredData map[string]any   `json:"structured_data"`
	Links          []string         `json:"links"`
	Images         []string         `json:"images"`
}

// JSONL writes "<base>_ai_training.jsonl": one line per successful record
// with non-empty clean text, optionally skipping near duplicates.
func (r *Registry) JSONL(records []models.ScrapedRecord, basePath string) (string, error) {
	path := basePath + "_ai_training.jsonl"
	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var index *simhash.Index
	if r.opts.DedupeDistance >= 0 {
		index = simhash.NewIndex(r.opts.DedupeDistance)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range records {
		rec := &records[i]
		if !rec.Succeeded() || rec.CleanText == "" {
			continue
		}
		if index != nil && index.Add(rec.CleanText) {
			continue
		}
		line := trainingLine{
			URL:     rec.URL,
			Domain:  rec.Domain,
			Title:   rec.Title,
			Content: rec.CleanText,
			Metadata: trainingMetadata{
				Language:        rec.Language,
				WordCount:       rec.WordCount,
				ContentType:     rec.ContentType,
				MetaDescription: rec.MetaDescription,
				MetaKeywords:    rec.MetaKeywords,
				LinksCount:      rec.LinksFound,
				ImagesCount:     rec.ImagesFound,
				Timestamp:       rec.Timestamp,
				ResponseSize:    rec.ResponseSize,
				TokenEstimate:   cleaner.EstimateTokens(rec.CleanText),
			},
			StructuredData: rec.StructuredData,
			Links:          rec.LinksList,
			Images:         rec.ImagesList,
		}
		if err := enc.Encode(line); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return path, f.Close()
}
