package export

import (
	"encoding/csv"
	"strconv"

	"github.com/use-agent/gleaner/models"
)

// Tabular exports share one flattened row layout.
var tabularHeader = []string{
	"url", "title", "status_code", "load_time", "timestamp", "word_count",
	"links_found", "images_found", "domain", "content_type", "meta_description",
	"meta_keywords", "response_size", "language", "encoding", "clean_text_preview",
	"has_structured_data", "links_count", "images_count",
}

const tabularPreviewRunes = 500

// tabularRow flattens a record; values keep their Go types for xlsx.
func tabularRow(rec *models.ScrapedRecord) []any {
	return []any{
		rec.URL,
		rec.Title,
		rec.StatusCode,
		rec.LoadTimeSeconds,
		rec.Timestamp,
		rec.WordCount,
		rec.LinksFound,
		rec.ImagesFound,
		rec.Domain,
		rec.ContentType,
		rec.MetaDescription,
		rec.MetaKeywords,
		rec.ResponseSize,
		rec.Language,
		rec.Encoding,
		preview(rec.CleanText, tabularPreviewRunes),
		len(rec.StructuredData) > 0,
		len(rec.LinksList),
		len(rec.ImagesList),
	}
}

func formatCell(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// CSV writes "<base>.csv" with one flattened row per record.
func (r *Registry) CSV(records []models.ScrapedRecord, basePath string) (string, error) {
	path := basePath + ".csv"
	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tabularHeader); err != nil {
		return "", err
	}
	row := make([]string, len(tabularHeader))
	for i := range records {
		for j, v := range tabularRow(&records[i]) {
			row[j] = formatCell(v)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, f.Close()
}
