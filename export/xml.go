package export

import (
	"encoding/xml"
	"strconv"

	"github.com/use-agent/gleaner/models"
)

const xmlTextRunes = 1000

type xmlDocument struct {
	XMLName  xml.Name    `xml:"scraping_results"`
	Metadata xmlMetadata `xml:"metadata"`
	Results  []xmlResult `xml:"results>result"`
}

type xmlMetadata struct {
	ExportTimestamp string `xml:"export_timestamp"`
	TotalResults    int    `xml:"total_results"`
	Successful      int    `xml:"successful_scrapes"`
	Failed          int    `xml:"failed_scrapes"`
	ScraperVersion  string `xml:"scraper_version"`
}

type xmlResult struct {
	ID         string     `xml:"id,attr"`
	URL        string     `xml:"url"`
	Title      string     `xml:"title"`
	StatusCode int        `xml:"status_code"`
	LoadTime   string     `xml:"load_time"`
	Timestamp  string     `xml:"timestamp"`
	Domain     string     `xml:"domain"`
	Language   string     `xml:"language"`
	Metrics    xmlMetrics `xml:"metrics"`
	Content    xmlContent `xml:"content"`
}

type xmlMetrics struct {
	WordCount    int `xml:"word_count"`
	LinksFound   int `xml:"links_found"`
	ImagesFound  int `xml:"images_found"`
	ResponseSize int `xml:"response_size"`
}

type xmlContent struct {
	CleanText       string `xml:"clean_text"`
	MetaDescription string `xml:"meta_description"`
	MetaKeywords    string `xml:"meta_keywords"`
}

// XML writes "<base>.xml" with metrics and clean text capped at 1000 runes.
func (r *Registry) XML(records []models.ScrapedRecord, basePath string) (string, error) {
	path := basePath + ".xml"
	meta := r.metadata(records)
	doc := xmlDocument{
		Metadata: xmlMetadata{
			ExportTimestamp: meta.ExportTimestamp,
			TotalResults:    meta.TotalResults,
			Successful:      meta.SuccessfulScrapes,
			Failed:          meta.FailedScrapes,
			ScraperVersion:  meta.ScraperVersion,
		},
		Results: make([]xmlResult, len(records)),
	}
	for i := range records {
		rec := &records[i]
		doc.Results[i] = xmlResult{
			ID:         strconv.Itoa(i + 1),
			URL:        rec.URL,
			Title:      rec.Title,
			StatusCode: rec.StatusCode,
			LoadTime:   strconv.FormatFloat(rec.LoadTimeSeconds, 'f', -1, 64),
			Timestamp:  rec.Timestamp,
			Domain:     rec.Domain,
			Language:   rec.Language,
			Metrics: xmlMetrics{
				WordCount:    rec.WordCount,
				LinksFound:   rec.LinksFound,
				ImagesFound:  rec.ImagesFound,
				ResponseSize: rec.ResponseSize,
			},
			Content: xmlContent{
				CleanText:       preview(rec.CleanText, xmlTextRunes),
				MetaDescription: rec.MetaDescription,
				MetaKeywords:    rec.MetaKeywords,
			},
		}
	}

	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return "", err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return path, f.Close()
}
