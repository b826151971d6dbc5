package export

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
)

const reportPreviewRunes = 300

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"commas":  commas,
	"seconds": func(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) + "s" },
	"percent": func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) + "%" },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Scrape Report</title>
<style>
body { font-family: system-ui, sans-serif; background: #f5f6fa; color: #222; margin: 0; padding: 24px; }
.container { max-width: 1200px; margin: 0 auto; }
.stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 16px; margin: 24px 0; }
.stat-card { background: #fff; border-radius: 8px; padding: 16px; text-align: center; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.stat-card h3 { margin: 0 0 4px; font-size: 1.8em; color: #3758f9; }
.result-card { background: #fff; border-radius: 8px; padding: 20px; margin: 16px 0; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.result-card.success { border-left: 5px solid #28a745; }
.result-card.error { border-left: 5px solid #dc3545; }
.result-header { display: flex; justify-content: space-between; align-items: center; }
.status { padding: 4px 12px; border-radius: 12px; color: #fff; font-weight: bold; }
.status-success { background: #28a745; }
.status-error { background: #dc3545; }
.metrics span { display: inline-block; background: #eef1ff; border-radius: 12px; padding: 4px 10px; margin: 4px 4px 0 0; }
.content-text { font-style: italic; color: #555; }
.structured-data { background: #eef9ff; border-radius: 6px; padding: 10px; margin-top: 12px; }
</style>
</head>
<body>
<div class="container">
<h1>Scrape Report</h1>
<p><strong>Generated:</strong> {{.Generated}} &middot; {{.Version}}</p>
<div class="stats">
  <div class="stat-card"><h3>{{.Stats.Total}}</h3><p>Total Pages</p></div>
  <div class="stat-card"><h3>{{.Stats.Successful}}</h3><p>Successful</p></div>
  <div class="stat-card"><h3>{{percent .Stats.SuccessRate}}</h3><p>Success Rate</p></div>
  <div class="stat-card"><h3>{{seconds .Stats.AvgLoadSeconds}}</h3><p>Avg Load Time</p></div>
  <div class="stat-card"><h3>{{commas .Stats.TotalWords}}</h3><p>Total Words</p></div>
  <div class="stat-card"><h3>{{commas .Stats.TotalLinks}}</h3><p>Total Links</p></div>
  <div class="stat-card"><h3>{{commas .Stats.TotalImages}}</h3><p>Total Images</p></div>
</div>
<h2>Detailed Results</h2>
{{range .Cards}}
<div class="result-card {{.Class}}">
  <div class="result-header">
    <h3>#{{.Index}}. {{.Record.Title}}</h3>
    <span class="status status-{{.Class}}">{{.Record.StatusCode}}</span>
  </div>
  <p><strong>URL:</strong> <a href="{{.Record.URL}}" target="_blank" rel="noopener">{{.Record.URL}}</a></p>
  <p><strong>Domain:</strong> {{.Record.Domain}}</p>
  <p><strong>Language:</strong> {{.Record.Language}}</p>
  <p><strong>Content Type:</strong> {{.Record.ContentType}}</p>
  <p><strong>Size:</strong> {{commas .Record.ResponseSize}} bytes</p>
  {{if .Record.MetaDescription}}<p><strong>Description:</strong> {{.Record.MetaDescription}}</p>{{end}}
  {{if .Record.MetaKeywords}}<p><strong>Keywords:</strong> {{.Record.MetaKeywords}}</p>{{end}}
  <div class="metrics">
    <span>{{seconds .Record.LoadTimeSeconds}}</span>
    <span>{{commas .Record.WordCount}} words</span>
    <span>{{.Record.LinksFound}} links</span>
    <span>{{.Record.ImagesFound}} images</span>
  </div>
  <p><strong>Content Preview:</strong></p>
  <div class="content-text">{{.Preview}}</div>
  {{if .Structured}}<div class="structured-data"><strong>Structured Data Found:</strong>{{range .Structured}}<br>{{.}}{{end}}</div>{{end}}
</div>
{{end}}
</div>
</body>
</html>
`))

type reportCard struct {
	Index      int
	Class      string
	Record     *models.ScrapedRecord
	Preview    string
	Structured []string
}

type reportData struct {
	Generated string
	Version   string
	Stats     models.Stats
	Cards     []reportCard
}

// HTML writes "<base>_report.html": statistics cards and one card per record.
func (r *Registry) HTML(records []models.ScrapedRecord, basePath string) (string, error) {
	path := basePath + "_report.html"
	data := reportData{
		Generated: r.opts.Now().Format("2006-01-02 15:04:05"),
		Version:   r.opts.Version,
		Stats:     scraper.ComputeStats(records),
		Cards:     make([]reportCard, len(records)),
	}
	for i := range records {
		rec := &records[i]
		class := "error"
		if rec.Succeeded() {
			class = "success"
		}
		data.Cards[i] = reportCard{
			Index:      i + 1,
			Class:      class,
			Record:     rec,
			Preview:    preview(rec.CleanText, reportPreviewRunes),
			Structured: structuredSummary(rec.StructuredData),
		}
	}

	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := reportTemplate.Execute(f, data); err != nil {
		return "", err
	}
	return path, f.Close()
}

// structuredSummary describes each structured-data entry in one line.
func structuredSummary(sd map[string]any) []string {
	var out []string
	for _, key := range sortedKeys(sd) {
		switch v := sd[key].(type) {
		case []any:
			if key == models.StructuredJSONLD {
				out = append(out, fmt.Sprintf("JSON-LD: %d schema(s) found", len(v)))
				continue
			}
		case map[string]string:
			switch key {
			case models.StructuredOpenGraph:
				out = append(out, fmt.Sprintf("Open Graph: %d properties", len(v)))
				continue
			case models.StructuredTwitter:
				out = append(out, fmt.Sprintf("Twitter Cards: %d properties", len(v)))
				continue
			}
		}
		out = append(out, fmt.Sprintf("%s: %s", key, preview(fmt.Sprint(sd[key]), 100)))
	}
	return out
}

// commas formats n with thousands separators.
func commas(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
