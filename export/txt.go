package export

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
)

const (
	summaryDescriptionRunes = 200
	summaryPreviewRunes     = 300
	summaryTopDomains       = 10
)

// Text writes "<base>_summary.txt": statistics, distributions and one block
// per record.
func (r *Registry) Text(records []models.ScrapedRecord, basePath string) (string, error) {
	path := basePath + "_summary.txt"
	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	writeSummary(w, records, r.opts.Now().Format("2006-01-02 15:04:05"), r.opts.Version)
	if err := w.Flush(); err != nil {
		return "", err
	}
	return path, f.Close()
}

func writeSummary(w io.Writer, records []models.ScrapedRecord, generated, version string) {
	st := scraper.ComputeStats(records)
	rule := strings.Repeat("=", 80)

	fmt.Fprintf(w, "SCRAPE SUMMARY REPORT (%s)\n%s\n\n", version, rule)

	fmt.Fprintln(w, SummaryTable(st).Render())
	fmt.Fprintf(w, "Export Date: %s\n\n", generated)

	if st.Successful > 0 {
		fmt.Fprintln(w, distributionTable("Language", languageCounts(records), 0).Render())
		fmt.Fprintln(w)
		fmt.Fprintln(w, distributionTable("Domain", domainCounts(records), summaryTopDomains).Render())
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "DETAILED RESULTS\n%s\n\n", strings.Repeat("-", 80))
	for i := range records {
		rec := &records[i]
		mark := "FAIL"
		if rec.Succeeded() {
			mark = "OK"
		}
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, mark, rec.Title)
		fmt.Fprintf(w, "   URL: %s\n", rec.URL)
		fmt.Fprintf(w, "   Domain: %s\n", rec.Domain)
		fmt.Fprintf(w, "   Status: %d | Load Time: %.2fs\n", rec.StatusCode, rec.LoadTimeSeconds)
		fmt.Fprintf(w, "   Language: %s | Size: %s bytes\n", rec.Language, commas(rec.ResponseSize))
		fmt.Fprintf(w, "   Content: %s words, %d links, %d images\n", commas(rec.WordCount), rec.LinksFound, rec.ImagesFound)
		if rec.MetaDescription != "" {
			fmt.Fprintf(w, "   Description: %s\n", preview(rec.MetaDescription, summaryDescriptionRunes))
		}
		if rec.Succeeded() && rec.CleanText != "" {
			fmt.Fprintf(w, "   Content Preview: %s\n", preview(rec.CleanText, summaryPreviewRunes))
		}
		fmt.Fprintf(w, "\n%s\n\n", strings.Repeat("-", 40))
	}
}

// SummaryTable renders session statistics as a two-column table.
func SummaryTable(st models.Stats) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Summary Statistics")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Total URLs Processed", st.Total},
		{"Successful Scrapes", st.Successful},
		{"Failed Scrapes", st.Failed},
		{"Success Rate", fmt.Sprintf("%.1f%%", st.SuccessRate)},
	})
	if st.Successful > 0 {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Total Words Extracted", commas(st.TotalWords)},
			{"Total Links Found", commas(st.TotalLinks)},
			{"Total Images Found", commas(st.TotalImages)},
			{"Average Load Time", fmt.Sprintf("%.2f seconds", st.AvgLoadSeconds)},
		})
	}
	return t
}

// RecordsTable renders one row per record.
func RecordsTable(records []models.ScrapedRecord) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Status", "URL", "Title", "Words", "Links", "Images", "Load"})
	for i := range records {
		rec := &records[i]
		t.AppendRow(table.Row{
			i + 1, rec.StatusCode, preview(rec.URL, 60), preview(rec.Title, 40),
			rec.WordCount, rec.LinksFound, rec.ImagesFound,
			fmt.Sprintf("%.2fs", rec.LoadTimeSeconds),
		})
	}
	return t
}

type count struct {
	key string
	n   int
}

func languageCounts(records []models.ScrapedRecord) []count {
	return countBy(records, func(r *models.ScrapedRecord) string { return r.Language })
}

func domainCounts(records []models.ScrapedRecord) []count {
	return countBy(records, func(r *models.ScrapedRecord) string { return r.Domain })
}

// countBy tallies successful records by key, most frequent first.
func countBy(records []models.ScrapedRecord, key func(*models.ScrapedRecord) string) []count {
	tally := map[string]int{}
	for i := range records {
		if records[i].Succeeded() {
			tally[key(&records[i])]++
		}
	}
	out := make([]count, 0, len(tally))
	for _, k := range sortedKeys(tally) {
		out = append(out, count{k, tally[k]})
	}
	slices.SortStableFunc(out, func(a, b count) int { return b.n - a.n })
	return out
}

func distributionTable(title string, counts []count, limit int) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(title + " Distribution")
	t.AppendHeader(table.Row{title, "Pages"})
	for i, c := range counts {
		if limit > 0 && i >= limit {
			break
		}
		t.AppendRow(table.Row{c.key, c.n})
	}
	return t
}
