package export

import (
	"bufio"
	"fmt"

	"github.com/use-agent/gleaner/models"
)

// Markdown writes "<base>.md": each record's main content as Markdown.
func (r *Registry) Markdown(records []models.ScrapedRecord, basePath string) (string, error) {
	path := basePath + ".md"
	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := range records {
		rec := &records[i]
		doc, err := r.opts.Cleaner.Markdown(rec)
		if err != nil {
			return "", err
		}
		if i > 0 {
			fmt.Fprint(w, "\n---\n\n")
		}
		fmt.Fprintf(w, "# %s\n\n", doc.Title)
		fmt.Fprintf(w, "- URL: <%s>\n- Status: %d\n- Words: %d\n- Tokens (est.): %d\n\n", rec.URL, rec.StatusCode, rec.WordCount, doc.Tokens)
		fmt.Fprintln(w, doc.Markdown)
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return path, f.Close()
}
