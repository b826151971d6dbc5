// Package export writes session records to files. Every exporter is a
// re-serialization of models.ScrapedRecord.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/use-agent/gleaner/cleaner"
	"github.com/use-agent/gleaner/models"
)

// Exporter writes records to a file derived from basePath (a path without
// extension) and returns the file's path.
type Exporter func(records []models.ScrapedRecord, basePath string) (string, error)

// FormatAll selects every configured format.
const FormatAll = "all"

// DefaultVersion is reported in export metadata when none is configured.
const DefaultVersion = "gleaner"

// Options configures a Registry.
type Options struct {
	// Version is written into export metadata.
	Version string

	// DedupeDistance drops near-duplicate records from the jsonl export when
	// their SimHash distance is at most this value. Negative disables.
	DedupeDistance int

	// Cleaner renders the markdown export. Nil creates one.
	Cleaner *cleaner.Cleaner

	// OnExport is called after each file attempt (metrics).
	OnExport func(format string, err error)

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Registry maps format names to exporters.
type Registry struct {
	opts      Options
	exporters map[string]Exporter
}

// NewRegistry creates a Registry with every built-in format.
func NewRegistry(opts Options) *Registry {
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Cleaner == nil {
		opts.Cleaner = cleaner.NewCleaner()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Registry{opts: opts}
	r.exporters = map[string]Exporter{
		"json":     r.JSON,
		"csv":      r.CSV,
		"xml":      r.XML,
		"html":     r.HTML,
		"jsonl":    r.JSONL,
		"txt":      r.Text,
		"markdown": r.Markdown,
		"xlsx":     r.XLSX,
		"sqlite":   r.SQLite,
	}
	return r
}

// Lookup returns the exporter for a format name.
func (r *Registry) Lookup(format string) (Exporter, bool) {
	e, ok := r.exporters[format]
	return e, ok
}

// Names lists the registered formats in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.exporters))
	for n := range r.exporters {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Resolve expands a requested format ("all" or a single name) against the
// configured default set. Unknown names yield INVALID_INPUT.
func (r *Registry) Resolve(format string, defaults []string) ([]string, error) {
	formats := []string{format}
	if format == "" || format == FormatAll {
		formats = defaults
		if len(formats) == 0 {
			formats = r.Names()
		}
	}
	for _, f := range formats {
		if _, ok := r.exporters[f]; !ok {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
				fmt.Sprintf("unknown export format %q", f), nil)
		}
	}
	return formats, nil
}

// All writes records in each format to dir, under a timestamped base name
// "<base>_YYYYMMDD_HHMMSS". It keeps going after a failed format and
// returns the paths written plus the joined errors.
func (r *Registry) All(records []models.ScrapedRecord, dir, base string, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExport, "create export directory", err)
	}
	basePath := filepath.Join(dir, fmt.Sprintf("%s_%s", base, r.opts.Now().Format("20060102_150405")))

	var (
		files []string
		errs  []error
	)
	for _, format := range formats {
		exp, ok := r.exporters[format]
		if !ok {
			errs = append(errs, fmt.Errorf("export: unknown format %q", format))
			continue
		}
		path, err := exp(records, basePath)
		if r.opts.OnExport != nil {
			r.opts.OnExport(format, err)
		}
		if err != nil {
			slog.Error("export failed", "format", format, "error", err)
			errs = append(errs, fmt.Errorf("export %s: %w", format, err))
			continue
		}
		slog.Info("exported", "format", format, "path", path, "records", len(records))
		files = append(files, path)
	}
	if len(errs) > 0 {
		return files, models.NewScrapeError(models.ErrCodeExport, "one or more exports failed", errors.Join(errs...))
	}
	return files, nil
}

// preview cuts s to n runes, appending "..." when anything was cut.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func countSuccessful(records []models.ScrapedRecord) int {
	n := 0
	for i := range records {
		if records[i].Succeeded() {
			n++
		}
	}
	return n
}

// createFile opens path for writing, creating parent directories.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
