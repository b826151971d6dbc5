package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/use-agent/gleaner/app"
	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
)

// formatNone disables exporting.
const formatNone = "none"

type scrapeFlags struct {
	file    string
	workers int
	delay   time.Duration
	format  string
	out     string
	quiet   bool
}

func newScrapeCommand(load func() (*config.Config, error)) *cobra.Command {
	var f scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape [urls...]",
		Short: "Scrape URLs and export the records",
		Long: `Scrape every URL given as an argument or listed in --file (one per line,
blank lines and # comments ignored). Ctrl-C stops starting new URLs; the ones
in flight finish and the rest are recorded as cancelled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Pool.Workers = f.workers
			}
			if cmd.Flags().Changed("delay") {
				cfg.Pool.Delay = f.delay
			}
			if cmd.Flags().Changed("out") {
				cfg.Export.Dir = f.out
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			app.InitLogger(cfg.Log, cmd.ErrOrStderr())

			urls, err := collectURLs(args, f.file)
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs to scrape: pass them as arguments or with --file")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScrape(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, urls, f)
		},
	}

	cmd.Flags().StringVar(&f.file, "file", "", "file with one URL per line")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 1, "concurrent lanes")
	cmd.Flags().DurationVar(&f.delay, "delay", 1500*time.Millisecond, "pause between requests of one lane")
	cmd.Flags().StringVarP(&f.format, "format", "f", "all", "export format, \"all\" or \"none\"")
	cmd.Flags().StringVarP(&f.out, "out", "o", "exports", "export directory")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "no spinner")
	return cmd
}

func runScrape(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, urls []string, f scrapeFlags) error {
	a, err := app.New(cfg, version)
	if err != nil {
		return err
	}
	defer a.Close()

	var formats []string
	if f.format != formatNone {
		if formats, err = a.Exports.Resolve(f.format, cfg.Export.Formats); err != nil {
			return err
		}
	}

	var done atomic.Int32
	opts := a.Scraper.Defaults()

	var sp *spinner.Spinner
	if !f.quiet {
		sp = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(stderr))
		sp.Suffix = fmt.Sprintf(" scraping 0/%d", len(urls))
		sp.Start()
		opts.OnRecord = func(_ int, rec *models.ScrapedRecord) {
			n := done.Add(1)
			sp.Lock()
			sp.Suffix = fmt.Sprintf(" scraping %d/%d  %s", n, len(urls), rec.URL)
			sp.Unlock()
		}
	}

	records := a.Scraper.Run(ctx, urls, opts)
	if sp != nil {
		sp.Stop()
	}

	fmt.Fprintln(stdout, export.RecordsTable(records).Render())
	fmt.Fprintln(stdout, export.SummaryTable(scraper.ComputeStats(records)).Render())

	if len(formats) == 0 {
		return nil
	}
	files, err := a.Exports.All(records, cfg.Export.Dir, "scraped_data", formats)
	for _, path := range files {
		fmt.Fprintln(stdout, "exported", path)
	}
	return err
}

// collectURLs merges args with the lines of file, trimming whitespace and
// dropping blanks and # comments.
func collectURLs(args []string, file string) ([]string, error) {
	var urls []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" && !strings.HasPrefix(s, "#") {
			urls = append(urls, s)
		}
	}
	for _, a := range args {
		add(a)
	}
	if file == "" {
		return urls, nil
	}

	fh, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer fh.Close()

	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		add(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}
