package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/use-agent/gleaner/models"
)

const cancelledMessage = "scrape cancelled before fetch"

// runPool runs work over urls with opts.Workers lanes. Each result lands in
// the slot of its input position, so order does not depend on completion.
// Workers only write their own slots; nothing else is shared.
func runPool(ctx context.Context, urls []string, opts PoolOptions, work func(context.Context, string) models.ScrapedRecord) []models.ScrapedRecord {
	n := len(urls)
	results := make([]models.ScrapedRecord, n)
	filled := make([]bool, n)
	if n == 0 {
		return results
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	// In-flight work is not aborted by cancellation; the fetch timeout
	// bounds it instead.
	workCtx := context.WithoutCancel(ctx)

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for i := range n {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first := true
			for i := range jobs {
				if !first && !pause(ctx, opts.Delay) {
					continue
				}
				first = false
				if ctx.Err() != nil {
					continue
				}
				results[i] = work(workCtx, urls[i])
				filled[i] = true
				if opts.OnRecord != nil {
					opts.OnRecord(i, &results[i])
				}
			}
		}()
	}
	wg.Wait()

	for i := range results {
		if filled[i] {
			continue
		}
		results[i] = cancelledRecord(urls[i])
		if opts.OnRecord != nil {
			opts.OnRecord(i, &results[i])
		}
	}
	return results
}

// pause waits d or until ctx is done. It reports whether the full delay
// elapsed.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func cancelledRecord(rawURL string) models.ScrapedRecord {
	err := models.NewScrapeError(models.ErrCodeTransport, cancelledMessage, nil)
	return models.NewErrorRecord(rawURL, hostOf(rawURL), 0, err.Error(), 0, time.Now().Format(time.RFC3339Nano))
}
