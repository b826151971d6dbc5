package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/gleaner/metrics"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
	"github.com/use-agent/gleaner/webhook"
)

type batchJob struct {
	id        string
	total     int
	createdAt time.Time
	cancel    context.CancelFunc

	mu         sync.Mutex
	status     string
	completed  int
	finishedAt time.Time
	results    []models.ScrapedRecord
	stats      *models.Stats
}

func (j *batchJob) snapshot() models.BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	return models.BatchStatusResponse{
		ID:        j.id,
		Status:    j.status,
		Completed: j.completed,
		Total:     j.total,
		Stats:     j.stats,
		Results:   j.results,
	}
}

// BatchStore holds in-flight and finished batch jobs. Finished jobs older
// than the TTL are swept every 5 minutes until ctx is done.
type BatchStore struct {
	jobs sync.Map // id -> *batchJob
	ttl  time.Duration
}

// NewBatchStore creates a BatchStore and starts its sweeper.
func NewBatchStore(ctx context.Context, ttl time.Duration) *BatchStore {
	s := &BatchStore{ttl: ttl}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(time.Now().Add(-s.ttl))
			case <-ctx.Done():
				return
			}
		}
	}()
	return s
}

func (s *BatchStore) get(id string) (*batchJob, bool) {
	v, ok := s.jobs.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*batchJob), true
}

func (s *BatchStore) sweep(cutoff time.Time) {
	s.jobs.Range(func(key, value any) bool {
		job := value.(*batchJob)
		job.mu.Lock()
		expired := !job.finishedAt.IsZero() && job.finishedAt.Before(cutoff)
		job.mu.Unlock()
		if expired {
			s.jobs.Delete(key)
		}
		return true
	})
}

// PostBatch returns a handler for POST /api/v1/batch.
// It validates the request, registers a job and runs it in the background.
func PostBatch(sc *scraper.Scraper, store *BatchStore, notifier *webhook.Notifier, m *metrics.Metrics, maxURLs int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}

		urls := cleanURLs(req.URLs)
		if len(urls) == 0 {
			invalidInput(c, "no URLs provided")
			return
		}
		if maxURLs > 0 && len(urls) > maxURLs {
			invalidInput(c, fmt.Sprintf("maximum %d URLs per batch", maxURLs))
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		job := &batchJob{
			id:        uuid.NewString(),
			total:     len(urls),
			createdAt: time.Now(),
			cancel:    cancel,
			status:    models.BatchProcessing,
		}
		store.jobs.Store(job.id, job)

		opts := poolOptions(sc.Defaults(), req.Workers, req.DelayMs)
		go runBatch(ctx, sc, job, urls, opts, notifier, m, req.WebhookURL)

		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     job.id,
			Status: models.BatchProcessing,
			Total:  job.total,
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
// Results and stats are present once the job has finished.
func GetBatch(store *BatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := store.get(c.Param("id"))
		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "batch job not found", nil))
			return
		}
		c.JSON(http.StatusOK, job.snapshot())
	}
}

// CancelBatch returns a handler for DELETE /api/v1/batch/:id. It raises the
// job's cancellation signal: no further URLs are started, in-flight ones
// finish, and the job ends as "cancelled".
func CancelBatch(store *BatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := store.get(c.Param("id"))
		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "batch job not found", nil))
			return
		}
		job.cancel()

		snap := job.snapshot()
		c.JSON(http.StatusAccepted, models.BatchResponse{ID: snap.ID, Status: snap.Status, Total: snap.Total})
	}
}

func runBatch(ctx context.Context, sc *scraper.Scraper, job *batchJob, urls []string, opts scraper.PoolOptions,
	notifier *webhook.Notifier, m *metrics.Metrics, webhookURL string) {
	defer job.cancel()
	if m != nil {
		m.BatchesActive.Inc()
		defer m.BatchesActive.Dec()
	}

	opts.OnRecord = func(int, *models.ScrapedRecord) {
		job.mu.Lock()
		job.completed++
		job.mu.Unlock()
	}
	results := sc.Run(ctx, urls, opts)
	stats := scraper.ComputeStats(results)

	status := batchStatus(ctx.Err() != nil, stats)

	job.mu.Lock()
	job.status = status
	job.completed = len(results)
	job.results = results
	job.stats = &stats
	job.finishedAt = time.Now()
	job.mu.Unlock()

	slog.Info("batch job finished",
		"id", job.id,
		"status", status,
		"successful", stats.Successful,
		"failed", stats.Failed,
		"total", job.total,
	)

	if webhookURL != "" && notifier != nil {
		eventType := webhook.EventBatchCompleted
		if status == models.BatchCancelled {
			eventType = webhook.EventBatchCancelled
		}
		notifier.DeliverAsync(webhookURL, &webhook.Event{
			Type:      eventType,
			JobID:     job.id,
			Timestamp: time.Now().Unix(),
			Data: models.BatchStatusResponse{
				ID:        job.id,
				Status:    status,
				Completed: len(results),
				Total:     job.total,
				Stats:     &stats,
			},
		})
	}
}

func batchStatus(cancelled bool, stats models.Stats) string {
	switch {
	case cancelled:
		return models.BatchCancelled
	case stats.Successful == 0:
		return models.BatchFailed
	case stats.Failed > 0:
		return models.BatchPartial
	default:
		return models.BatchCompleted
	}
}
