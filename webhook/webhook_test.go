package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverAsync_SignsAndRetries(t *testing.T) {
	var (
		calls    atomic.Int32
		mu       sync.Mutex
		gotSig   string
		gotEvent Event
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		gotSig = r.Header.Get(SignatureHeader)
		assert.Equal(t, Sign("s3cret", body), gotSig)
		_ = json.Unmarshal(body, &gotEvent)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier("s3cret")
	n.delays = []time.Duration{0, time.Millisecond}

	err := <-n.DeliverAsync(srv.URL, &Event{Type: EventBatchCompleted, JobID: "job-1", Data: map[string]int{"total": 2}})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "job-1", gotEvent.JobID)
	assert.Contains(t, gotSig, "sha256=")
}

func TestDeliverAsync_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier("")
	n.delays = []time.Duration{0, time.Millisecond}
	err := <-n.DeliverAsync(srv.URL, &Event{Type: EventBatchCompleted})
	assert.ErrorContains(t, err, "status 500")
}
