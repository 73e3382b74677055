// Package progress tracks how far along an audit run is and can serve
// that state over HTTP for long unattended runs.
package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Snapshot is one point-in-time view of a run.
type Snapshot struct {
	Total       int     `json:"total"`
	Processed   int     `json:"processed"`
	Events      int     `json:"events"`
	Restarts    int     `json:"restarts"`
	ElapsedSecs float64 `json:"elapsed_secs"`
}

// Tracker counts processed identifiers across sessions. All methods are
// safe for concurrent use.
type Tracker struct {
	total     int64
	processed atomic.Int64
	events    atomic.Int64
	restarts  atomic.Int64
	started   time.Time
	log       *zap.Logger
}

func NewTracker(total int) *Tracker {
	return &Tracker{
		total:   int64(total),
		started: time.Now(),
		log:     zap.L().Named("progress"),
	}
}

// Step records one processed identifier.
func (t *Tracker) Step(identifier string) {
	done := t.processed.Add(1)
	t.log.Info("processed identifier",
		zap.String("identifier", identifier),
		zap.Int64("processed", done),
		zap.Int64("total", t.total))
}

// AddEvents records n classification events.
func (t *Tracker) AddEvents(n int) {
	t.events.Add(int64(n))
}

// AddRestart records one session restart.
func (t *Tracker) AddRestart() {
	t.restarts.Add(1)
}

func (t *Tracker) Processed() int {
	return int(t.processed.Load())
}

func (t *Tracker) Restarts() int {
	return int(t.restarts.Load())
}

func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Total:       int(t.total),
		Processed:   int(t.processed.Load()),
		Events:      int(t.events.Load()),
		Restarts:    int(t.restarts.Load()),
		ElapsedSecs: time.Since(t.started).Seconds(),
	}
}

// Handler serves the current snapshot as JSON.
func (t *Tracker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(t.Snapshot()) //nolint:errcheck
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"}) //nolint:errcheck
	})
	return mux
}

// Serve runs the status endpoint until ctx is cancelled.
func (t *Tracker) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	t.log.Info("status endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
