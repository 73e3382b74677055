// Package runner walks an identifier list through one browser session,
// restarting the session within a bounded budget when it fails.
package runner

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/catalog-audit-cli/internal/classify"
	"github.com/sells-group/catalog-audit-cli/internal/model"
	"github.com/sells-group/catalog-audit-cli/internal/navigate"
	"github.com/sells-group/catalog-audit-cli/internal/progress"
	"github.com/sells-group/catalog-audit-cli/internal/resilience"
	"github.com/sells-group/catalog-audit-cli/internal/sink"
	"github.com/sells-group/catalog-audit-cli/internal/store"
)

// Controller manages a browser session lifecycle for the runner.
type Controller interface {
	Start(ctx context.Context) (navigate.Surface, error)
	IsAlive() bool
	Restart(ctx context.Context) (navigate.Surface, error)
	Close()
}

// Machine processes one identifier against a surface.
type Machine interface {
	Process(ctx context.Context, s navigate.Surface, identifier string, first bool) (model.Extraction, error)
}

// Options carries the optional collaborators of a Runner.
type Options struct {
	Store   store.Store       // run log, best-effort
	RunID   string            // run log row to append to
	Tracker *progress.Tracker // shared progress counters
	Limiter *rate.Limiter     // paces search submissions
}

// Runner drives one session over a sub-range of the identifier list.
// Parallel runs use one Runner per session; the sink and tracker are the
// only shared pieces.
type Runner struct {
	ctrl    Controller
	machine Machine
	budget  *resilience.Budget
	sink    sink.Sink
	opts    Options
	log     *zap.Logger
}

func New(ctrl Controller, machine Machine, budget *resilience.Budget, out sink.Sink, opts Options) *Runner {
	return &Runner{
		ctrl:    ctrl,
		machine: machine,
		budget:  budget,
		sink:    out,
		opts:    opts,
		log:     zap.L().Named("runner"),
	}
}

// Run processes identifiers in order. It returns RunStatusComplete when
// every identifier was classified, RunStatusPartial when the restart
// budget ran out first, and RunStatusFailed with an error for anything
// unrecoverable.
//
// A dead session is restarted and the current identifier reprocessed. A
// navigation fault classifies the identifier as not-in-catalog, marks
// the session suspect, and forces a restart before the next identifier.
// Every restart is checked against the budget first; exhaustion halts
// the run with whatever results exist so far.
func (r *Runner) Run(ctx context.Context, identifiers []string) (model.RunStatus, error) {
	surface, err := r.ctrl.Start(ctx)
	if err != nil {
		return model.RunStatusFailed, eris.Wrap(err, "runner: start session")
	}
	defer r.ctrl.Close()

	first := true
	suspect := false

	for k := 0; k < len(identifiers); k++ {
		id := identifiers[k]

		if err := ctx.Err(); err != nil {
			return model.RunStatusFailed, eris.Wrap(err, "runner: cancelled")
		}

		needRestart := suspect
		if !needRestart && !r.ctrl.IsAlive() {
			r.log.Warn("session not responding", zap.String("identifier", id))
			needRestart = true
		}
		if needRestart {
			if r.budget.Exhausted() {
				r.log.Error("restart budget exhausted, halting",
					zap.Int("restarts", r.budget.Used()),
					zap.Int("processed", k),
					zap.Int("remaining", len(identifiers)-k))
				return model.RunStatusPartial, nil
			}
			surface, err = r.ctrl.Restart(ctx)
			if err != nil {
				return model.RunStatusFailed, eris.Wrap(err, "runner: restart session")
			}
			if r.opts.Tracker != nil {
				r.opts.Tracker.AddRestart()
			}
			suspect = false
			first = true
		}

		if r.opts.Limiter != nil {
			if err := r.opts.Limiter.Wait(ctx); err != nil {
				return model.RunStatusFailed, eris.Wrap(err, "runner: pacing interrupted")
			}
		}

		ex, perr := r.machine.Process(ctx, surface, id, first)
		first = false

		var cats []model.Category
		if perr != nil {
			if ctx.Err() != nil {
				return model.RunStatusFailed, eris.Wrap(perr, "runner: cancelled mid-identifier")
			}
			// The walk itself broke, so nothing is known about the
			// identifier beyond the catalog not resolving it. The session
			// is recycled before the next one.
			r.log.Warn("navigation fault", zap.String("identifier", id), zap.Error(perr))
			cats = []model.Category{model.CategoryNotInCatalog}
			suspect = true
		} else {
			cats = classify.Categories(ex)
		}

		for _, cat := range cats {
			ev := model.Event{Identifier: id, Category: cat}
			if err := r.sink.Append(ctx, ev); err != nil {
				return model.RunStatusFailed, eris.Wrapf(err, "runner: record %s", id)
			}
			if r.opts.Store != nil {
				if err := r.opts.Store.AppendEvent(ctx, r.opts.RunID, ev); err != nil {
					r.log.Warn("run log append failed", zap.Error(err))
				}
			}
		}

		if r.opts.Tracker != nil {
			r.opts.Tracker.AddEvents(len(cats))
			r.opts.Tracker.Step(id)
			if r.opts.Store != nil {
				if err := r.opts.Store.UpdateRunProgress(ctx, r.opts.RunID,
					r.opts.Tracker.Processed(), r.opts.Tracker.Restarts()); err != nil {
					r.log.Debug("run log progress update failed", zap.Error(err))
				}
			}
		}
	}

	return model.RunStatusComplete, nil
}

// Split partitions identifiers into n contiguous chunks for parallel
// sessions. Chunks differ in size by at most one; empty chunks are
// dropped.
func Split(identifiers []string, n int) [][]string {
	if n <= 1 || len(identifiers) <= 1 {
		if len(identifiers) == 0 {
			return nil
		}
		return [][]string{identifiers}
	}
	if n > len(identifiers) {
		n = len(identifiers)
	}

	chunks := make([][]string, 0, n)
	size := len(identifiers) / n
	extra := len(identifiers) % n

	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < extra {
			end++
		}
		if end > start {
			chunks = append(chunks, identifiers[start:end])
		}
		start = end
	}
	return chunks
}
