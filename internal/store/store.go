// Package store persists audit runs and their classification events.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/catalog-audit-cli/internal/config"
	"github.com/sells-group/catalog-audit-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus
	Limit  int
	Offset int
}

// Store defines the persistence interface for the audit run log.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, storeCode string, total int) (*model.Run, error)
	UpdateRunProgress(ctx context.Context, runID string, processed, restarts int) error
	FinishRun(ctx context.Context, runID string, status model.RunStatus) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Events
	AppendEvent(ctx context.Context, runID string, ev model.Event) error
	ListEvents(ctx context.Context, runID string) ([]model.Event, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New builds a Store from configuration. SQLite is the default; set
// driver to "postgres" for a shared run log.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
