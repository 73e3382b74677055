// Package sink persists classification events as they are produced.
package sink

import (
	"context"

	"github.com/sells-group/catalog-audit-cli/internal/model"
)

// Sink receives classification events during a run. Append is called
// once per (identifier, category) pair; Finalize runs once at the end of
// the run for summary passes.
type Sink interface {
	Append(ctx context.Context, ev model.Event) error
	Finalize(ctx context.Context) error
}
