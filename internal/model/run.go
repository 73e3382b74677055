package model

import "time"

// RunStatus tracks the lifecycle of one audit run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	// RunStatusPartial means the run halted with identifiers left over,
	// typically because the restart budget ran out.
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// Run is one audit run over an identifier list.
type Run struct {
	ID        string
	StoreCode string
	Status    RunStatus
	Total     int
	Processed int
	Restarts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
