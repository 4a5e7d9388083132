// Package store persists per-run summaries so past reconciliations can be
// reviewed from the CLI.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streamqa/reconcile/internal/model"
)

// RunStatus is the terminal outcome of a reconciliation run.
type RunStatus string

const (
	RunStatusComplete  RunStatus = "complete"
	RunStatusError     RunStatus = "error"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run is one persisted reconciliation run summary.
type Run struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	InputFile      string
	TranscriptFile string
	OutputFile     string
	Status         RunStatus
	Stats          model.SummaryStats
}

// Store persists run summaries.
type Store interface {
	SaveRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}
