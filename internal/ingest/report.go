package ingest

import (
	"time"

	"github.com/google/uuid"
)

// SkippedRow records why a row was left out of the ledger.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Report describes a single ingestion run.
type Report struct {
	RunID        string       `json:"run_id"` // UUIDv7
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
	RowsRead     int          `json:"rows_read"`
	RowsAccepted int          `json:"rows_accepted"`
	RowsSkipped  int          `json:"rows_skipped"`
	Blocks       int          `json:"blocks"` // blocks appended, genesis excluded
	Skipped      []SkippedRow `json:"skipped,omitempty"`
}

func newReport(now time.Time) Report {
	return Report{
		RunID:     uuid.Must(uuid.NewV7()).String(),
		StartedAt: now.UTC(),
	}
}

// record counts result and keeps its reason while fewer than limit reasons
// have been retained.
func (r *Report) record(result RowResult, limit int) {
	r.RowsRead++

	if result.OK() {
		r.RowsAccepted++
		return
	}

	r.RowsSkipped++
	if len(r.Skipped) < limit {
		r.Skipped = append(r.Skipped, SkippedRow{
			Line:   result.Line,
			Reason: result.Err.Error(),
		})
	}
}

func (r *Report) finish(now time.Time) {
	r.FinishedAt = now.UTC()
}
