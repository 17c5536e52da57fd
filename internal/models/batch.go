package models

import "time"

// BatchRunStatus marks how a daily run ended.
type BatchRunStatus string

const (
	BatchRunStatusCompleted BatchRunStatus = "COMPLETED"
	BatchRunStatusFailed    BatchRunStatus = "FAILED"
)

// BatchRunLog records one scheduled (or manually triggered) daily update.
// One row per calendar day; a manual trigger and the scheduled trigger on
// the same day converge onto the same row.
type BatchRunLog struct {
	RunDate      time.Time      `db:"run_date" json:"run_date"`
	LoansUpdated int            `db:"loans_updated" json:"loans_updated"`
	ErrorCount   int            `db:"error_count" json:"error_count"`
	Status       BatchRunStatus `db:"status" json:"status"`
	CompletedAt  time.Time      `db:"completed_at" json:"completed_at"`
}
