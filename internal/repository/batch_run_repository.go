package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nplvision/sol-engine/internal/models"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

// BatchRunRepository persists one run-log row per calendar day.
type BatchRunRepository struct {
	db *sqlx.DB
}

// NewBatchRunRepository constructs the repository.
func NewBatchRunRepository(db *sqlx.DB) *BatchRunRepository {
	return &BatchRunRepository{db: db}
}

// Upsert writes the run log for its calendar day. Re-running on the same
// day (scheduled fire plus a manual trigger) converges onto one row with
// the latest counts.
func (r *BatchRunRepository) Upsert(ctx context.Context, run *models.BatchRunLog) error {
	run.RunDate = run.RunDate.UTC().Truncate(24 * time.Hour)
	if run.CompletedAt.IsZero() {
		run.CompletedAt = time.Now().UTC()
	}

	const query = `INSERT INTO sol_batch_runs (run_date, loans_updated, error_count, status, completed_at)
VALUES (:run_date, :loans_updated, :error_count, :status, :completed_at)
ON CONFLICT (run_date)
DO UPDATE SET loans_updated = EXCLUDED.loans_updated, error_count = EXCLUDED.error_count,
              status = EXCLUDED.status, completed_at = EXCLUDED.completed_at`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("upsert batch run for %s: %w", run.RunDate.Format("2006-01-02"), err)
	}
	return nil
}

// GetByDate fetches the run log for a calendar day.
func (r *BatchRunRepository) GetByDate(ctx context.Context, day time.Time) (*models.BatchRunLog, error) {
	const query = `SELECT run_date, loans_updated, error_count, status, completed_at
FROM sol_batch_runs WHERE run_date = $1`
	var run models.BatchRunLog
	if err := r.db.GetContext(ctx, &run, query, day.UTC().Truncate(24*time.Hour)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no batch run for %s", day.Format("2006-01-02")))
		}
		return nil, fmt.Errorf("get batch run for %s: %w", day.Format("2006-01-02"), err)
	}
	return &run, nil
}

// ListRecent returns the most recent run logs, newest first.
func (r *BatchRunRepository) ListRecent(ctx context.Context, limit int) ([]models.BatchRunLog, error) {
	if limit <= 0 {
		limit = 30
	}
	const query = `SELECT run_date, loans_updated, error_count, status, completed_at
FROM sol_batch_runs ORDER BY run_date DESC LIMIT $1`
	var runs []models.BatchRunLog
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("list batch runs: %w", err)
	}
	return runs, nil
}
