package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nplvision/sol-engine/internal/models"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

func TestBatchRunRepositoryUpsertTruncatesRunDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRunRepository(db)

	mock.ExpectExec("INSERT INTO sol_batch_runs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	run := &models.BatchRunLog{
		RunDate:      time.Date(2024, 3, 10, 15, 42, 7, 0, time.UTC),
		LoansUpdated: 80,
		ErrorCount:   2,
		Status:       models.BatchRunStatusCompleted,
	}
	require.NoError(t, repo.Upsert(context.Background(), run))

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), run.RunDate)
	assert.False(t, run.CompletedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRunRepositoryUpsertFailedSentinel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRunRepository(db)

	mock.ExpectExec("INSERT INTO sol_batch_runs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	run := &models.BatchRunLog{
		RunDate:    time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC),
		ErrorCount: -1,
		Status:     models.BatchRunStatusFailed,
	}
	require.NoError(t, repo.Upsert(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRunRepositoryGetByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRunRepository(db)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"run_date", "loans_updated", "error_count", "status", "completed_at"}).
		AddRow(day, 80, 2, "COMPLETED", day.Add(2*time.Hour))
	mock.ExpectQuery("FROM sol_batch_runs WHERE run_date").
		WithArgs(day).
		WillReturnRows(rows)

	run, err := repo.GetByDate(context.Background(), time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 80, run.LoansUpdated)
	assert.Equal(t, models.BatchRunStatusCompleted, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRunRepositoryGetByDateNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRunRepository(db)

	mock.ExpectQuery("FROM sol_batch_runs WHERE run_date").
		WillReturnRows(sqlmock.NewRows([]string{"run_date"}))

	_, err := repo.GetByDate(context.Background(), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBatchRunRepositoryListRecent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRunRepository(db)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"run_date", "loans_updated", "error_count", "status", "completed_at"}).
		AddRow(day, 80, 2, "COMPLETED", day.Add(2*time.Hour)).
		AddRow(day.AddDate(0, 0, -1), 0, -1, "FAILED", day.AddDate(0, 0, -1).Add(2*time.Hour))
	mock.ExpectQuery("FROM sol_batch_runs ORDER BY run_date DESC").
		WithArgs(30).
		WillReturnRows(rows)

	runs, err := repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, models.BatchRunStatusFailed, runs[1].Status)
	assert.Equal(t, -1, runs[1].ErrorCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
