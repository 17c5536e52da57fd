package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nplvision/sol-engine/internal/models"
	"github.com/nplvision/sol-engine/internal/scheduler"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

type schedulerControlMock struct {
	result scheduler.Result
	err    error
	status scheduler.Status
}

func (m *schedulerControlMock) TriggerManual(ctx context.Context) (scheduler.Result, error) {
	return m.result, m.err
}

func (m *schedulerControlMock) Status() scheduler.Status {
	return m.status
}

type runLogReaderMock struct {
	runs  []models.BatchRunLog
	limit int
}

func (m *runLogReaderMock) ListRecent(ctx context.Context, limit int) ([]models.BatchRunLog, error) {
	m.limit = limit
	return m.runs, nil
}

func TestSchedulerHandlerRun(t *testing.T) {
	control := &schedulerControlMock{result: scheduler.Result{Updated: 80, Errors: 2}}
	h := NewSchedulerHandler(control, &runLogReaderMock{})

	c, w := newSOLHandlerContext(t, http.MethodPost, "/sol/scheduler/run", nil)

	h.Run(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":80`)
	assert.Contains(t, w.Body.String(), `"errors":2`)
}

func TestSchedulerHandlerRunFailure(t *testing.T) {
	control := &schedulerControlMock{err: appErrors.Clone(appErrors.ErrSchedulerRunFailure, "daily SOL update exhausted retries")}
	h := NewSchedulerHandler(control, &runLogReaderMock{})

	c, w := newSOLHandlerContext(t, http.MethodPost, "/sol/scheduler/run", nil)

	h.Run(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SCHEDULER_RUN_FAILURE")
}

func TestSchedulerHandlerStatus(t *testing.T) {
	control := &schedulerControlMock{status: scheduler.Status{State: scheduler.StateScheduled}}
	h := NewSchedulerHandler(control, &runLogReaderMock{})

	c, w := newSOLHandlerContext(t, http.MethodGet, "/sol/scheduler/status", nil)

	h.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"SCHEDULED"`)
}

func TestSchedulerHandlerListRuns(t *testing.T) {
	runs := &runLogReaderMock{runs: []models.BatchRunLog{{LoansUpdated: 80, Status: models.BatchRunStatusCompleted}}}
	h := NewSchedulerHandler(&schedulerControlMock{}, runs)

	c, w := newSOLHandlerContext(t, http.MethodGet, "/sol/scheduler/runs?limit=5", nil)

	h.ListRuns(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, runs.limit)
	assert.Contains(t, w.Body.String(), `"COMPLETED"`)
}
