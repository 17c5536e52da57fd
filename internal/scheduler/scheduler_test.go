package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nplvision/sol-engine/internal/models"
	"github.com/nplvision/sol-engine/pkg/config"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

type mockEvents struct {
	mu        sync.Mutex
	calls     []string
	failFor   map[string]bool
	noTrigger map[string]bool

	inflight    int32
	maxInflight int32
	delay       time.Duration
}

func (m *mockEvents) Recalculate(ctx context.Context, loanID string, eventType models.LoanEventType, eventDate time.Time) (*models.SOLCalculation, error) {
	cur := atomic.AddInt32(&m.inflight, 1)
	for {
		max := atomic.LoadInt32(&m.maxInflight)
		if cur <= max || atomic.CompareAndSwapInt32(&m.maxInflight, max, cur) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	defer atomic.AddInt32(&m.inflight, -1)

	m.mu.Lock()
	m.calls = append(m.calls, loanID)
	m.mu.Unlock()

	if m.failFor[loanID] {
		return nil, assert.AnError
	}
	if m.noTrigger[loanID] {
		return nil, nil
	}
	return &models.SOLCalculation{LoanID: loanID}, nil
}

func (m *mockEvents) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockCandidates struct {
	mu    sync.Mutex
	ids   []string
	errs  []error
	calls int
}

func (m *mockCandidates) ListUpdateCandidates(ctx context.Context, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := m.calls
	m.calls++
	if call < len(m.errs) && m.errs[call] != nil {
		return nil, m.errs[call]
	}
	if limit < len(m.ids) {
		return m.ids[:limit], nil
	}
	return m.ids, nil
}

type mockRunLog struct {
	mu   sync.Mutex
	runs []models.BatchRunLog
}

func (m *mockRunLog) Upsert(ctx context.Context, run *models.BatchRunLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

type mockAlerts struct {
	lines []string
	err   error
	calls int32
}

func (m *mockAlerts) CheckExpirationAlerts(ctx context.Context) ([]string, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.lines, m.err
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:       false,
		DailyHourUTC:  2,
		BatchSize:     100,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func newTestScheduler(events *mockEvents, loans *mockCandidates, runs *mockRunLog, alerts *mockAlerts) *Scheduler {
	return New(testConfig(), events, loans, runs, alerts, nil, zap.NewNop())
}

func TestRunDailyUpdateCountsUpdatesAndErrors(t *testing.T) {
	events := &mockEvents{
		failFor:   map[string]bool{"loan-2": true},
		noTrigger: map[string]bool{"loan-3": true},
	}
	loans := &mockCandidates{ids: []string{"loan-1", "loan-2", "loan-3"}}
	runs := &mockRunLog{}
	alerts := &mockAlerts{lines: []string{"CRITICAL: Loan loan-1 (NY) expires in 10 days"}}
	s := newTestScheduler(events, loans, runs, alerts)

	result, err := s.RunDailyUpdate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 3, events.callCount())
	assert.Equal(t, int32(1), atomic.LoadInt32(&alerts.calls))

	require.Len(t, runs.runs, 1)
	assert.Equal(t, models.BatchRunStatusCompleted, runs.runs[0].Status)
	assert.Equal(t, 1, runs.runs[0].LoansUpdated)
	assert.Equal(t, 1, runs.runs[0].ErrorCount)

	status := s.Status()
	assert.Equal(t, StateStopped, status.State)
	require.NotNil(t, status.LastRunResult)
	assert.Equal(t, result, *status.LastRunResult)
}

func TestRunDailyUpdateEmptyBatch(t *testing.T) {
	events := &mockEvents{}
	s := newTestScheduler(events, &mockCandidates{}, &mockRunLog{}, &mockAlerts{})

	result, err := s.RunDailyUpdate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Errors)
	assert.Zero(t, events.callCount())
}

func TestRunDailyUpdateRetryRecovers(t *testing.T) {
	events := &mockEvents{}
	loans := &mockCandidates{ids: []string{"loan-1"}, errs: []error{assert.AnError}}
	runs := &mockRunLog{}
	s := newTestScheduler(events, loans, runs, &mockAlerts{})

	result, err := s.RunDailyUpdate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, loans.calls)

	require.Len(t, runs.runs, 1)
	assert.Equal(t, models.BatchRunStatusCompleted, runs.runs[0].Status)
}

func TestRunDailyUpdateExhaustedRetriesWritesSentinel(t *testing.T) {
	events := &mockEvents{failFor: map[string]bool{"loan-1": true, "loan-2": true}}
	loans := &mockCandidates{ids: []string{"loan-1", "loan-2"}}
	runs := &mockRunLog{}
	alerts := &mockAlerts{}
	s := newTestScheduler(events, loans, runs, alerts)

	_, err := s.RunDailyUpdate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrSchedulerRunFailure)
	assert.Equal(t, 2, loans.calls)

	// The day must be visibly failed, not silently skipped.
	require.Len(t, runs.runs, 1)
	assert.Equal(t, models.BatchRunStatusFailed, runs.runs[0].Status)
	assert.Equal(t, -1, runs.runs[0].ErrorCount)
	assert.Zero(t, runs.runs[0].LoansUpdated)

	// No alert pass on a failed run.
	assert.Zero(t, atomic.LoadInt32(&alerts.calls))
	assert.Equal(t, StateFailed, s.Status().State)
}

func TestRunDailyUpdateRunsDoNotOverlap(t *testing.T) {
	events := &mockEvents{delay: 5 * time.Millisecond}
	loans := &mockCandidates{ids: []string{"loan-1", "loan-2", "loan-3"}}
	s := newTestScheduler(events, loans, &mockRunLog{}, &mockAlerts{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.TriggerManual(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, events.callCount())
	assert.Equal(t, int32(1), atomic.LoadInt32(&events.maxInflight))
}

func TestRunDailyUpdateHonorsBatchSize(t *testing.T) {
	events := &mockEvents{}
	loans := &mockCandidates{ids: []string{"loan-1", "loan-2", "loan-3"}}
	cfg := testConfig()
	cfg.BatchSize = 2
	s := New(cfg, events, loans, &mockRunLog{}, &mockAlerts{}, nil, zap.NewNop())

	result, err := s.RunDailyUpdate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)
}

func TestStartDisabledStaysStopped(t *testing.T) {
	s := newTestScheduler(&mockEvents{}, &mockCandidates{}, &mockRunLog{}, &mockAlerts{})

	s.Start()
	status := s.Status()
	assert.Equal(t, StateStopped, status.State)
	assert.Nil(t, status.NextRunTime)
}

func TestStartArmsAndStopDisarms(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = true
	s := New(cfg, &mockEvents{}, &mockCandidates{}, &mockRunLog{}, &mockAlerts{}, nil, zap.NewNop())

	s.Start()
	status := s.Status()
	assert.Equal(t, StateScheduled, status.State)
	require.NotNil(t, status.NextRunTime)
	assert.True(t, status.NextRunTime.After(time.Now().UTC().Add(-time.Second)))

	s.Stop()
	assert.Equal(t, StateStopped, s.Status().State)
}

func TestNextRunAfter(t *testing.T) {
	beforeHour := time.Date(2024, 3, 10, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC), nextRunAfter(beforeHour, 2))

	afterHour := time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC), nextRunAfter(afterHour, 2))

	exactlyOnHour := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC), nextRunAfter(exactlyOnHour, 2))
}
