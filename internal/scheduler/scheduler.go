// Package scheduler drives the unattended daily SOL batch update. A single
// Scheduler instance is owned by the composition root; there is no ambient
// global state.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nplvision/sol-engine/internal/models"
	"github.com/nplvision/sol-engine/internal/service"
	"github.com/nplvision/sol-engine/pkg/config"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

// State is the scheduler's lifecycle position.
type State string

const (
	StateStopped   State = "STOPPED"
	StateScheduled State = "SCHEDULED"
	StateRunning   State = "RUNNING"
	StateRetrying  State = "RETRYING"
	StateFailed    State = "FAILED"
)

// Result summarizes one batch run.
type Result struct {
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// Status is the externally visible scheduler state.
type Status struct {
	State         State                  `json:"state"`
	IsRunning     bool                   `json:"is_running"`
	Config        config.SchedulerConfig `json:"config"`
	NextRunTime   *time.Time             `json:"next_run_time,omitempty"`
	LastRunResult *Result                `json:"last_run_result,omitempty"`
}

// batchEventService runs one loan through the recalculation path.
type batchEventService interface {
	Recalculate(ctx context.Context, loanID string, eventType models.LoanEventType, eventDate time.Time) (*models.SOLCalculation, error)
}

// candidateSource selects loans due for a recalculation.
type candidateSource interface {
	ListUpdateCandidates(ctx context.Context, limit int) ([]string, error)
}

// runLogStore persists the per-day batch run log.
type runLogStore interface {
	Upsert(ctx context.Context, run *models.BatchRunLog) error
}

// alertChecker produces the post-run expiration alert lines.
type alertChecker interface {
	CheckExpirationAlerts(ctx context.Context) ([]string, error)
}

// errorCountFailedRun is the sentinel stored when every retry of a daily
// run is exhausted, so the day is visibly failed rather than silently
// skipped.
const errorCountFailedRun = -1

// Scheduler arms a one-shot timer for the configured daily hour (UTC),
// runs the batch update on fire and re-arms for the next day. Runs never
// overlap: a fire during an in-flight run waits for it to finish. Stop
// prevents further fires without interrupting a run already in progress.
type Scheduler struct {
	cfg     config.SchedulerConfig
	events  batchEventService
	loans   candidateSource
	runs    runLogStore
	alerts  alertChecker
	metrics *service.MetricsService
	logger  *zap.Logger

	mu      sync.Mutex
	state   State
	timer   *time.Timer
	nextRun time.Time
	stopped bool
	lastRun *Result

	// runMu serializes batch runs across the timer and manual triggers.
	runMu sync.Mutex

	now func() time.Time
}

// New constructs a scheduler. Start must be called to arm it.
func New(cfg config.SchedulerConfig, events batchEventService, loans candidateSource, runs runLogStore, alerts alertChecker, metrics *service.MetricsService, logger *zap.Logger) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cfg:     cfg,
		events:  events,
		loans:   loans,
		runs:    runs,
		alerts:  alerts,
		metrics: metrics,
		logger:  logger,
		state:   StateStopped,
		now:     time.Now,
	}
}

// Start arms the timer for the next occurrence of the configured hour.
// Disabled schedulers stay stopped; manual triggers still work.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled {
		s.logger.Sugar().Infow("SOL scheduler disabled by configuration")
		return
	}
	if s.state != StateStopped {
		return
	}

	s.stopped = false
	s.armLocked()
	s.logger.Sugar().Infow("SOL scheduler started",
		"next_run", s.nextRun, "daily_hour_utc", s.cfg.DailyHourUTC, "batch_size", s.cfg.BatchSize)
}

// Stop cancels any pending timer fire. An in-flight run completes; it will
// observe the stopped flag and not re-arm.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.state == StateScheduled {
		s.state = StateStopped
	}
	s.logger.Sugar().Infow("SOL scheduler stopped")
}

// Status reports the scheduler's current position and configuration.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		State:     s.state,
		IsRunning: s.state == StateRunning || s.state == StateRetrying,
		Config:    s.cfg,
	}
	if s.state == StateScheduled {
		next := s.nextRun
		status.NextRunTime = &next
	}
	if s.lastRun != nil {
		last := *s.lastRun
		status.LastRunResult = &last
	}
	return status
}

// TriggerManual runs the daily update immediately, serialized against any
// scheduled run. The run-log upsert converges a manual and a scheduled run
// on the same day onto one row.
func (s *Scheduler) TriggerManual(ctx context.Context) (Result, error) {
	return s.RunDailyUpdate(ctx)
}

// RunDailyUpdate executes the batch with whole-batch retry. Per-loan
// failures only increment the error count; an error that aborts the batch
// is retried up to the configured attempts with a fixed delay. When every
// attempt fails, a sentinel run log is persisted and the scheduler holds in
// the failed state instead of silently skipping the day.
func (s *Scheduler) RunDailyUpdate(ctx context.Context) (Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.setState(StateRunning)
	started := s.now()

	var result Result
	var runErr error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		result, runErr = s.runBatch(ctx)
		if runErr == nil {
			break
		}

		s.logger.Sugar().Errorw("daily SOL update attempt failed",
			"attempt", attempt, "max_attempts", s.cfg.RetryAttempts, "error", runErr)
		if attempt == s.cfg.RetryAttempts {
			break
		}

		s.setState(StateRetrying)
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			attempt = s.cfg.RetryAttempts
		case <-time.After(s.cfg.RetryDelay):
		}
		s.setState(StateRunning)
	}

	if runErr != nil {
		s.failRun(ctx, started, runErr)
		return Result{}, appErrors.Wrap(runErr, appErrors.ErrSchedulerRunFailure.Code,
			appErrors.ErrSchedulerRunFailure.Status, "daily SOL update exhausted retries")
	}

	s.finishRun(ctx, started, result)
	return result, nil
}

func (s *Scheduler) runBatch(ctx context.Context) (Result, error) {
	candidates, err := s.loans.ListUpdateCandidates(ctx, s.cfg.BatchSize)
	if err != nil {
		return Result{}, fmt.Errorf("select update candidates: %w", err)
	}

	result := Result{}
	eventDate := s.now().UTC()
	for _, loanID := range candidates {
		calc, err := s.events.Recalculate(ctx, loanID, models.LoanEventScheduledUpdate, eventDate)
		if err != nil {
			result.Errors++
			s.logger.Sugar().Warnw("scheduled SOL recalculation failed", "loan_id", loanID, "error", err)
			continue
		}
		if calc != nil {
			result.Updated++
		}
	}

	// A batch where every single loan errored points at a systemic failure
	// (store or loan system down); let the retry path take over.
	if len(candidates) > 0 && result.Errors == len(candidates) {
		return Result{}, fmt.Errorf("all %d loans in batch failed", len(candidates))
	}

	return result, nil
}

func (s *Scheduler) finishRun(ctx context.Context, started time.Time, result Result) {
	if lines, err := s.alerts.CheckExpirationAlerts(ctx); err != nil {
		s.logger.Sugar().Errorw("expiration alert pass failed", "error", err)
	} else {
		for _, line := range lines {
			s.logger.Sugar().Infow("expiration alert", "alert", line)
		}
	}

	run := &models.BatchRunLog{
		RunDate:      s.now().UTC(),
		LoansUpdated: result.Updated,
		ErrorCount:   result.Errors,
		Status:       models.BatchRunStatusCompleted,
	}
	if err := s.runs.Upsert(ctx, run); err != nil {
		s.logger.Sugar().Errorw("failed to persist batch run log", "error", err)
	}

	duration := s.now().Sub(started)
	s.metrics.BatchRunObserved(string(models.BatchRunStatusCompleted), result.Updated, duration)
	s.logger.Sugar().Infow("daily SOL update completed",
		"updated", result.Updated, "errors", result.Errors, "duration", duration)

	s.mu.Lock()
	last := result
	s.lastRun = &last
	if s.stopped || !s.cfg.Enabled {
		s.state = StateStopped
	} else {
		s.armLocked()
	}
	s.mu.Unlock()
}

func (s *Scheduler) failRun(ctx context.Context, started time.Time, runErr error) {
	run := &models.BatchRunLog{
		RunDate:      s.now().UTC(),
		LoansUpdated: 0,
		ErrorCount:   errorCountFailedRun,
		Status:       models.BatchRunStatusFailed,
	}
	if err := s.runs.Upsert(ctx, run); err != nil {
		s.logger.Sugar().Errorw("failed to persist failed-run marker", "error", err)
	}

	duration := s.now().Sub(started)
	s.metrics.BatchRunObserved(string(models.BatchRunStatusFailed), 0, duration)
	s.logger.Sugar().Errorw("daily SOL update failed after all retries; operator attention required",
		"error", runErr, "duration", duration)

	s.mu.Lock()
	s.state = StateFailed
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// armLocked schedules the next fire. Caller holds mu.
func (s *Scheduler) armLocked() {
	next := nextRunAfter(s.now().UTC(), s.cfg.DailyHourUTC)
	s.nextRun = next
	s.state = StateScheduled
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(next.Sub(s.now()), s.onTimer)
}

func (s *Scheduler) onTimer() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// RunDailyUpdate serializes on runMu, so a fire that lands while a
	// manual run is still in progress waits rather than interleaving.
	if _, err := s.RunDailyUpdate(context.Background()); err != nil {
		// failRun already logged and moved the state machine to Failed.
		return
	}
}

// nextRunAfter returns the next occurrence of the given UTC hour: today if
// it has not passed yet, otherwise tomorrow.
func nextRunAfter(now time.Time, hourUTC int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
