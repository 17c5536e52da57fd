package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nplvision/sol-engine/internal/models"
	"github.com/nplvision/sol-engine/pkg/config"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
	"github.com/nplvision/sol-engine/pkg/jobs"
)

// auditWindowDays is the materiality filter for the audit trail: only
// recalculations that land expired or within one year of expiration are
// recorded.
const auditWindowDays = 365

// loanProvider exposes the external loan system's per-loan SOL input.
type loanProvider interface {
	GetSOLInput(ctx context.Context, loanID string) (*models.LoanSOLInput, error)
}

// calculationStore persists the single live calculation per loan.
type calculationStore interface {
	Upsert(ctx context.Context, calc *models.SOLCalculation) error
}

// auditStore appends material recalculation snapshots.
type auditStore interface {
	Insert(ctx context.Context, entry *models.SOLAuditEntry) error
}

// EventPayload is the queued recalculation request.
type EventPayload struct {
	LoanID    string               `json:"loan_id"`
	EventType models.LoanEventType `json:"event_type"`
	EventDate time.Time            `json:"event_date"`
	Metadata  map[string]string    `json:"metadata,omitempty"`
}

// EventService reacts to loan lifecycle events by recalculating the loan's
// SOL position. The inbound path enqueues onto an at-least-once worker
// queue; processing is idempotent because the store is a full-row upsert
// keyed by loan. No failure here may ever surface to the business action
// that raised the event.
type EventService struct {
	calc   *CalculationService
	loans  loanProvider
	store  calculationStore
	audits auditStore
	logger *zap.Logger

	queue *jobs.Queue
}

// NewEventService constructs the service and its recalculation queue.
func NewEventService(calc *CalculationService, loans loanProvider, store calculationStore, audits auditStore, cfg config.EventsConfig, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EventService{
		calc:   calc,
		loans:  loans,
		store:  store,
		audits: audits,
		logger: logger,
	}
	s.queue = jobs.NewQueue("sol-recalc", s.processJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the recalculation workers.
func (s *EventService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the recalculation workers.
func (s *EventService) Stop() {
	s.queue.Stop()
}

// HandleEvent enqueues a recalculation for a loan lifecycle event. Enqueue
// failures are logged and swallowed; SOL bookkeeping must never fail the
// triggering business action.
func (s *EventService) HandleEvent(loanID string, eventType models.LoanEventType, eventDate time.Time, metadata map[string]string) {
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: string(eventType),
		Payload: EventPayload{
			LoanID:    loanID,
			EventType: eventType,
			EventDate: eventDate,
			Metadata:  metadata,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Sugar().Errorw("failed to enqueue SOL recalculation",
			"loan_id", loanID, "event_type", eventType, "error", err)
	}
}

// Recalculate runs the full fetch-calculate-persist-audit path for one
// loan. It returns (nil, nil) when the loan has no recognized trigger: the
// loan is skipped this cycle without error.
func (s *EventService) Recalculate(ctx context.Context, loanID string, eventType models.LoanEventType, eventDate time.Time) (*models.SOLCalculation, error) {
	input, err := s.loans.GetSOLInput(ctx, loanID)
	if err != nil {
		return nil, err
	}

	calc, err := s.calc.Calculate(ctx, input)
	if err != nil {
		return nil, err
	}
	if calc == nil {
		return nil, nil
	}

	if err := s.store.Upsert(ctx, calc); err != nil {
		return nil, err
	}

	if calc.IsExpired || calc.DaysUntilExpiration <= auditWindowDays {
		entry := &models.SOLAuditEntry{
			LoanID:              calc.LoanID,
			EventType:           eventType,
			EventDate:           eventDate,
			TriggerEvent:        calc.TriggerEvent,
			AdjustedExpiration:  calc.AdjustedExpiration,
			DaysUntilExpiration: calc.DaysUntilExpiration,
			IsExpired:           calc.IsExpired,
			RiskScore:           calc.RiskScore,
			RiskLevel:           calc.RiskLevel,
		}
		if err := s.audits.Insert(ctx, entry); err != nil {
			// Audit is best-effort; the calculation itself is already durable.
			s.logger.Sugar().Errorw("failed to append SOL audit entry", "loan_id", loanID, "error", err)
		}
	}

	return calc, nil
}

// processJob is the queue handler. Per-loan domain conditions (unknown
// jurisdiction, missing loan, no trigger) are terminal for the attempt and
// not retried; transient store failures are returned so the queue retries.
func (s *EventService) processJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(EventPayload)
	if !ok {
		s.logger.Sugar().Errorw("unexpected recalculation payload", "job_id", job.ID)
		return nil
	}

	_, err := s.Recalculate(ctx, payload.LoanID, payload.EventType, payload.EventDate)
	if err == nil {
		return nil
	}

	if errors.Is(err, appErrors.ErrUnknownJurisdiction) || errors.Is(err, appErrors.ErrNotFound) {
		s.logger.Sugar().Warnw("SOL recalculation skipped",
			"loan_id", payload.LoanID, "event_type", payload.EventType, "error", err)
		return nil
	}

	s.logger.Sugar().Errorw("SOL recalculation failed",
		"loan_id", payload.LoanID, "event_type", payload.EventType, "error", err)
	return err
}
