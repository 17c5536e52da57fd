package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nplvision/sol-engine/internal/models"
	"github.com/nplvision/sol-engine/pkg/config"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

// daysPerYear keeps the statutory period arithmetic on the 365-day-per-year
// approximation used by the legal research this engine was validated
// against. Leap-year-accurate calendar arithmetic is a pending
// domain-expert decision; do not "fix" this silently.
const daysPerYear = 365

// jurisdictionStore resolves statute rules, typically the cached store.
type jurisdictionStore interface {
	GetByState(ctx context.Context, stateCode string) (*models.JurisdictionRule, error)
}

// CalculationService runs the deterministic SOL calculation: trigger
// resolution, tolling, expiration and risk scoring. It performs no writes.
type CalculationService struct {
	rules   jurisdictionStore
	cfg     config.SOLConfig
	metrics *MetricsService
	logger  *zap.Logger

	now func() time.Time
}

// NewCalculationService constructs the service.
func NewCalculationService(rules jurisdictionStore, cfg config.SOLConfig, metrics *MetricsService, logger *zap.Logger) *CalculationService {
	if cfg.DefaultStatutoryYears <= 0 {
		cfg.DefaultStatutoryYears = 6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalculationService{
		rules:   rules,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Calculate produces the loan's current SOL position, or (nil, nil) when no
// recognized trigger event is present; incomplete loans are an expected
// state, not an error. An unresolvable jurisdiction is an error and the
// loan is skipped without retry for the cycle.
func (s *CalculationService) Calculate(ctx context.Context, input *models.LoanSOLInput) (*models.SOLCalculation, error) {
	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)

	rule, err := s.rules.GetByState(ctx, input.StateCode)
	if err != nil {
		s.metrics.CalculationObserved("unknown_jurisdiction")
		return nil, err
	}
	if !rule.Usable() {
		s.metrics.CalculationObserved("unknown_jurisdiction")
		return nil, appErrors.Clone(appErrors.ErrUnknownJurisdiction,
			"jurisdiction "+input.StateCode+" has no statutory period configured")
	}

	trigger, err := ResolveTrigger(input, rule, today)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoValidTrigger) {
			s.metrics.CalculationObserved("no_trigger")
			s.logger.Sugar().Debugw("no valid SOL trigger", "loan_id", input.LoanID, "state", input.StateCode)
			return nil, nil
		}
		return nil, err
	}

	statutoryYears := rule.StatutoryYears(s.cfg.DefaultStatutoryYears)
	baseExpiration := trigger.Date.AddDate(0, 0, statutoryYears*daysPerYear)

	var tollingEvents models.TollingEventList
	tolledDays := 0
	if !trigger.IsFuture {
		tollingEvents, tolledDays = ComputeTolling(input, rule, trigger.Date, baseExpiration, now)
	}

	adjustedExpiration := baseExpiration.AddDate(0, 0, tolledDays)
	daysUntil := daysBetween(today, adjustedExpiration)

	activeForeclosure := input.ForeclosureStatus.ActiveForeclosure()
	// A negative clock alone does not bar a foreclosure that was filed in
	// time: loan-barred-but-action-started keeps the loan unexpired.
	isExpired := !trigger.IsFuture && daysUntil < 0 && !activeForeclosure

	score, factors := ScoreRisk(rule, trigger, daysUntil, isExpired, activeForeclosure)
	factors.StatutoryYears = statutoryYears
	factors.TotalTolledDays = tolledDays

	s.metrics.CalculationObserved("calculated")

	return &models.SOLCalculation{
		LoanID:              input.LoanID,
		JurisdictionID:      rule.ID,
		TriggerEvent:        trigger.EventType,
		TriggerDate:         trigger.Date,
		IsFutureTrigger:     trigger.IsFuture,
		BaseExpirationDate:  baseExpiration,
		TollingEvents:       tollingEvents,
		TotalTolledDays:     tolledDays,
		AdjustedExpiration:  adjustedExpiration,
		DaysUntilExpiration: daysUntil,
		IsExpired:           isExpired,
		RiskScore:           score,
		RiskLevel:           models.RiskLevelForScore(score),
		RiskFactors:         factors,
		CalculatedAt:        now,
	}, nil
}
