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

const calculationColumns = `loan_id, jurisdiction_id, trigger_event, trigger_date, is_future_trigger,
base_expiration_date, tolling_events, total_tolled_days, adjusted_expiration_date,
days_until_expiration, is_expired, risk_score, risk_level, risk_factors, calculated_at`

// CalculationRepository persists the single live SOL calculation per loan.
type CalculationRepository struct {
	db *sqlx.DB
}

// NewCalculationRepository constructs the repository.
func NewCalculationRepository(db *sqlx.DB) *CalculationRepository {
	return &CalculationRepository{db: db}
}

// Upsert inserts or fully replaces the calculation row for a loan. The
// single-statement ON CONFLICT write keeps concurrent callers safe: readers
// see either the previous row or the complete new one, never a partial mix.
func (r *CalculationRepository) Upsert(ctx context.Context, calc *models.SOLCalculation) error {
	if calc.CalculatedAt.IsZero() {
		calc.CalculatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO sol_calculations (loan_id, jurisdiction_id, trigger_event, trigger_date, is_future_trigger,
base_expiration_date, tolling_events, total_tolled_days, adjusted_expiration_date,
days_until_expiration, is_expired, risk_score, risk_level, risk_factors, calculated_at)
VALUES (:loan_id, :jurisdiction_id, :trigger_event, :trigger_date, :is_future_trigger,
        :base_expiration_date, :tolling_events, :total_tolled_days, :adjusted_expiration_date,
        :days_until_expiration, :is_expired, :risk_score, :risk_level, :risk_factors, :calculated_at)
ON CONFLICT (loan_id)
DO UPDATE SET jurisdiction_id = EXCLUDED.jurisdiction_id, trigger_event = EXCLUDED.trigger_event,
              trigger_date = EXCLUDED.trigger_date, is_future_trigger = EXCLUDED.is_future_trigger,
              base_expiration_date = EXCLUDED.base_expiration_date, tolling_events = EXCLUDED.tolling_events,
              total_tolled_days = EXCLUDED.total_tolled_days, adjusted_expiration_date = EXCLUDED.adjusted_expiration_date,
              days_until_expiration = EXCLUDED.days_until_expiration, is_expired = EXCLUDED.is_expired,
              risk_score = EXCLUDED.risk_score, risk_level = EXCLUDED.risk_level,
              risk_factors = EXCLUDED.risk_factors, calculated_at = EXCLUDED.calculated_at`
	if _, err := r.db.NamedExecContext(ctx, query, calc); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status,
			fmt.Sprintf("upsert calculation for loan %s", calc.LoanID))
	}
	return nil
}

// GetByLoanID fetches the current calculation for a loan.
func (r *CalculationRepository) GetByLoanID(ctx context.Context, loanID string) (*models.SOLCalculation, error) {
	query := fmt.Sprintf(`SELECT %s FROM sol_calculations WHERE loan_id = $1`, calculationColumns)
	var calc models.SOLCalculation
	if err := r.db.GetContext(ctx, &calc, query, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no SOL calculation for loan %s", loanID))
		}
		return nil, fmt.Errorf("get calculation for loan %s: %w", loanID, err)
	}
	return &calc, nil
}

// ListAlertCandidates joins near-expiration calculations with their
// jurisdiction's region code for alert formatting, closest first.
func (r *CalculationRepository) ListAlertCandidates(ctx context.Context, withinDays int) ([]models.AlertCandidate, error) {
	const query = `SELECT sc.loan_id, j.state_code, sc.days_until_expiration
FROM sol_calculations sc
JOIN sol_jurisdictions j ON j.id = sc.jurisdiction_id
WHERE sc.days_until_expiration <= $1
ORDER BY sc.days_until_expiration ASC`
	var candidates []models.AlertCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, withinDays); err != nil {
		return nil, fmt.Errorf("list alert candidates: %w", err)
	}
	return candidates, nil
}

// ListExpiringWithin returns calculations whose adjusted expiration lies
// within the given number of days (expired loans included), closest first.
func (r *CalculationRepository) ListExpiringWithin(ctx context.Context, days int) ([]models.SOLCalculation, error) {
	query := fmt.Sprintf(`SELECT %s FROM sol_calculations
WHERE days_until_expiration <= $1
ORDER BY days_until_expiration ASC`, calculationColumns)
	var calcs []models.SOLCalculation
	if err := r.db.SelectContext(ctx, &calcs, query, days); err != nil {
		return nil, fmt.Errorf("list expiring calculations: %w", err)
	}
	return calcs, nil
}
