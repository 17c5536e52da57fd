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

// LoanRepository is the engine's read-only view of the loan system's
// tables. The loan data itself is owned by the ingestion pipeline; this
// repository only assembles the transient LoanSOLInput per calculation.
type LoanRepository struct {
	db *sqlx.DB
}

// NewLoanRepository constructs the repository.
func NewLoanRepository(db *sqlx.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

type loanRow struct {
	ID                 string                   `db:"id"`
	StateCode          string                   `db:"state_code"`
	OriginationDate    sql.NullTime             `db:"origination_date"`
	MaturityDate       sql.NullTime             `db:"maturity_date"`
	DefaultDate        sql.NullTime             `db:"default_date"`
	LastPaymentDate    sql.NullTime             `db:"last_payment_date"`
	AccelerationDate   sql.NullTime             `db:"acceleration_date"`
	ComplaintFiledDate sql.NullTime             `db:"complaint_filed_date"`
	ChargeOffDate      sql.NullTime             `db:"charge_off_date"`
	MilitaryService    bool                     `db:"military_service"`
	ForeclosureStatus  models.ForeclosureStatus `db:"foreclosure_status"`
}

type bankruptcyRow struct {
	StartDate sql.NullTime `db:"start_date"`
	EndDate   sql.NullTime `db:"end_date"`
}

// GetSOLInput assembles the calculation input for a loan.
func (r *LoanRepository) GetSOLInput(ctx context.Context, loanID string) (*models.LoanSOLInput, error) {
	const loanQuery = `SELECT id, state_code, origination_date, maturity_date, default_date, last_payment_date,
acceleration_date, complaint_filed_date, charge_off_date, military_service, COALESCE(foreclosure_status, '') AS foreclosure_status
FROM loans WHERE id = $1`

	var row loanRow
	if err := r.db.GetContext(ctx, &row, loanQuery, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("loan %s not found", loanID))
		}
		return nil, fmt.Errorf("get loan %s: %w", loanID, err)
	}

	input := &models.LoanSOLInput{
		LoanID:             row.ID,
		StateCode:          row.StateCode,
		OriginationDate:    timePtr(row.OriginationDate),
		MaturityDate:       timePtr(row.MaturityDate),
		DefaultDate:        timePtr(row.DefaultDate),
		LastPaymentDate:    timePtr(row.LastPaymentDate),
		AccelerationDate:   timePtr(row.AccelerationDate),
		ComplaintFiledDate: timePtr(row.ComplaintFiledDate),
		ChargeOffDate:      timePtr(row.ChargeOffDate),
		MilitaryService:    row.MilitaryService,
		ForeclosureStatus:  row.ForeclosureStatus,
	}

	const bkQuery = `SELECT start_date, end_date FROM loan_bankruptcy_periods WHERE loan_id = $1 ORDER BY start_date ASC`
	var bkRows []bankruptcyRow
	if err := r.db.SelectContext(ctx, &bkRows, bkQuery, loanID); err != nil {
		return nil, fmt.Errorf("get bankruptcy periods for loan %s: %w", loanID, err)
	}
	for _, bk := range bkRows {
		if !bk.StartDate.Valid {
			continue
		}
		period := models.BankruptcyPeriod{Start: bk.StartDate.Time}
		if bk.EndDate.Valid {
			end := bk.EndDate.Time
			period.End = &end
		}
		input.BankruptcyPeriods = append(input.BankruptcyPeriods, period)
	}

	return input, nil
}

// ListUpdateCandidates selects loans due for a recalculation: loans with no
// calculation yet, loans whose calculation is older than a day, and loans
// within a year of expiration. Uncalculated loans come first, then loans
// closest to expiration, capped at limit.
func (r *LoanRepository) ListUpdateCandidates(ctx context.Context, limit int) ([]string, error) {
	const query = `SELECT l.id FROM loans l
LEFT JOIN sol_calculations sc ON sc.loan_id = l.id
WHERE sc.loan_id IS NULL
   OR sc.calculated_at < NOW() - INTERVAL '24 hours'
   OR sc.days_until_expiration <= 365
ORDER BY CASE WHEN sc.loan_id IS NULL THEN 0 ELSE 1 END ASC,
         sc.adjusted_expiration_date ASC NULLS LAST
LIMIT $1`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, limit); err != nil {
		return nil, fmt.Errorf("list update candidates: %w", err)
	}
	return ids, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
