package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nplvision/sol-engine/internal/models"
)

// AuditRepository appends SOL recalculation audit entries.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends an audit entry. The trail is append-only; entries are
// never updated or deleted.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.SOLAuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO sol_audit_entries (id, loan_id, event_type, event_date, trigger_event,
adjusted_expiration_date, days_until_expiration, is_expired, risk_score, risk_level, created_at)
VALUES (:id, :loan_id, :event_type, :event_date, :trigger_event,
        :adjusted_expiration_date, :days_until_expiration, :is_expired, :risk_score, :risk_level, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert audit entry for loan %s: %w", entry.LoanID, err)
	}
	return nil
}

// ListByLoan returns a loan's audit history, newest first.
func (r *AuditRepository) ListByLoan(ctx context.Context, loanID string, limit int) ([]models.SOLAuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, loan_id, event_type, event_date, trigger_event, adjusted_expiration_date,
days_until_expiration, is_expired, risk_score, risk_level, created_at
FROM sol_audit_entries WHERE loan_id = $1 ORDER BY created_at DESC LIMIT $2`
	var entries []models.SOLAuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, loanID, limit); err != nil {
		return nil, fmt.Errorf("list audit entries for loan %s: %w", loanID, err)
	}
	return entries, nil
}
