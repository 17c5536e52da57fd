package models

import "time"

// SOLAuditEntry is an append-only record of a recalculation that produced a
// material result: the loan is expired or within one year of expiration.
// Immaterial recalculations are deliberately not audited.
type SOLAuditEntry struct {
	ID                  string           `db:"id" json:"id"`
	LoanID              string           `db:"loan_id" json:"loan_id"`
	EventType           LoanEventType    `db:"event_type" json:"event_type"`
	EventDate           time.Time        `db:"event_date" json:"event_date"`
	TriggerEvent        TriggerEventType `db:"trigger_event" json:"trigger_event"`
	AdjustedExpiration  time.Time        `db:"adjusted_expiration_date" json:"adjusted_expiration_date"`
	DaysUntilExpiration int              `db:"days_until_expiration" json:"days_until_expiration"`
	IsExpired           bool             `db:"is_expired" json:"is_expired"`
	RiskScore           int              `db:"risk_score" json:"risk_score"`
	RiskLevel           RiskLevel        `db:"risk_level" json:"risk_level"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
}
