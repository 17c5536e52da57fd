package models

import "time"

// ForeclosureStatus mirrors the loan system's foreclosure case status.
type ForeclosureStatus string

const (
	ForeclosureStatusNone      ForeclosureStatus = ""
	ForeclosureStatusActive    ForeclosureStatus = "ACTIVE"
	ForeclosureStatusInProcess ForeclosureStatus = "IN_PROCESS"
	ForeclosureStatusFiled     ForeclosureStatus = "FILED"
	ForeclosureStatusClosed    ForeclosureStatus = "CLOSED"
)

// ActiveForeclosure reports whether a foreclosure action has been started
// and is still pending. An active case already satisfies the limitations
// requirement, which mitigates marginal SOL risk.
func (s ForeclosureStatus) ActiveForeclosure() bool {
	switch s {
	case ForeclosureStatusActive, ForeclosureStatusInProcess, ForeclosureStatusFiled:
		return true
	default:
		return false
	}
}

// LoanEventType identifies a loan lifecycle event that requires a
// recalculation of the loan's SOL position.
type LoanEventType string

const (
	LoanEventPaymentReceived  LoanEventType = "payment_received"
	LoanEventMissedPayment    LoanEventType = "missed_payment"
	LoanEventForeclosureFiled LoanEventType = "foreclosure_filed"
	LoanEventAcceleration     LoanEventType = "acceleration"
	LoanEventMaturityReached  LoanEventType = "maturity_reached"
	LoanEventStatusChange     LoanEventType = "status_change"
	LoanEventScheduledUpdate  LoanEventType = "scheduled_update"
	LoanEventManualUpdate     LoanEventType = "manual_update"
)

// BankruptcyPeriod is a known bankruptcy stay interval. End is nil while
// the case is still open.
type BankruptcyPeriod struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// LoanSOLInput is the transient per-calculation view of a loan, assembled
// from the external loan system. It is never persisted by the engine.
type LoanSOLInput struct {
	LoanID             string             `json:"loan_id"`
	StateCode          string             `json:"state_code"`
	OriginationDate    *time.Time         `json:"origination_date,omitempty"`
	MaturityDate       *time.Time         `json:"maturity_date,omitempty"`
	DefaultDate        *time.Time         `json:"default_date,omitempty"`
	LastPaymentDate    *time.Time         `json:"last_payment_date,omitempty"`
	AccelerationDate   *time.Time         `json:"acceleration_date,omitempty"`
	ComplaintFiledDate *time.Time         `json:"complaint_filed_date,omitempty"`
	ChargeOffDate      *time.Time         `json:"charge_off_date,omitempty"`
	BankruptcyPeriods  []BankruptcyPeriod `json:"bankruptcy_periods,omitempty"`
	MilitaryService    bool               `json:"military_service"`
	ForeclosureStatus  ForeclosureStatus  `json:"foreclosure_status,omitempty"`
}

// EventDate returns the loan's date for the given trigger event type.
// Acceleration falls back to the complaint-filed date when the loan is in
// active foreclosure: filing the complaint accelerates the debt.
func (in *LoanSOLInput) EventDate(event TriggerEventType) *time.Time {
	switch event {
	case TriggerAcceleration:
		if in.AccelerationDate != nil {
			return in.AccelerationDate
		}
		if in.ForeclosureStatus.ActiveForeclosure() {
			return in.ComplaintFiledDate
		}
		return nil
	case TriggerMaturity:
		return in.MaturityDate
	case TriggerDefault:
		return in.DefaultDate
	case TriggerLastPayment:
		return in.LastPaymentDate
	case TriggerChargeOff:
		return in.ChargeOffDate
	default:
		return nil
	}
}
