package dto

import "time"

// LoanEventRequest notifies the engine of a loan lifecycle event.
type LoanEventRequest struct {
	EventType string            `json:"event_type" binding:"required,oneof=payment_received missed_payment foreclosure_filed acceleration maturity_reached status_change"`
	EventDate time.Time         `json:"event_date" binding:"required"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// JurisdictionUpsertRequest is an administrative correction of a
// jurisdiction's statute rule.
type JurisdictionUpsertRequest struct {
	RiskTier          string   `json:"risk_tier" binding:"required,oneof=HIGH MEDIUM LOW"`
	LienYears         *int     `json:"lien_years" binding:"omitempty,min=1,max=50"`
	NoteYears         *int     `json:"note_years" binding:"omitempty,min=1,max=50"`
	ForeclosureYears  *int     `json:"foreclosure_years" binding:"omitempty,min=1,max=50"`
	DeficiencyYears   *int     `json:"deficiency_years" binding:"omitempty,min=1,max=50"`
	TriggerEvents     []string `json:"trigger_events" binding:"required,min=1,dive,oneof=acceleration maturity default last_payment charge_off"`
	TollingProvisions []string `json:"tolling_provisions" binding:"omitempty,dive,oneof=bankruptcy military_service"`
	LienExtinguished  bool     `json:"lien_extinguished"`
	ForeclosureBarred bool     `json:"foreclosure_barred"`
}

// UpdateResult reports the outcome of a batch update run.
type UpdateResult struct {
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// AlertsResponse carries the formatted expiration alert lines.
type AlertsResponse struct {
	Alerts []string `json:"alerts"`
	Count  int      `json:"count"`
}

// EventAccepted acknowledges an enqueued recalculation.
type EventAccepted struct {
	LoanID    string `json:"loan_id"`
	EventType string `json:"event_type"`
	Queued    bool   `json:"queued"`
}
