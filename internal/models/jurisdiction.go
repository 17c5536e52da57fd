package models

import (
	"time"

	"github.com/lib/pq"
)

// RiskTier is the qualitative statute-of-limitations risk classification a
// jurisdiction carries, sourced from legal research.
type RiskTier string

const (
	RiskTierHigh   RiskTier = "HIGH"
	RiskTierMedium RiskTier = "MEDIUM"
	RiskTierLow    RiskTier = "LOW"
)

// TriggerEventType identifies a loan event that can start the SOL clock.
type TriggerEventType string

const (
	TriggerAcceleration TriggerEventType = "acceleration"
	TriggerMaturity     TriggerEventType = "maturity"
	TriggerDefault      TriggerEventType = "default"
	TriggerLastPayment  TriggerEventType = "last_payment"
	TriggerChargeOff    TriggerEventType = "charge_off"
)

// Tolling provision types a jurisdiction may honor.
const (
	TollingBankruptcy      = "bankruptcy"
	TollingMilitaryService = "military_service"
)

// JurisdictionRule encodes one jurisdiction's statute-of-limitations law:
// statutory periods, recognized trigger events, honored tolling provisions
// and the legal effect of expiration. Rows are seeded from legal research
// and change only through administrative correction.
type JurisdictionRule struct {
	ID                string         `db:"id" json:"id"`
	StateCode         string         `db:"state_code" json:"state_code"`
	RiskTier          RiskTier       `db:"risk_tier" json:"risk_tier"`
	LienYears         *int           `db:"lien_years" json:"lien_years,omitempty"`
	NoteYears         *int           `db:"note_years" json:"note_years,omitempty"`
	ForeclosureYears  *int           `db:"foreclosure_years" json:"foreclosure_years,omitempty"`
	DeficiencyYears   *int           `db:"deficiency_years" json:"deficiency_years,omitempty"`
	TriggerEvents     pq.StringArray `db:"trigger_events" json:"trigger_events"`
	TollingProvisions pq.StringArray `db:"tolling_provisions" json:"tolling_provisions"`
	LienExtinguished  bool           `db:"lien_extinguished" json:"lien_extinguished"`
	ForeclosureBarred bool           `db:"foreclosure_barred" json:"foreclosure_barred"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// Usable reports whether the rule carries at least one statutory period.
// A rule without any period cannot anchor a calculation.
func (r *JurisdictionRule) Usable() bool {
	return r.LienYears != nil || r.NoteYears != nil || r.ForeclosureYears != nil || r.DeficiencyYears != nil
}

// StatutoryYears returns the governing limitation period in years:
// foreclosure, else note, else lien, else the supplied default.
func (r *JurisdictionRule) StatutoryYears(fallback int) int {
	switch {
	case r.ForeclosureYears != nil:
		return *r.ForeclosureYears
	case r.NoteYears != nil:
		return *r.NoteYears
	case r.LienYears != nil:
		return *r.LienYears
	default:
		return fallback
	}
}

// RecognizesTolling reports whether the jurisdiction honors the provision.
func (r *JurisdictionRule) RecognizesTolling(provision string) bool {
	for _, p := range r.TollingProvisions {
		if p == provision {
			return true
		}
	}
	return false
}
