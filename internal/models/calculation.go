package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RiskLevel is the coarse classification derived from the numeric score.
type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "HIGH"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelLow    RiskLevel = "LOW"
)

// RiskLevelForScore maps a 0-100 score onto a risk level.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskLevelHigh
	case score >= 40:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// TollingEvent records one pause of the SOL clock.
type TollingEvent struct {
	Type  string     `json:"type"`
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
	Days  int        `json:"days"`
}

// TollingEventList is the JSONB column shape for tolling events.
type TollingEventList []TollingEvent

// Value implements driver.Valuer.
func (l TollingEventList) Value() (driver.Value, error) {
	if l == nil {
		l = TollingEventList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *TollingEventList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("tolling events: unexpected column type %T", src)
	}
	return json.Unmarshal(raw, l)
}

// RiskFactorsVersion tags the snapshot schema so downstream consumers can
// detect shape changes.
const RiskFactorsVersion = 1

// RiskFactors is the closed, versioned explanation of a risk score. Every
// input to the score is captured so the number can be audited later.
type RiskFactors struct {
	Version               int      `json:"version"`
	DaysUntilExpiration   int      `json:"days_until_expiration"`
	IsExpired             bool     `json:"is_expired"`
	IsFutureTrigger       bool     `json:"is_future_trigger"`
	TimeScore             int      `json:"time_score"`
	JurisdictionTier      RiskTier `json:"jurisdiction_tier"`
	JurisdictionScore     int      `json:"jurisdiction_score"`
	LienExtinguished      bool     `json:"lien_extinguished"`
	LienScore             int      `json:"lien_score"`
	AccelerationTriggered bool     `json:"acceleration_triggered"`
	AccelerationScore     int      `json:"acceleration_score"`
	ActiveForeclosure     bool     `json:"active_foreclosure"`
	ForeclosureMitigation bool     `json:"foreclosure_mitigation"`
	TotalTolledDays       int      `json:"total_tolled_days"`
	StatutoryYears        int      `json:"statutory_years"`
	TotalScore            int      `json:"total_score"`
}

// Value implements driver.Valuer.
func (f RiskFactors) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner.
func (f *RiskFactors) Scan(src interface{}) error {
	if src == nil {
		*f = RiskFactors{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("risk factors: unexpected column type %T", src)
	}
	return json.Unmarshal(raw, f)
}

// AlertCandidate is the projection used for expiration alerting: the loan,
// its jurisdiction's region code and the remaining clock.
type AlertCandidate struct {
	LoanID              string `db:"loan_id" json:"loan_id"`
	StateCode           string `db:"state_code" json:"state_code"`
	DaysUntilExpiration int    `db:"days_until_expiration" json:"days_until_expiration"`
}

// SOLCalculation is the engine's persisted output: exactly one live row per
// loan, fully replaced by each recalculation.
type SOLCalculation struct {
	LoanID              string           `db:"loan_id" json:"loan_id"`
	JurisdictionID      string           `db:"jurisdiction_id" json:"jurisdiction_id"`
	TriggerEvent        TriggerEventType `db:"trigger_event" json:"trigger_event"`
	TriggerDate         time.Time        `db:"trigger_date" json:"trigger_date"`
	IsFutureTrigger     bool             `db:"is_future_trigger" json:"is_future_trigger"`
	BaseExpirationDate  time.Time        `db:"base_expiration_date" json:"base_expiration_date"`
	TollingEvents       TollingEventList `db:"tolling_events" json:"tolling_events"`
	TotalTolledDays     int              `db:"total_tolled_days" json:"total_tolled_days"`
	AdjustedExpiration  time.Time        `db:"adjusted_expiration_date" json:"adjusted_expiration_date"`
	DaysUntilExpiration int              `db:"days_until_expiration" json:"days_until_expiration"`
	IsExpired           bool             `db:"is_expired" json:"is_expired"`
	RiskScore           int              `db:"risk_score" json:"risk_score"`
	RiskLevel           RiskLevel        `db:"risk_level" json:"risk_level"`
	RiskFactors         RiskFactors      `db:"risk_factors" json:"risk_factors"`
	CalculatedAt        time.Time        `db:"calculated_at" json:"calculated_at"`
}
