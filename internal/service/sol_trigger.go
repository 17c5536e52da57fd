package service

import (
	"time"

	"github.com/nplvision/sol-engine/internal/models"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

// TriggerResult identifies the event that starts (or will start) the SOL
// clock for a loan.
type TriggerResult struct {
	EventType models.TriggerEventType
	Date      time.Time
	IsFuture  bool
}

// ResolveTrigger selects the governing trigger date for a loan under a
// jurisdiction's recognized event types.
//
// Among past-dated candidates the earliest wins: the earliest qualifying
// event is the one that legally started the limitations clock, and using a
// later event would understate risk. When only future-dated candidates
// exist (realistically a not-yet-reached maturity), the earliest of those
// is returned with IsFuture set; the clock has not started and the loan
// cannot be expired. With no candidates at all the loan is skipped for the
// cycle via ErrNoValidTrigger.
func ResolveTrigger(input *models.LoanSOLInput, rule *models.JurisdictionRule, today time.Time) (*TriggerResult, error) {
	var earliestPast, earliestFuture *TriggerResult

	for _, raw := range rule.TriggerEvents {
		event := models.TriggerEventType(raw)
		date := input.EventDate(event)
		if date == nil {
			continue
		}

		candidate := &TriggerResult{EventType: event, Date: *date}
		if !date.After(today) {
			if earliestPast == nil || candidate.Date.Before(earliestPast.Date) {
				earliestPast = candidate
			}
		} else {
			if earliestFuture == nil || candidate.Date.Before(earliestFuture.Date) {
				earliestFuture = candidate
			}
		}
	}

	if earliestPast != nil {
		return earliestPast, nil
	}
	if earliestFuture != nil {
		earliestFuture.IsFuture = true
		return earliestFuture, nil
	}
	return nil, appErrors.ErrNoValidTrigger
}
