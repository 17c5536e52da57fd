package service

import (
	"time"

	"github.com/nplvision/sol-engine/internal/models"
)

// militaryServiceTollingDays is the flat statutory minimum credited for
// servicemember (SCRA) protection, independent of any overlap computation.
const militaryServiceTollingDays = 90

// ComputeTolling returns the events that paused the SOL clock between the
// trigger date and the base expiration date, plus the total paused days.
// Only provisions the jurisdiction honors are applied. Callers skip tolling
// entirely for future triggers: a clock that has not started cannot pause.
func ComputeTolling(input *models.LoanSOLInput, rule *models.JurisdictionRule, triggerDate, baseExpiration, now time.Time) (models.TollingEventList, int) {
	var events models.TollingEventList
	total := 0

	if rule.RecognizesTolling(models.TollingBankruptcy) {
		for _, period := range input.BankruptcyPeriods {
			if !overlapsWindow(period, triggerDate, baseExpiration) {
				continue
			}

			end := now
			if period.End != nil {
				end = *period.End
			}
			days := daysBetween(period.Start, end)
			if days < 0 {
				days = 0
			}

			events = append(events, models.TollingEvent{
				Type:  models.TollingBankruptcy,
				Start: period.Start,
				End:   period.End,
				Days:  days,
			})
			total += days
		}
	}

	if input.MilitaryService && rule.RecognizesTolling(models.TollingMilitaryService) {
		events = append(events, models.TollingEvent{
			Type:  models.TollingMilitaryService,
			Start: triggerDate,
			Days:  militaryServiceTollingDays,
		})
		total += militaryServiceTollingDays
	}

	return events, total
}

// overlapsWindow reports whether a bankruptcy period intersects the
// trigger-to-expiration window. An open period (nil end) is still running
// and overlaps whenever it started before the window closed.
func overlapsWindow(period models.BankruptcyPeriod, windowStart, windowEnd time.Time) bool {
	if period.Start.After(windowEnd) {
		return false
	}
	if period.End != nil && period.End.Before(windowStart) {
		return false
	}
	return true
}

// daysBetween counts whole days from one instant to another, negative when
// to precedes from.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
