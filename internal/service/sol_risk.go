package service

import (
	"github.com/nplvision/sol-engine/internal/models"
)

// foreclosureMitigationFactor discounts marginal SOL risk once a
// foreclosure action has been started: the limitations requirement is
// already satisfied for that action.
const foreclosureMitigationFactor = 0.3

// ScoreRisk derives the bounded 0-100 risk score and its structured
// explanation from a resolved calculation.
//
// The score is additive across independent buckets: time remaining on the
// clock, the jurisdiction's qualitative tier, lien extinguishment on
// expiration, and an acceleration-triggered clock. Active foreclosure
// scales the time and jurisdiction buckets down; it softens but does not
// erase lien-extinguishment exposure, because deficiency risk survives a
// completed foreclosure.
func ScoreRisk(rule *models.JurisdictionRule, trigger *TriggerResult, daysUntil int, isExpired bool, activeForeclosure bool) (int, models.RiskFactors) {
	mitigation := 1.0
	if activeForeclosure {
		mitigation = foreclosureMitigationFactor
	}

	timeScore := timeBucketScore(daysUntil, trigger.IsFuture, mitigation)

	jurisdictionScore := 0
	switch rule.RiskTier {
	case models.RiskTierHigh:
		jurisdictionScore = scaled(30, mitigation)
	case models.RiskTierMedium:
		jurisdictionScore = scaled(15, mitigation)
	}

	lienScore := 0
	if rule.LienExtinguished {
		if activeForeclosure {
			lienScore = 10
		} else {
			lienScore = 20
		}
	}

	accelerationScore := 0
	accelerationTriggered := trigger.EventType == models.TriggerAcceleration
	if accelerationTriggered && !activeForeclosure {
		accelerationScore = 10
	}

	total := timeScore + jurisdictionScore + lienScore + accelerationScore
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	factors := models.RiskFactors{
		Version:               models.RiskFactorsVersion,
		DaysUntilExpiration:   daysUntil,
		IsExpired:             isExpired,
		IsFutureTrigger:       trigger.IsFuture,
		TimeScore:             timeScore,
		JurisdictionTier:      rule.RiskTier,
		JurisdictionScore:     jurisdictionScore,
		LienExtinguished:      rule.LienExtinguished,
		LienScore:             lienScore,
		AccelerationTriggered: accelerationTriggered,
		AccelerationScore:     accelerationScore,
		ActiveForeclosure:     activeForeclosure,
		ForeclosureMitigation: activeForeclosure,
		TotalScore:            total,
	}

	return total, factors
}

// timeBucketScore grades how close the clock is to running out. An already
// run-out clock carries the full 40 points unless a foreclosure action was
// filed in time, in which case the accrued risk is discounted rather than
// erased.
func timeBucketScore(daysUntil int, isFutureTrigger bool, mitigation float64) int {
	switch {
	case daysUntil < 0 && !isFutureTrigger:
		return scaled(40, mitigation)
	case daysUntil < 365:
		return scaled(35, mitigation)
	case daysUntil < 730:
		return scaled(25, mitigation)
	case daysUntil < 1095:
		return scaled(15, mitigation)
	case daysUntil < 1825:
		return scaled(5, mitigation)
	default:
		return 0
	}
}

func scaled(points int, factor float64) int {
	v := int(float64(points) * factor)
	if v < 0 {
		return 0
	}
	return v
}
