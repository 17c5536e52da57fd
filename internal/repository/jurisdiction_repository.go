package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nplvision/sol-engine/internal/models"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

const jurisdictionColumns = `id, state_code, risk_tier, lien_years, note_years, foreclosure_years, deficiency_years,
trigger_events, tolling_provisions, lien_extinguished, foreclosure_barred, updated_at`

// JurisdictionRepository reads and corrects statute rule reference data.
type JurisdictionRepository struct {
	db *sqlx.DB
}

// NewJurisdictionRepository constructs the repository.
func NewJurisdictionRepository(db *sqlx.DB) *JurisdictionRepository {
	return &JurisdictionRepository{db: db}
}

// GetByState fetches the rule for a state code.
func (r *JurisdictionRepository) GetByState(ctx context.Context, stateCode string) (*models.JurisdictionRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM sol_jurisdictions WHERE state_code = $1`, jurisdictionColumns)
	var rule models.JurisdictionRule
	if err := r.db.GetContext(ctx, &rule, query, stateCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownJurisdiction, fmt.Sprintf("no statute rule for jurisdiction %s", stateCode))
		}
		return nil, fmt.Errorf("get jurisdiction %s: %w", stateCode, err)
	}
	return &rule, nil
}

// List returns every jurisdiction rule ordered by state code.
func (r *JurisdictionRepository) List(ctx context.Context) ([]models.JurisdictionRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM sol_jurisdictions ORDER BY state_code ASC`, jurisdictionColumns)
	var rules []models.JurisdictionRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list jurisdictions: %w", err)
	}
	return rules, nil
}

// Upsert applies an administrative data correction keyed by state code.
func (r *JurisdictionRepository) Upsert(ctx context.Context, rule *models.JurisdictionRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO sol_jurisdictions (id, state_code, risk_tier, lien_years, note_years, foreclosure_years,
deficiency_years, trigger_events, tolling_provisions, lien_extinguished, foreclosure_barred, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (state_code)
DO UPDATE SET risk_tier = EXCLUDED.risk_tier, lien_years = EXCLUDED.lien_years, note_years = EXCLUDED.note_years,
              foreclosure_years = EXCLUDED.foreclosure_years, deficiency_years = EXCLUDED.deficiency_years,
              trigger_events = EXCLUDED.trigger_events, tolling_provisions = EXCLUDED.tolling_provisions,
              lien_extinguished = EXCLUDED.lien_extinguished, foreclosure_barred = EXCLUDED.foreclosure_barred,
              updated_at = EXCLUDED.updated_at
RETURNING id`
	// On conflict the stored row keeps its original id.
	if err := r.db.GetContext(ctx, &rule.ID, query,
		rule.ID, rule.StateCode, rule.RiskTier, rule.LienYears, rule.NoteYears, rule.ForeclosureYears,
		rule.DeficiencyYears, rule.TriggerEvents, rule.TollingProvisions, rule.LienExtinguished,
		rule.ForeclosureBarred, rule.UpdatedAt); err != nil {
		return fmt.Errorf("upsert jurisdiction %s: %w", rule.StateCode, err)
	}
	return nil
}
