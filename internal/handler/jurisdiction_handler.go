package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nplvision/sol-engine/internal/dto"
	"github.com/nplvision/sol-engine/internal/models"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
	"github.com/nplvision/sol-engine/pkg/response"
)

type jurisdictionStore interface {
	GetByState(ctx context.Context, stateCode string) (*models.JurisdictionRule, error)
	Invalidate(ctx context.Context, stateCode string) error
}

type jurisdictionAdmin interface {
	List(ctx context.Context) ([]models.JurisdictionRule, error)
	Upsert(ctx context.Context, rule *models.JurisdictionRule) error
}

// JurisdictionHandler exposes statute rule reference data and the
// administrative correction path.
type JurisdictionHandler struct {
	store jurisdictionStore
	admin jurisdictionAdmin
}

// NewJurisdictionHandler builds a new handler.
func NewJurisdictionHandler(store jurisdictionStore, admin jurisdictionAdmin) *JurisdictionHandler {
	return &JurisdictionHandler{store: store, admin: admin}
}

// Get godoc
// @Summary Get a jurisdiction's statute rule
// @Tags Jurisdictions
// @Produce json
// @Param state path string true "State code"
// @Success 200 {object} response.Envelope
// @Router /sol/jurisdictions/{state} [get]
func (h *JurisdictionHandler) Get(c *gin.Context) {
	state := strings.ToUpper(c.Param("state"))
	rule, err := h.store.GetByState(c.Request.Context(), state)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// List godoc
// @Summary List all jurisdiction statute rules
// @Tags Jurisdictions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sol/jurisdictions [get]
func (h *JurisdictionHandler) List(c *gin.Context) {
	rules, err := h.admin.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// Upsert godoc
// @Summary Apply an administrative statute rule correction
// @Tags Jurisdictions
// @Accept json
// @Produce json
// @Param state path string true "State code"
// @Param payload body dto.JurisdictionUpsertRequest true "Rule payload"
// @Success 200 {object} response.Envelope
// @Router /sol/jurisdictions/{state} [put]
func (h *JurisdictionHandler) Upsert(c *gin.Context) {
	var req dto.JurisdictionUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid jurisdiction payload"))
		return
	}

	rule := &models.JurisdictionRule{
		StateCode:         strings.ToUpper(c.Param("state")),
		RiskTier:          models.RiskTier(req.RiskTier),
		LienYears:         req.LienYears,
		NoteYears:         req.NoteYears,
		ForeclosureYears:  req.ForeclosureYears,
		DeficiencyYears:   req.DeficiencyYears,
		TriggerEvents:     req.TriggerEvents,
		TollingProvisions: req.TollingProvisions,
		LienExtinguished:  req.LienExtinguished,
		ForeclosureBarred: req.ForeclosureBarred,
	}
	if !rule.Usable() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "at least one statutory period is required"))
		return
	}

	if err := h.admin.Upsert(c.Request.Context(), rule); err != nil {
		response.Error(c, err)
		return
	}
	// Corrections must be visible to the next calculation.
	if err := h.store.Invalidate(c.Request.Context(), rule.StateCode); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rule, nil)
}
