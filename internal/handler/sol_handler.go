package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nplvision/sol-engine/internal/dto"
	"github.com/nplvision/sol-engine/internal/models"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
	"github.com/nplvision/sol-engine/pkg/response"
)

type solEventService interface {
	HandleEvent(loanID string, eventType models.LoanEventType, eventDate time.Time, metadata map[string]string)
	Recalculate(ctx context.Context, loanID string, eventType models.LoanEventType, eventDate time.Time) (*models.SOLCalculation, error)
}

type calculationReader interface {
	GetByLoanID(ctx context.Context, loanID string) (*models.SOLCalculation, error)
}

type auditReader interface {
	ListByLoan(ctx context.Context, loanID string, limit int) ([]models.SOLAuditEntry, error)
}

type alertChecker interface {
	CheckExpirationAlerts(ctx context.Context) ([]string, error)
}

// SOLHandler exposes the SOL engine's per-loan endpoints.
type SOLHandler struct {
	events solEventService
	calcs  calculationReader
	audits auditReader
	alerts alertChecker
}

// NewSOLHandler builds a new handler.
func NewSOLHandler(events solEventService, calcs calculationReader, audits auditReader, alerts alertChecker) *SOLHandler {
	return &SOLHandler{events: events, calcs: calcs, audits: audits, alerts: alerts}
}

// HandleEvent godoc
// @Summary Notify the engine of a loan lifecycle event
// @Tags SOL
// @Accept json
// @Produce json
// @Param id path string true "Loan ID"
// @Param payload body dto.LoanEventRequest true "Event payload"
// @Success 202 {object} response.Envelope
// @Router /sol/loans/{id}/events [post]
func (h *SOLHandler) HandleEvent(c *gin.Context) {
	var req dto.LoanEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	loanID := c.Param("id")
	h.events.HandleEvent(loanID, models.LoanEventType(req.EventType), req.EventDate, req.Metadata)

	response.Accepted(c, dto.EventAccepted{LoanID: loanID, EventType: req.EventType, Queued: true})
}

// Recalculate godoc
// @Summary Synchronously recalculate a loan's SOL position
// @Tags SOL
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Envelope
// @Router /sol/loans/{id}/recalculate [post]
func (h *SOLHandler) Recalculate(c *gin.Context) {
	loanID := c.Param("id")
	calc, err := h.events.Recalculate(c.Request.Context(), loanID, models.LoanEventManualUpdate, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	if calc == nil {
		// No recognized trigger yet; a legitimate state, not an error.
		response.JSON(c, http.StatusOK, nil, nil, map[string]interface{}{"reason": "no_valid_trigger"})
		return
	}
	response.JSON(c, http.StatusOK, calc, nil)
}

// GetCalculation godoc
// @Summary Get the current SOL calculation for a loan
// @Tags SOL
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Envelope
// @Router /sol/loans/{id}/calculation [get]
func (h *SOLHandler) GetCalculation(c *gin.Context) {
	calc, err := h.calcs.GetByLoanID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calc, nil)
}

// GetAuditTrail godoc
// @Summary List a loan's SOL audit history
// @Tags SOL
// @Produce json
// @Param id path string true "Loan ID"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /sol/loans/{id}/audit [get]
func (h *SOLHandler) GetAuditTrail(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.audits.ListByLoan(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// GetAlerts godoc
// @Summary List current expiration alerts
// @Tags SOL
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sol/alerts [get]
func (h *SOLHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.alerts.CheckExpirationAlerts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AlertsResponse{Alerts: alerts, Count: len(alerts)}, nil)
}
