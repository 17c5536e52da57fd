package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nplvision/sol-engine/internal/dto"
	"github.com/nplvision/sol-engine/internal/models"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
	"github.com/nplvision/sol-engine/pkg/response"
)

type solEventServiceMock struct {
	handled   []string
	recalc    *models.SOLCalculation
	recalcErr error
}

func (m *solEventServiceMock) HandleEvent(loanID string, eventType models.LoanEventType, eventDate time.Time, metadata map[string]string) {
	m.handled = append(m.handled, loanID)
}

func (m *solEventServiceMock) Recalculate(ctx context.Context, loanID string, eventType models.LoanEventType, eventDate time.Time) (*models.SOLCalculation, error) {
	return m.recalc, m.recalcErr
}

type calculationReaderMock struct {
	calc *models.SOLCalculation
	err  error
}

func (m *calculationReaderMock) GetByLoanID(ctx context.Context, loanID string) (*models.SOLCalculation, error) {
	return m.calc, m.err
}

type auditReaderMock struct {
	entries []models.SOLAuditEntry
	limit   int
}

func (m *auditReaderMock) ListByLoan(ctx context.Context, loanID string, limit int) ([]models.SOLAuditEntry, error) {
	m.limit = limit
	return m.entries, nil
}

type alertCheckerMock struct {
	alerts []string
	err    error
}

func (m *alertCheckerMock) CheckExpirationAlerts(ctx context.Context) ([]string, error) {
	return m.alerts, m.err
}

func newSOLHandlerContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestSOLHandlerHandleEventAccepted(t *testing.T) {
	events := &solEventServiceMock{}
	h := NewSOLHandler(events, &calculationReaderMock{}, &auditReaderMock{}, &alertCheckerMock{})

	c, w := newSOLHandlerContext(t, http.MethodPost, "/sol/loans/loan-1/events", dto.LoanEventRequest{
		EventType: "payment_received",
		EventDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	c.Params = gin.Params{{Key: "id", Value: "loan-1"}}

	h.HandleEvent(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"loan-1"}, events.handled)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotNil(t, envelope.Data)
}

func TestSOLHandlerHandleEventRejectsUnknownType(t *testing.T) {
	events := &solEventServiceMock{}
	h := NewSOLHandler(events, &calculationReaderMock{}, &auditReaderMock{}, &alertCheckerMock{})

	c, w := newSOLHandlerContext(t, http.MethodPost, "/sol/loans/loan-1/events", map[string]interface{}{
		"event_type": "loan_sold",
		"event_date": "2024-01-01T00:00:00Z",
	})
	c.Params = gin.Params{{Key: "id", Value: "loan-1"}}

	h.HandleEvent(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, events.handled)
}

func TestSOLHandlerRecalculate(t *testing.T) {
	events := &solEventServiceMock{recalc: &models.SOLCalculation{LoanID: "loan-1", RiskScore: 55, RiskLevel: models.RiskLevelMedium}}
	h := NewSOLHandler(events, &calculationReaderMock{}, &auditReaderMock{}, &alertCheckerMock{})

	c, w := newSOLHandlerContext(t, http.MethodPost, "/sol/loans/loan-1/recalculate", nil)
	c.Params = gin.Params{{Key: "id", Value: "loan-1"}}

	h.Recalculate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"loan_id":"loan-1"`)
}

func TestSOLHandlerRecalculateNoTrigger(t *testing.T) {
	h := NewSOLHandler(&solEventServiceMock{}, &calculationReaderMock{}, &auditReaderMock{}, &alertCheckerMock{})

	c, w := newSOLHandlerContext(t, http.MethodPost, "/sol/loans/loan-1/recalculate", nil)
	c.Params = gin.Params{{Key: "id", Value: "loan-1"}}

	h.Recalculate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "no_valid_trigger", envelope.Meta["reason"])
}

func TestSOLHandlerRecalculateUnknownJurisdiction(t *testing.T) {
	events := &solEventServiceMock{recalcErr: appErrors.Clone(appErrors.ErrUnknownJurisdiction, "no statute rule for jurisdiction ZZ")}
	h := NewSOLHandler(events, &calculationReaderMock{}, &auditReaderMock{}, &alertCheckerMock{})

	c, w := newSOLHandlerContext(t, http.MethodPost, "/sol/loans/loan-1/recalculate", nil)
	c.Params = gin.Params{{Key: "id", Value: "loan-1"}}

	h.Recalculate(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_JURISDICTION")
}

func TestSOLHandlerGetCalculationNotFound(t *testing.T) {
	calcs := &calculationReaderMock{err: appErrors.Clone(appErrors.ErrNotFound, "no SOL calculation for loan loan-9")}
	h := NewSOLHandler(&solEventServiceMock{}, calcs, &auditReaderMock{}, &alertCheckerMock{})

	c, w := newSOLHandlerContext(t, http.MethodGet, "/sol/loans/loan-9/calculation", nil)
	c.Params = gin.Params{{Key: "id", Value: "loan-9"}}

	h.GetCalculation(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSOLHandlerGetAuditTrailDefaultLimit(t *testing.T) {
	audits := &auditReaderMock{entries: []models.SOLAuditEntry{{ID: "a1", LoanID: "loan-1"}}}
	h := NewSOLHandler(&solEventServiceMock{}, &calculationReaderMock{}, audits, &alertCheckerMock{})

	c, w := newSOLHandlerContext(t, http.MethodGet, "/sol/loans/loan-1/audit", nil)
	c.Params = gin.Params{{Key: "id", Value: "loan-1"}}

	h.GetAuditTrail(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, audits.limit)
}

func TestSOLHandlerGetAlerts(t *testing.T) {
	alerts := &alertCheckerMock{alerts: []string{"CRITICAL: Loan loan-1 (NY) expires in 10 days"}}
	h := NewSOLHandler(&solEventServiceMock{}, &calculationReaderMock{}, &auditReaderMock{}, alerts)

	c, w := newSOLHandlerContext(t, http.MethodGet, "/sol/alerts", nil)

	h.GetAlerts(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}
