package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nplvision/sol-engine/internal/dto"
	"github.com/nplvision/sol-engine/internal/models"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

type jurisdictionStoreMock struct {
	rules       map[string]*models.JurisdictionRule
	invalidated []string
}

func (m *jurisdictionStoreMock) GetByState(ctx context.Context, stateCode string) (*models.JurisdictionRule, error) {
	if rule, ok := m.rules[stateCode]; ok {
		return rule, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnknownJurisdiction, "no statute rule for jurisdiction "+stateCode)
}

func (m *jurisdictionStoreMock) Invalidate(ctx context.Context, stateCode string) error {
	m.invalidated = append(m.invalidated, stateCode)
	return nil
}

type jurisdictionAdminMock struct {
	upserted *models.JurisdictionRule
	list     []models.JurisdictionRule
	storedID string
}

func (m *jurisdictionAdminMock) List(ctx context.Context) ([]models.JurisdictionRule, error) {
	return m.list, nil
}

func (m *jurisdictionAdminMock) Upsert(ctx context.Context, rule *models.JurisdictionRule) error {
	if m.storedID != "" {
		rule.ID = m.storedID
	}
	m.upserted = rule
	return nil
}

func TestJurisdictionHandlerGetUppercasesState(t *testing.T) {
	six := 6
	store := &jurisdictionStoreMock{rules: map[string]*models.JurisdictionRule{
		"NY": {ID: "jur-1", StateCode: "NY", NoteYears: &six},
	}}
	h := NewJurisdictionHandler(store, &jurisdictionAdminMock{})

	c, w := newSOLHandlerContext(t, http.MethodGet, "/sol/jurisdictions/ny", nil)
	c.Params = gin.Params{{Key: "state", Value: "ny"}}

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state_code":"NY"`)
}

func TestJurisdictionHandlerGetUnknown(t *testing.T) {
	h := NewJurisdictionHandler(&jurisdictionStoreMock{}, &jurisdictionAdminMock{})

	c, w := newSOLHandlerContext(t, http.MethodGet, "/sol/jurisdictions/ZZ", nil)
	c.Params = gin.Params{{Key: "state", Value: "ZZ"}}

	h.Get(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestJurisdictionHandlerUpsertInvalidatesCache(t *testing.T) {
	store := &jurisdictionStoreMock{}
	admin := &jurisdictionAdminMock{}
	h := NewJurisdictionHandler(store, admin)

	six := 6
	c, w := newSOLHandlerContext(t, http.MethodPut, "/sol/jurisdictions/ny", dto.JurisdictionUpsertRequest{
		RiskTier:      "MEDIUM",
		NoteYears:     &six,
		TriggerEvents: []string{"last_payment", "default"},
	})
	c.Params = gin.Params{{Key: "state", Value: "ny"}}

	h.Upsert(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, admin.upserted)
	assert.Equal(t, "NY", admin.upserted.StateCode)
	assert.Equal(t, models.RiskTierMedium, admin.upserted.RiskTier)
	assert.Equal(t, []string{"NY"}, store.invalidated)
}

func TestJurisdictionHandlerUpsertEchoesStoredID(t *testing.T) {
	store := &jurisdictionStoreMock{}
	admin := &jurisdictionAdminMock{storedID: "jur-stored"}
	h := NewJurisdictionHandler(store, admin)

	six := 6
	c, w := newSOLHandlerContext(t, http.MethodPut, "/sol/jurisdictions/ny", dto.JurisdictionUpsertRequest{
		RiskTier:      "MEDIUM",
		NoteYears:     &six,
		TriggerEvents: []string{"last_payment"},
	})
	c.Params = gin.Params{{Key: "state", Value: "ny"}}

	h.Upsert(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"jur-stored"`)
}

func TestJurisdictionHandlerUpsertRequiresStatutoryPeriod(t *testing.T) {
	admin := &jurisdictionAdminMock{}
	h := NewJurisdictionHandler(&jurisdictionStoreMock{}, admin)

	c, w := newSOLHandlerContext(t, http.MethodPut, "/sol/jurisdictions/ny", dto.JurisdictionUpsertRequest{
		RiskTier:      "LOW",
		TriggerEvents: []string{"default"},
	})
	c.Params = gin.Params{{Key: "state", Value: "ny"}}

	h.Upsert(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, admin.upserted)
}

func TestJurisdictionHandlerUpsertRejectsUnknownTrigger(t *testing.T) {
	admin := &jurisdictionAdminMock{}
	h := NewJurisdictionHandler(&jurisdictionStoreMock{}, admin)

	six := 6
	c, w := newSOLHandlerContext(t, http.MethodPut, "/sol/jurisdictions/ny", dto.JurisdictionUpsertRequest{
		RiskTier:      "MEDIUM",
		NoteYears:     &six,
		TriggerEvents: []string{"quantum_default"},
	})
	c.Params = gin.Params{{Key: "state", Value: "ny"}}

	h.Upsert(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, admin.upserted)
}

func TestJurisdictionHandlerList(t *testing.T) {
	admin := &jurisdictionAdminMock{list: []models.JurisdictionRule{
		{ID: "jur-1", StateCode: "FL"},
		{ID: "jur-2", StateCode: "NY"},
	}}
	h := NewJurisdictionHandler(&jurisdictionStoreMock{}, admin)

	c, w := newSOLHandlerContext(t, http.MethodGet, "/sol/jurisdictions", nil)

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"FL"`)
	assert.Contains(t, w.Body.String(), `"NY"`)
}
