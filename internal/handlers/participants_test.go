package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	"github.com/sadh911122-sudo/Dark-Triad/internal/services"
)

func newParticipantHandlerForTest(store *services.MockParticipantStore) *ParticipantHandler {
	svc := services.NewParticipantService(store, &services.MockEmailService{}, "admin", newTestLogger(), newTestAuditLogger())
	return NewParticipantHandler(svc)
}

func TestCreateParticipant(t *testing.T) {
	var saved *models.Participant
	store := &services.MockParticipantStore{
		SaveFunc: func(ctx context.Context, p *models.Participant) (*models.Participant, error) {
			saved = p
			return p, nil
		},
	}

	handler := newParticipantHandlerForTest(store)

	body := `{"name":"Kim","email":"kim@example.com","organization":"Acme","code":"LDT-0001"}`
	req := httptest.NewRequest("POST", "/participants", strings.NewReader(body))
	req = withSession(req, &models.Session{Token: "jti-1", AdminID: "root"})
	recorder := httptest.NewRecorder()

	handler.Create(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.NotNil(t, saved)
	assert.Equal(t, "LDT-0001", saved.Code)
	assert.Equal(t, "root", saved.AdminID, "creator comes from the session")
	assert.Equal(t, models.ParticipantPending, saved.Status)
}

func TestCreateParticipant_Validation(t *testing.T) {
	handler := newParticipantHandlerForTest(&services.MockParticipantStore{})

	payloads := []string{
		`{}`,
		`{"name":"Kim"}`,
		`{"name":"Kim","email":"not-an-email"}`,
	}
	for _, payload := range payloads {
		req := httptest.NewRequest("POST", "/participants", strings.NewReader(payload))
		recorder := httptest.NewRecorder()

		handler.Create(recorder, req)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "payload %q", payload)
	}
}

func TestListParticipants_FiltersDeleted(t *testing.T) {
	store := &services.MockParticipantStore{
		ListFunc: func(ctx context.Context) ([]*models.Participant, error) {
			return []*models.Participant{
				{Code: "LDT-0001", Status: models.ParticipantPending},
				{Code: "LDT-0002", Status: models.ParticipantDeleted},
			}, nil
		},
	}

	handler := newParticipantHandlerForTest(store)

	req := httptest.NewRequest("GET", "/participants", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Success      bool                  `json:"success"`
		Participants []*models.Participant `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Participants, 1)
	assert.Equal(t, "LDT-0001", body.Participants[0].Code)
}

func chiRequest(method, target, body, code string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("code", code)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateParticipantStatus(t *testing.T) {
	var gotCode, gotStatus string
	store := &services.MockParticipantStore{
		UpdateStatusFunc: func(ctx context.Context, code, status string, completedAt *time.Time) error {
			gotCode = code
			gotStatus = status
			return nil
		},
	}

	handler := newParticipantHandlerForTest(store)

	req := chiRequest("PATCH", "/participants/LDT-0001/status", `{"status":"completed"}`, "LDT-0001")
	recorder := httptest.NewRecorder()

	handler.UpdateStatus(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "LDT-0001", gotCode)
	assert.Equal(t, models.ParticipantCompleted, gotStatus)
}

func TestUpdateParticipantStatus_UnknownCodeIs204(t *testing.T) {
	store := &services.MockParticipantStore{
		UpdateStatusFunc: func(ctx context.Context, code, status string, completedAt *time.Time) error {
			return models.ErrNotFound
		},
	}

	handler := newParticipantHandlerForTest(store)

	req := chiRequest("PATCH", "/participants/LDT-9999/status", `{"status":"completed"}`, "LDT-9999")
	recorder := httptest.NewRecorder()

	handler.UpdateStatus(recorder, req)
	assert.Equal(t, http.StatusNoContent, recorder.Code, "unknown code is a logged no-op")
}

func TestUpdateParticipantStatus_RejectsBadStatus(t *testing.T) {
	handler := newParticipantHandlerForTest(&services.MockParticipantStore{})

	req := chiRequest("PATCH", "/participants/LDT-0001/status", `{"status":"archived"}`, "LDT-0001")
	recorder := httptest.NewRecorder()

	handler.UpdateStatus(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDeleteParticipant(t *testing.T) {
	var gotStatus string
	store := &services.MockParticipantStore{
		UpdateStatusFunc: func(ctx context.Context, code, status string, completedAt *time.Time) error {
			gotStatus = status
			return nil
		},
	}

	handler := newParticipantHandlerForTest(store)

	req := chiRequest("DELETE", "/participants/LDT-0001", "", "LDT-0001")
	req = withSession(req, &models.Session{AdminID: "admin"})
	recorder := httptest.NewRecorder()

	handler.Delete(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, models.ParticipantDeleted, gotStatus)
}
