package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	"github.com/sadh911122-sudo/Dark-Triad/internal/services"
)

func newResultHandlerForTest(results *services.MockResultStore, queue *services.MockResultQueue) *ResultHandler {
	if queue == nil {
		queue = &services.MockResultQueue{}
	}
	participantSvc := services.NewParticipantService(&services.MockParticipantStore{}, &services.MockEmailService{}, "admin", newTestLogger(), newTestAuditLogger())
	svc := services.NewResultService(results, queue, participantSvc, &services.MockEmailService{}, newTestLogger())
	return NewResultHandler(svc)
}

const submitBody = `{
	"participantCode": "LDT-0001",
	"participantName": "Kim",
	"narcissism": 3.2,
	"machiavellianism": 2.8,
	"psychopathy": 1.9
}`

func TestSubmitResult_Success(t *testing.T) {
	handler := newResultHandlerForTest(&services.MockResultStore{}, nil)

	req := httptest.NewRequest("POST", "/results", strings.NewReader(submitBody))
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}

func TestSubmitResult_PrimaryDownQueuesLocally(t *testing.T) {
	results := &services.MockResultStore{
		SaveFunc: func(ctx context.Context, r *models.DiagnosisResult) (*models.DiagnosisResult, error) {
			return nil, errors.New("remote unreachable")
		},
	}
	queue := &services.MockResultQueue{}

	handler := newResultHandlerForTest(results, queue)

	req := httptest.NewRequest("POST", "/results", strings.NewReader(submitBody))
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, req)

	require.Equal(t, http.StatusBadGateway, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["queued"], "client must learn the submission was not lost")
	assert.Equal(t, 1, queue.Len())
}

func TestSubmitResult_Validation(t *testing.T) {
	handler := newResultHandlerForTest(&services.MockResultStore{}, nil)

	payloads := []string{
		`{}`,
		`{"participantCode":"LDT-0001"}`,
		`{"participantCode":"LDT-0001","participantName":"Kim","narcissism":9}`,
	}
	for _, payload := range payloads {
		req := httptest.NewRequest("POST", "/results", strings.NewReader(payload))
		recorder := httptest.NewRecorder()

		handler.Submit(recorder, req)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "payload %q", payload)
	}
}

func TestListResults(t *testing.T) {
	results := &services.MockResultStore{
		ListFunc: func(ctx context.Context) ([]*models.DiagnosisResult, error) {
			return []*models.DiagnosisResult{{ID: "r-1"}}, nil
		},
	}

	handler := newResultHandlerForTest(results, nil)

	req := httptest.NewRequest("GET", "/results", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Success bool                      `json:"success"`
		Results []*models.DiagnosisResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body.Results, 1)
}
