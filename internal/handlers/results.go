package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	"github.com/sadh911122-sudo/Dark-Triad/internal/services"
	pkghttp "github.com/sadh911122-sudo/Dark-Triad/pkg/http"
)

// ResultHandler handles survey submission and result retrieval
type ResultHandler struct {
	service *services.ResultService
}

func NewResultHandler(service *services.ResultService) *ResultHandler {
	return &ResultHandler{service: service}
}

// SubmitResultRequest is the public survey submission body
type SubmitResultRequest struct {
	ParticipantCode  string          `json:"participantCode" validate:"required,max=20"`
	ParticipantName  string          `json:"participantName" validate:"required,max=100"`
	ParticipantEmail string          `json:"participantEmail" validate:"omitempty,email"`
	Narcissism       float64         `json:"narcissism" validate:"gte=0,lte=5"`
	Machiavellianism float64         `json:"machiavellianism" validate:"gte=0,lte=5"`
	Psychopathy      float64         `json:"psychopathy" validate:"gte=0,lte=5"`
	AvgScore         float64         `json:"avgScore" validate:"gte=0,lte=5"`
	Answers          json.RawMessage `json:"answers"`
	Questions        json.RawMessage `json:"questions"`
}

// Submit accepts a completed survey. When the primary store is down
// the record lands in the local fallback queue and the response is a
// 502 that still tells the client the submission was not lost.
func (h *ResultHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitResultRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	outcome, err := h.service.Save(r.Context(), services.SaveResultInput{
		ParticipantCode:  req.ParticipantCode,
		ParticipantName:  req.ParticipantName,
		ParticipantEmail: req.ParticipantEmail,
		Scores: models.TraitScores{
			Narcissism:       req.Narcissism,
			Machiavellianism: req.Machiavellianism,
			Psychopathy:      req.Psychopathy,
		},
		AvgScore:  req.AvgScore,
		Answers:   req.Answers,
		Questions: req.Questions,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if outcome.Queued {
		pkghttp.WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"queued":  true,
			"message": "Primary store unavailable; result saved locally for retry",
			"result":  outcome.Result,
		})
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"result":  outcome.Result,
	})
}

// List returns every diagnosis result
func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}
