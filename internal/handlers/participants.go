package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sadh911122-sudo/Dark-Triad/internal/middleware"
	"github.com/sadh911122-sudo/Dark-Triad/internal/services"
	pkghttp "github.com/sadh911122-sudo/Dark-Triad/pkg/http"
)

// ParticipantHandler handles participant management requests
type ParticipantHandler struct {
	service *services.ParticipantService
}

func NewParticipantHandler(service *services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{service: service}
}

// CreateParticipantRequest represents the request body for registration
type CreateParticipantRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Organization string `json:"organization" validate:"max=200"`
	Position     string `json:"position" validate:"max=100"`
	Code         string `json:"code" validate:"omitempty,max=20"`
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status      string     `json:"status" validate:"required,oneof=pending completed deleted"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Create registers a participant
func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateParticipantRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	adminID := ""
	if session := middleware.GetSessionFromContext(r); session != nil {
		adminID = session.AdminID
	}

	participant, err := h.service.Create(r.Context(), services.CreateParticipantInput{
		Name:         req.Name,
		Email:        req.Email,
		Organization: req.Organization,
		Position:     req.Position,
		Code:         req.Code,
		AdminID:      adminID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"participant": participant,
	})
}

// List returns every non-deleted participant
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	participants, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"participants": participants,
	})
}

// UpdateStatus changes a participant's status by code. An unknown code
// is deliberately a 204: the update is logged and skipped.
func (h *ParticipantHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.UpdateStatus(r.Context(), code, req.Status, req.CompletedAt); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete soft-deletes a participant
func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	adminID := ""
	if session := middleware.GetSessionFromContext(r); session != nil {
		adminID = session.AdminID
	}

	if err := h.service.Delete(r.Context(), code, adminID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
