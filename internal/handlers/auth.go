package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sadh911122-sudo/Dark-Triad/internal/middleware"
	"github.com/sadh911122-sudo/Dark-Triad/internal/services"
	pkghttp "github.com/sadh911122-sudo/Dark-Triad/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, id, password, ipAddress, userAgent string) (*services.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Heartbeat(ctx context.Context, token string) (*services.HeartbeatResponse, error)
	Extend(ctx context.Context, token string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service        AuthServiceInterface
	trustedProxies []string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, trustedProxies []string) *AuthHandler {
	return &AuthHandler{
		service:        service,
		trustedProxies: trustedProxies,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles admin login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.ID = strings.TrimSpace(req.ID)

	ipAddress := pkghttp.ExtractClientIP(r, h.trustedProxies)
	userAgent := r.UserAgent()

	resp, err := h.service.Login(r.Context(), req.ID, req.Password, ipAddress, userAgent)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   resp.Token,
		"session": resp.Session,
	})
}

// Logout ends the authenticated session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "no active session")
		return
	}

	if err := h.service.Logout(r.Context(), session.Token); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Session is the heartbeat endpoint: session projection plus the
// countdown state driving the client's warning prompt.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "no active session")
		return
	}

	hb, err := h.service.Heartbeat(r.Context(), session.Token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"session":          hb.Session,
		"remainingSeconds": hb.RemainingSeconds,
		"warned":           hb.Warned,
	})
}

// Extend accepts the inactivity warning and restarts both deadlines
func (h *AuthHandler) Extend(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "no active session")
		return
	}

	if err := h.service.Extend(r.Context(), session.Token); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
