package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sadh911122-sudo/Dark-Triad/internal/store"
	pkghttp "github.com/sadh911122-sudo/Dark-Triad/pkg/http"
)

// StoreHandler exposes backend diagnostics
type StoreHandler struct {
	tester  store.Tester
	backend string
}

func NewStoreHandler(tester store.Tester, backend string) *StoreHandler {
	return &StoreHandler{tester: tester, backend: backend}
}

// Test runs the backend connectivity check. Super admin only; the
// remote action may be slow or rate limited by the far side.
func (h *StoreHandler) Test(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := h.tester.Test(ctx); err != nil {
		pkghttp.WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"backend": h.backend,
			"message": "Store connectivity test failed",
		})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"backend": h.backend,
	})
}

// HealthHandler is the liveness endpoint with a database ping
type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
		})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
