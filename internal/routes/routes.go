package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sadh911122-sudo/Dark-Triad/internal/handlers"
	"github.com/sadh911122-sudo/Dark-Triad/internal/middleware"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	checker middleware.SessionChecker,
	authHandler *handlers.AuthHandler,
	participantHandler *handlers.ParticipantHandler,
	resultHandler *handlers.ResultHandler,
	storeHandler *handlers.StoreHandler,
	healthHandler *handlers.HealthHandler,
) {
	// Public routes - no authentication required
	router.Post("/auth/login", authHandler.Login)
	router.Post("/results", resultHandler.Submit) // survey submission
	router.Get("/health", healthHandler.Health)

	// Protected routes - live session required
	router.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(checker))

		// Session management routes never count as activity: the
		// heartbeat is polled by idle tabs and must observe the
		// deadlines rather than reset them. Extend resets them
		// explicitly through the service.
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/session", authHandler.Session)
		r.Post("/auth/extend", authHandler.Extend)

		// Real admin actions reset the inactivity deadlines.
		r.Group(func(r chi.Router) {
			r.Use(middleware.TrackActivity(checker))

			r.Get("/participants", participantHandler.List)
			r.Post("/participants", participantHandler.Create)
			r.Patch("/participants/{code}/status", participantHandler.UpdateStatus)
			r.Delete("/participants/{code}", participantHandler.Delete)

			r.Get("/results", resultHandler.List)

			// Super-admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(checker, models.RoleSuperAdmin))
				r.Post("/store/test", storeHandler.Test)
			})
		})
	})
}
