package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	pkghttp "github.com/sadh911122-sudo/Dark-Triad/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

// SessionContextKey is the key for storing the authenticated session in context
const SessionContextKey contextKey = "session"

// SessionChecker is the slice of the auth service the middleware needs.
type SessionChecker interface {
	CheckAuth(ctx context.Context, tokenString string) (*models.Session, error)
	RecordActivity(ctx context.Context, token string)
	HasPermission(session *models.Session, requiredRole string) bool
}

// SessionAuth authenticates the request's bearer token and puts the
// session in the request context. It does NOT count the request as
// user activity; the heartbeat poll runs through here, and a polling
// tab must never keep an idle session alive. Routes that represent
// real admin actions add TrackActivity on top.
func SessionAuth(checker SessionChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				pkghttp.WriteUnauthorized(w, "missing or malformed authorization header")
				return
			}

			session, err := checker.CheckAuth(r.Context(), tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "no active session")
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TrackActivity counts the request as user activity, resetting the
// inactivity deadlines subject to the guard's debounce. Must run after
// SessionAuth.
func TrackActivity(checker SessionChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session := GetSessionFromContext(r); session != nil {
				checker.RecordActivity(r.Context(), session.Token)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole enforces role-based access. Must run after SessionAuth.
// super_admin passes every check.
func RequireRole(checker SessionChecker, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r)
			if session == nil {
				pkghttp.WriteUnauthorized(w, "no active session")
				return
			}

			if !checker.HasPermission(session, role) {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the authenticated session from the
// request context, nil when unauthenticated.
func GetSessionFromContext(r *http.Request) *models.Session {
	session, ok := r.Context().Value(SessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
