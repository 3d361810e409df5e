package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the projection of an Admin that identifies the currently
// authenticated administrator. At most one session per browser context
// is live; the row is deleted on logout, forced logout, or expiry.
type Session struct {
	Token          string // session id, also the JWT jti
	AdminID        string
	Name           string
	Email          string
	Role           string
	LoginAt        time.Time
	LastActivityAt time.Time
}

// SessionClaims are the JWT claims carried by a session token.
type SessionClaims struct {
	AdminID string `json:"admin_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}
