package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// TokenManager signs and validates session tokens. A session token is
// a JWT whose jti is the session row key; validation of the signature
// alone never authenticates a request, the session row and the
// inactivity guard both have to agree. The token deliberately carries
// no exp claim: lifetime belongs to the session row and the guard, so
// continuous activity keeps a session alive indefinitely and deleting
// the row kills the token immediately.
type TokenManager struct {
	secret string
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: secret}
}

// GenerateSessionToken mints a token for the admin and returns the
// signed string together with the jti identifying the session.
func (tm *TokenManager) GenerateSessionToken(admin *models.Admin) (string, string, error) {
	jti := uuid.New().String()

	claims := &models.SessionClaims{
		AdminID: admin.ID,
		Name:    admin.Name,
		Email:   admin.Email,
		Role:    admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, jti, nil
}

// ValidateSessionToken verifies a token string and returns its claims.
func (tm *TokenManager) ValidateSessionToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.ID == "" {
		return nil, fmt.Errorf("invalid token: missing session id")
	}

	return claims, nil
}
