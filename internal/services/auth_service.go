package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sadh911122-sudo/Dark-Triad/internal/auth"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	"github.com/sadh911122-sudo/Dark-Triad/internal/sessionguard"
	pkgauth "github.com/sadh911122-sudo/Dark-Triad/pkg/auth"
	pkglogger "github.com/sadh911122-sudo/Dark-Triad/pkg/logger"
)

// AdminRepository defines the admin account operations the auth
// service needs.
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	RecordLogin(ctx context.Context, id string, at time.Time) (*models.Admin, error)
}

// SessionRepository defines the session row operations the auth
// service needs.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByAdminID(ctx context.Context, adminID string) ([]string, error)
	TouchActivity(ctx context.Context, token string, at time.Time) error
}

// AuthService owns admin authentication and the session lifecycle.
// The truth about a live session is split three ways: the JWT proves
// the token was issued here, the session row proves it was not logged
// out, and the guard's timer pair enforces the inactivity deadline.
// All three have to agree for a request to pass.
type AuthService struct {
	admins      AdminRepository
	sessions    SessionRepository
	guard       *sessionguard.Guard
	tm          *auth.TokenManager
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates the service and its session guard. The guard
// calls back into the service on warning and expiry, so the service
// owns its lifecycle; call Close on shutdown.
func NewAuthService(admins AdminRepository, sessions SessionRepository, tm *auth.TokenManager, guardCfg sessionguard.Config, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) (*AuthService, error) {
	s := &AuthService{
		admins:      admins,
		sessions:    sessions,
		tm:          tm,
		logger:      logger,
		auditLogger: auditLogger,
	}

	guard, err := sessionguard.New(guardCfg, logger, s.handleWarning, s.handleExpiry)
	if err != nil {
		return nil, err
	}
	s.guard = guard

	return s, nil
}

// Close stops every session timer.
func (s *AuthService) Close() {
	s.guard.Dispose()
}

// SessionResponse is the session projection returned to the admin UI.
type SessionResponse struct {
	AdminID string `json:"adminId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	LoginAt string `json:"loginAt"`
}

// LoginResponse carries the signed token and the session projection.
type LoginResponse struct {
	Token   string           `json:"token"`
	Session *SessionResponse `json:"session"`
}

// HeartbeatResponse tells the client how long until forced logout and
// whether the warning deadline has passed.
type HeartbeatResponse struct {
	Session          *SessionResponse `json:"session"`
	RemainingSeconds int              `json:"remainingSeconds"`
	Warned           bool             `json:"warned"`
}

func sessionModelToResponse(session *models.Session) *SessionResponse {
	return &SessionResponse{
		AdminID: session.AdminID,
		Name:    session.Name,
		Email:   session.Email,
		Role:    session.Role,
		LoginAt: session.LoginAt.Format(time.RFC3339),
	}
}

// Login authenticates by exact id, password and active status. Any
// mismatch collapses into ErrUnauthorized so the response never
// reveals which check failed.
func (s *AuthService) Login(ctx context.Context, id, password, ipAddress, userAgent string) (*LoginResponse, error) {
	if id = strings.TrimSpace(id); id == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials")
		return nil, models.ErrUnauthorized
	}

	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ipAddress,
				UserAgent:     userAgent,
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get admin by id", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AdminID:       admin.ID,
			IPAddress:     ipAddress,
			UserAgent:     userAgent,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		return nil, models.ErrUnauthorized
	}

	if admin.Status != models.StatusActive {
		s.logger.Info("login blocked: account not active",
			slog.String("admin_id", admin.ID),
			slog.String("status", admin.Status))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AdminID:       admin.ID,
			IPAddress:     ipAddress,
			UserAgent:     userAgent,
			FailureReason: "account_inactive",
			Success:       false,
		})
		return nil, models.ErrUnauthorized
	}

	admin, err = s.admins.RecordLogin(ctx, admin.ID, time.Now())
	if err != nil {
		s.logger.Error("failed to record login", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	tokenString, jti, err := s.tm.GenerateSessionToken(admin)
	if err != nil {
		s.logger.Error("failed to generate session token", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := time.Now()
	session, err := s.sessions.Create(ctx, &models.Session{
		Token:          jti,
		AdminID:        admin.ID,
		Name:           admin.Name,
		Email:          admin.Email,
		Role:           admin.Role,
		LoginAt:        now,
		LastActivityAt: now,
	})
	if err != nil {
		s.logger.Error("failed to create session", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.guard.Watch(session.Token)

	s.logger.Info("admin logged in",
		slog.String("admin_id", admin.ID),
		slog.Int("login_count", admin.LoginCount))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		AdminID:   admin.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Success:   true,
	})

	return &LoginResponse{
		Token:   tokenString,
		Session: sessionModelToResponse(session),
	}, nil
}

// CheckAuth validates a bearer token against all three sources of
// truth. Any failure fails closed: the session row (if one survives)
// is cleared and an auth error returned.
func (s *AuthService) CheckAuth(ctx context.Context, tokenString string) (*models.Session, error) {
	claims, err := s.tm.ValidateSessionToken(tokenString)
	if err != nil {
		s.logger.Info("auth check failed: invalid token", slog.Any("error", err))
		return nil, models.ErrNoSession
	}

	session, err := s.sessions.GetByToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoSession
		}
		s.logger.Error("failed to load session", slog.Any("error", err))
		return nil, models.ErrNoSession
	}

	admin, err := s.admins.GetByID(ctx, session.AdminID)
	if err != nil || admin.Status != models.StatusActive {
		s.logger.Warn("auth check failed: account missing or inactive",
			slog.String("admin_id", session.AdminID))
		s.clearAdminSessions(ctx, session.AdminID, session.Token)
		return nil, models.ErrNoSession
	}

	// A restart wipes the in-memory timers while the row survives.
	// Re-arm on first sight instead of rejecting a live session.
	if _, _, ok := s.guard.Remaining(session.Token); !ok {
		s.guard.Watch(session.Token)
	}

	return session, nil
}

// RecordActivity feeds user activity into the guard. The row write is
// skipped whenever the guard debounces the event.
func (s *AuthService) RecordActivity(ctx context.Context, token string) {
	if !s.guard.Touch(token) {
		return
	}

	if err := s.sessions.TouchActivity(ctx, token, time.Now()); err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("failed to persist session activity", slog.Any("error", err))
	}
}

// Heartbeat reports the countdown state for the warning prompt.
func (s *AuthService) Heartbeat(ctx context.Context, token string) (*HeartbeatResponse, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, models.ErrNoSession
	}

	remaining, warned, ok := s.guard.Remaining(token)
	if !ok {
		return nil, models.ErrSessionExpired
	}

	return &HeartbeatResponse{
		Session:          sessionModelToResponse(session),
		RemainingSeconds: int(remaining / time.Second),
		Warned:           warned,
	}, nil
}

// Extend is the "stay logged in" action from the warning prompt. Both
// deadlines restart and the pending warning clears.
func (s *AuthService) Extend(ctx context.Context, token string) error {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return models.ErrNoSession
	}

	if !s.guard.Extend(token) {
		return models.ErrSessionExpired
	}

	if err := s.sessions.TouchActivity(ctx, token, time.Now()); err != nil {
		s.logger.Warn("failed to persist session extension", slog.Any("error", err))
	}

	s.auditLogger.LogSessionEvent("session_extended", session.AdminID, "")
	return nil
}

// Logout ends a session deliberately.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.guard.Remove(token)
			return nil
		}
		return err
	}

	s.clearSession(ctx, token)
	s.auditLogger.LogSessionEvent("logout", session.AdminID, "")
	s.logger.Info("admin logged out", slog.String("admin_id", session.AdminID))

	return nil
}

// ForceLogout ends a session the admin did not ask to end, with the
// reason surfaced in the audit trail.
func (s *AuthService) ForceLogout(ctx context.Context, token, reason string) {
	adminID := ""
	if session, err := s.sessions.GetByToken(ctx, token); err == nil {
		adminID = session.AdminID
	}

	s.clearSession(ctx, token)
	s.auditLogger.LogSessionEvent("forced_logout", adminID, reason)
}

// HasPermission implements the role check. super_admin passes every
// check; everyone else needs an exact role match. No session means no
// permission.
func (s *AuthService) HasPermission(session *models.Session, requiredRole string) bool {
	if session == nil {
		return false
	}
	if session.Role == models.RoleSuperAdmin {
		return true
	}
	return session.Role == requiredRole
}

// clearAdminSessions drops every session belonging to one admin. A
// deactivated account must lose all of its sessions, not just the one
// that happened to make the failing request.
func (s *AuthService) clearAdminSessions(ctx context.Context, adminID, token string) {
	tokens, err := s.sessions.DeleteByAdminID(ctx, adminID)
	if err != nil {
		s.logger.Error("failed to clear sessions for admin",
			slog.String("admin_id", adminID), slog.Any("error", err))
		s.clearSession(ctx, token)
		return
	}

	for _, tok := range tokens {
		s.guard.Remove(tok)
	}
}

func (s *AuthService) clearSession(ctx context.Context, token string) {
	s.guard.Remove(token)

	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to delete session row", slog.Any("error", err))
	}
}

// handleWarning runs on the guard's timer goroutine when a session
// crosses the warning deadline. The client learns about it through
// the next heartbeat.
func (s *AuthService) handleWarning(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	adminID := ""
	if session, err := s.sessions.GetByToken(ctx, token); err == nil {
		adminID = session.AdminID
	}

	s.auditLogger.LogSessionEvent("session_warning", adminID, "inactivity")
}

// handleExpiry runs when the expiry deadline passes; the guard has
// already dropped the token.
func (s *AuthService) handleExpiry(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.ForceLogout(ctx, token, "inactivity_timeout")
}
