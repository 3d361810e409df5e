package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadh911122-sudo/Dark-Triad/internal/auth"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	"github.com/sadh911122-sudo/Dark-Triad/internal/sessionguard"
	pkgauth "github.com/sadh911122-sudo/Dark-Triad/pkg/auth"
)

const testJWTSecret = "test-secret-at-least-32-characters!!"

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(testJWTSecret)
}

func newTestGuardConfig() sessionguard.Config {
	return sessionguard.Config{
		Timeout:          30 * time.Minute,
		WarningWindow:    5 * time.Minute,
		ActivityDebounce: 60 * time.Second,
	}
}

func activeAdmin(t *testing.T) *models.Admin {
	t.Helper()

	hash, err := pkgauth.HashPassword("123456")
	require.NoError(t, err)

	return &models.Admin{
		ID:           "admin",
		PasswordHash: hash,
		Name:         "Administrator",
		Email:        "admin@example.com",
		Role:         models.RoleSuperAdmin,
		Status:       models.StatusActive,
		CreatedAt:    time.Now(),
	}
}

func newAuthServiceForTest(t *testing.T, admins *MockAdminRepository, sessions *MockSessionRepository, guardCfg sessionguard.Config) *AuthService {
	t.Helper()

	svc, err := NewAuthService(admins, sessions, newTestTokenManager(), guardCfg, newTestLogger(), newTestAuditLogger())
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	return svc
}

func TestLogin_Success(t *testing.T) {
	admin := activeAdmin(t)

	recorded := false
	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			if id == admin.ID {
				return admin, nil
			}
			return nil, models.ErrNotFound
		},
		RecordLoginFunc: func(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
			recorded = true
			admin.LoginCount++
			admin.LastLoginAt = &at
			return admin, nil
		},
	}
	sessions := &MockSessionRepository{}

	svc := newAuthServiceForTest(t, admins, sessions, newTestGuardConfig())

	resp, err := svc.Login(context.Background(), "admin", "123456", "127.0.0.1", "test")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Session.AdminID)
	assert.Equal(t, models.RoleSuperAdmin, resp.Session.Role)
	assert.True(t, recorded, "login must be recorded on the account")
	assert.Equal(t, 1, admin.LoginCount)
}

func TestLogin_WrongPassword(t *testing.T) {
	admin := activeAdmin(t)
	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
	}

	svc := newAuthServiceForTest(t, admins, &MockSessionRepository{}, newTestGuardConfig())

	_, err := svc.Login(context.Background(), "admin", "wrong", "", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestLogin_UnknownID(t *testing.T) {
	svc := newAuthServiceForTest(t, &MockAdminRepository{}, &MockSessionRepository{}, newTestGuardConfig())

	_, err := svc.Login(context.Background(), "ghost", "123456", "", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestLogin_InactiveAccount(t *testing.T) {
	admin := activeAdmin(t)
	admin.Status = models.StatusInactive

	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
	}

	svc := newAuthServiceForTest(t, admins, &MockSessionRepository{}, newTestGuardConfig())

	_, err := svc.Login(context.Background(), "admin", "123456", "", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized, "inactive account must look like any other credential failure")
}

func TestLogin_EmptyCredentials(t *testing.T) {
	svc := newAuthServiceForTest(t, &MockAdminRepository{}, &MockSessionRepository{}, newTestGuardConfig())

	_, err := svc.Login(context.Background(), "", "", "", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestCheckAuth_ValidToken(t *testing.T) {
	admin := activeAdmin(t)
	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
		RecordLoginFunc: func(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
			return admin, nil
		},
	}
	sessions := &MockSessionRepository{}

	svc := newAuthServiceForTest(t, admins, sessions, newTestGuardConfig())

	resp, err := svc.Login(context.Background(), "admin", "123456", "", "")
	require.NoError(t, err)

	session, err := svc.CheckAuth(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", session.AdminID)
}

func TestCheckAuth_GarbageToken(t *testing.T) {
	svc := newAuthServiceForTest(t, &MockAdminRepository{}, &MockSessionRepository{}, newTestGuardConfig())

	_, err := svc.CheckAuth(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, models.ErrNoSession)
}

func TestCheckAuth_DeactivatedAfterLogin(t *testing.T) {
	admin := activeAdmin(t)
	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
		RecordLoginFunc: func(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
			return admin, nil
		},
	}
	sessions := &MockSessionRepository{}

	svc := newAuthServiceForTest(t, admins, sessions, newTestGuardConfig())

	resp, err := svc.Login(context.Background(), "admin", "123456", "", "")
	require.NoError(t, err)

	admin.Status = models.StatusInactive

	_, err = svc.CheckAuth(context.Background(), resp.Token)
	assert.ErrorIs(t, err, models.ErrNoSession)
	assert.False(t, sessions.Has(mustJTI(t, resp.Token)), "session row must be cleared on fail-closed check")
}

func TestCheckAuth_DeactivationClearsAllAdminSessions(t *testing.T) {
	admin := activeAdmin(t)
	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
		RecordLoginFunc: func(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
			return admin, nil
		},
	}
	sessions := &MockSessionRepository{}

	svc := newAuthServiceForTest(t, admins, sessions, newTestGuardConfig())

	// Two concurrent logins for the same account, say two browsers.
	first, err := svc.Login(context.Background(), "admin", "123456", "", "")
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), "admin", "123456", "", "")
	require.NoError(t, err)

	admin.Status = models.StatusInactive

	_, err = svc.CheckAuth(context.Background(), first.Token)
	assert.ErrorIs(t, err, models.ErrNoSession)

	assert.False(t, sessions.Has(mustJTI(t, first.Token)))
	assert.False(t, sessions.Has(mustJTI(t, second.Token)), "deactivation must end every session of the account")

	_, err = svc.CheckAuth(context.Background(), second.Token)
	assert.ErrorIs(t, err, models.ErrNoSession)
}

// An admin who keeps working must never be logged out, no matter how
// long ago the login happened. The inactivity timeout is not a hard
// cap on session age.
func TestCheckAuth_ContinuousActivityOutlivesTimeout(t *testing.T) {
	admin := activeAdmin(t)
	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
		RecordLoginFunc: func(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
			return admin, nil
		},
	}
	sessions := &MockSessionRepository{}

	guardCfg := sessionguard.Config{
		Timeout:          100 * time.Millisecond,
		WarningWindow:    40 * time.Millisecond,
		ActivityDebounce: 5 * time.Millisecond,
	}
	svc := newAuthServiceForTest(t, admins, sessions, guardCfg)

	resp, err := svc.Login(context.Background(), "admin", "123456", "", "")
	require.NoError(t, err)

	// Stay active for several multiples of the timeout.
	deadline := time.Now().Add(350 * time.Millisecond)
	for time.Now().Before(deadline) {
		session, err := svc.CheckAuth(context.Background(), resp.Token)
		require.NoError(t, err, "active session must survive past the inactivity timeout")
		svc.RecordActivity(context.Background(), session.Token)
		time.Sleep(10 * time.Millisecond)
	}

	assert.True(t, sessions.Has(mustJTI(t, resp.Token)))
}

func TestLogout_RemovesSession(t *testing.T) {
	admin := activeAdmin(t)
	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
		RecordLoginFunc: func(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
			return admin, nil
		},
	}
	sessions := &MockSessionRepository{}

	svc := newAuthServiceForTest(t, admins, sessions, newTestGuardConfig())

	resp, err := svc.Login(context.Background(), "admin", "123456", "", "")
	require.NoError(t, err)

	jti := mustJTI(t, resp.Token)
	require.NoError(t, svc.Logout(context.Background(), jti))

	assert.False(t, sessions.Has(jti))
	_, err = svc.CheckAuth(context.Background(), resp.Token)
	assert.ErrorIs(t, err, models.ErrNoSession)
}

func TestExpiry_ForcesLogout(t *testing.T) {
	admin := activeAdmin(t)
	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
		RecordLoginFunc: func(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
			return admin, nil
		},
	}
	sessions := &MockSessionRepository{}

	guardCfg := sessionguard.Config{
		Timeout:          80 * time.Millisecond,
		WarningWindow:    30 * time.Millisecond,
		ActivityDebounce: 5 * time.Millisecond,
	}
	svc := newAuthServiceForTest(t, admins, sessions, guardCfg)

	resp, err := svc.Login(context.Background(), "admin", "123456", "", "")
	require.NoError(t, err)
	jti := mustJTI(t, resp.Token)

	require.Eventually(t, func() bool {
		return !sessions.Has(jti)
	}, time.Second, 10*time.Millisecond, "idle session must be forcibly logged out")
}

func TestHeartbeat_WarnsBeforeExpiry(t *testing.T) {
	admin := activeAdmin(t)
	admins := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
		RecordLoginFunc: func(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
			return admin, nil
		},
	}
	sessions := &MockSessionRepository{}

	guardCfg := sessionguard.Config{
		Timeout:          200 * time.Millisecond,
		WarningWindow:    150 * time.Millisecond,
		ActivityDebounce: 5 * time.Millisecond,
	}
	svc := newAuthServiceForTest(t, admins, sessions, guardCfg)

	resp, err := svc.Login(context.Background(), "admin", "123456", "", "")
	require.NoError(t, err)
	jti := mustJTI(t, resp.Token)

	hb, err := svc.Heartbeat(context.Background(), jti)
	require.NoError(t, err)
	assert.False(t, hb.Warned)
	assert.Greater(t, hb.RemainingSeconds, -1)

	require.Eventually(t, func() bool {
		hb, err := svc.Heartbeat(context.Background(), jti)
		return err == nil && hb.Warned
	}, time.Second, 10*time.Millisecond, "heartbeat must report the warning")

	// Accepting the prompt clears the warning.
	require.NoError(t, svc.Extend(context.Background(), jti))

	hb, err = svc.Heartbeat(context.Background(), jti)
	require.NoError(t, err)
	assert.False(t, hb.Warned)
}

func TestHasPermission(t *testing.T) {
	svc := newAuthServiceForTest(t, &MockAdminRepository{}, &MockSessionRepository{}, newTestGuardConfig())

	superSession := &models.Session{Role: models.RoleSuperAdmin}
	adminSession := &models.Session{Role: models.RoleAdmin}

	assert.True(t, svc.HasPermission(superSession, models.RoleAdmin), "super_admin passes every check")
	assert.True(t, svc.HasPermission(superSession, models.RoleSuperAdmin))
	assert.True(t, svc.HasPermission(adminSession, models.RoleAdmin))
	assert.False(t, svc.HasPermission(adminSession, models.RoleSuperAdmin))
	assert.False(t, svc.HasPermission(nil, models.RoleAdmin), "no session, no permission")
}

// mustJTI extracts the session row key from a signed token.
func mustJTI(t *testing.T, tokenString string) string {
	t.Helper()

	claims, err := newTestTokenManager().ValidateSessionToken(tokenString)
	require.NoError(t, err)
	return claims.ID
}
