package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/sadh911122-sudo/Dark-Triad/internal/services"
	pkglogger "github.com/sadh911122-sudo/Dark-Triad/pkg/logger"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(newTestLogger())
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc     func(ctx context.Context, id, password, ipAddress, userAgent string) (*services.LoginResponse, error)
	LogoutFunc    func(ctx context.Context, token string) error
	HeartbeatFunc func(ctx context.Context, token string) (*services.HeartbeatResponse, error)
	ExtendFunc    func(ctx context.Context, token string) error
}

func (m *MockAuthService) Login(ctx context.Context, id, password, ipAddress, userAgent string) (*services.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, id, password, ipAddress, userAgent)
	}
	return nil, nil
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

func (m *MockAuthService) Heartbeat(ctx context.Context, token string) (*services.HeartbeatResponse, error) {
	if m.HeartbeatFunc != nil {
		return m.HeartbeatFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockAuthService) Extend(ctx context.Context, token string) error {
	if m.ExtendFunc != nil {
		return m.ExtendFunc(ctx, token)
	}
	return nil
}
