package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	pkglogger "github.com/sadh911122-sudo/Dark-Triad/pkg/logger"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(newTestLogger())
}

// MockAdminRepository implements AdminRepository for testing
type MockAdminRepository struct {
	GetByIDFunc     func(ctx context.Context, id string) (*models.Admin, error)
	RecordLoginFunc func(ctx context.Context, id string, at time.Time) (*models.Admin, error)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) RecordLogin(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
	if m.RecordLoginFunc != nil {
		return m.RecordLoginFunc(ctx, id, at)
	}
	return nil, models.ErrNotFound
}

// MockSessionRepository implements SessionRepository for testing. The
// default behavior is an in-memory session table so auth flow tests
// do not have to stub every call.
type MockSessionRepository struct {
	CreateFunc          func(ctx context.Context, session *models.Session) (*models.Session, error)
	GetByTokenFunc      func(ctx context.Context, token string) (*models.Session, error)
	DeleteFunc          func(ctx context.Context, token string) error
	DeleteByAdminIDFunc func(ctx context.Context, adminID string) ([]string, error)
	TouchActivityFunc   func(ctx context.Context, token string, at time.Time) error

	mu       sync.Mutex
	sessions map[string]*models.Session
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string]*models.Session)
	}
	m.sessions[session.Token] = session
	return session, nil
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[token]; ok {
		return session, nil
	}
	return nil, models.ErrNotFound
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return models.ErrNotFound
	}
	delete(m.sessions, token)
	return nil
}

func (m *MockSessionRepository) DeleteByAdminID(ctx context.Context, adminID string) ([]string, error) {
	if m.DeleteByAdminIDFunc != nil {
		return m.DeleteByAdminIDFunc(ctx, adminID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tokens := make([]string, 0)
	for token, session := range m.sessions {
		if session.AdminID == adminID {
			tokens = append(tokens, token)
			delete(m.sessions, token)
		}
	}
	return tokens, nil
}

func (m *MockSessionRepository) TouchActivity(ctx context.Context, token string, at time.Time) error {
	if m.TouchActivityFunc != nil {
		return m.TouchActivityFunc(ctx, token, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok {
		return models.ErrNotFound
	}
	session.LastActivityAt = at
	return nil
}

// Has reports whether a session row exists, for expiry assertions.
func (m *MockSessionRepository) Has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[token]
	return ok
}

// MockParticipantStore implements store.ParticipantStore for testing
type MockParticipantStore struct {
	SaveFunc         func(ctx context.Context, p *models.Participant) (*models.Participant, error)
	ListFunc         func(ctx context.Context) ([]*models.Participant, error)
	UpdateStatusFunc func(ctx context.Context, code, status string, completedAt *time.Time) error
}

func (m *MockParticipantStore) Save(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	return p, nil
}

func (m *MockParticipantStore) List(ctx context.Context) ([]*models.Participant, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Participant{}, nil
}

func (m *MockParticipantStore) UpdateStatus(ctx context.Context, code, status string, completedAt *time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, code, status, completedAt)
	}
	return nil
}

// MockResultStore implements store.ResultStore for testing
type MockResultStore struct {
	SaveFunc func(ctx context.Context, r *models.DiagnosisResult) (*models.DiagnosisResult, error)
	ListFunc func(ctx context.Context) ([]*models.DiagnosisResult, error)
}

func (m *MockResultStore) Save(ctx context.Context, r *models.DiagnosisResult) (*models.DiagnosisResult, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, r)
	}
	return r, nil
}

func (m *MockResultStore) List(ctx context.Context) ([]*models.DiagnosisResult, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.DiagnosisResult{}, nil
}

// MockResultQueue implements store.ResultQueue for testing. Defaults
// to an in-memory queue.
type MockResultQueue struct {
	EnqueueFunc func(ctx context.Context, r *models.DiagnosisResult) error
	PendingFunc func(ctx context.Context, limit int) ([]*models.DiagnosisResult, error)
	RemoveFunc  func(ctx context.Context, id string) error

	mu      sync.Mutex
	entries []*models.DiagnosisResult
}

func (m *MockResultQueue) Enqueue(ctx context.Context, r *models.DiagnosisResult) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, r)
	return nil
}

func (m *MockResultQueue) Pending(ctx context.Context, limit int) ([]*models.DiagnosisResult, error) {
	if m.PendingFunc != nil {
		return m.PendingFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]*models.DiagnosisResult, limit)
	copy(out, m.entries[:limit])
	return out, nil
}

func (m *MockResultQueue) Remove(ctx context.Context, id string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.entries {
		if r.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

// Len reports the queue depth, for fallback assertions.
func (m *MockResultQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendParticipationCodeFunc func(ctx context.Context, participant *models.Participant) error
	SendDiagnosisResultFunc   func(ctx context.Context, result *models.DiagnosisResult) error
}

func (m *MockEmailService) SendParticipationCode(ctx context.Context, participant *models.Participant) error {
	if m.SendParticipationCodeFunc != nil {
		return m.SendParticipationCodeFunc(ctx, participant)
	}
	return nil
}

func (m *MockEmailService) SendDiagnosisResult(ctx context.Context, result *models.DiagnosisResult) error {
	if m.SendDiagnosisResultFunc != nil {
		return m.SendDiagnosisResultFunc(ctx, result)
	}
	return nil
}
