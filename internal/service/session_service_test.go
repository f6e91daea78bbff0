package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/repository"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockSessionRepo struct {
	sessions    []models.AcademicSession
	latestCalls int
	createErr   error
}

func (m *mockSessionRepo) Latest(_ context.Context) (*models.AcademicSession, error) {
	m.latestCalls++
	if len(m.sessions) == 0 {
		return nil, sql.ErrNoRows
	}
	return &m.sessions[0], nil
}

func (m *mockSessionRepo) FindByID(_ context.Context, id string) (*models.AcademicSession, error) {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return &m.sessions[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) List(_ context.Context) ([]models.AcademicSession, error) {
	return m.sessions, nil
}

func (m *mockSessionRepo) CreateIfNoOverlap(_ context.Context, session *models.AcademicSession) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.sessions {
		if existing.Overlaps(session.StartDate, session.EndDate) {
			return repository.ErrSessionOverlap
		}
	}
	if session.ID == "" {
		session.ID = "sess-new"
	}
	m.sessions = append([]models.AcademicSession{*session}, m.sessions...)
	return nil
}

type stubSessionCache struct {
	store   map[string][]byte
	deletes int
}

func (s *stubSessionCache) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubSessionCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubSessionCache) Delete(_ context.Context, key string) error {
	s.deletes++
	delete(s.store, key)
	return nil
}

func sessionSpan(startYear int) (time.Time, time.Time) {
	start := time.Date(startYear, 4, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

func TestSessionServiceLatestCaches(t *testing.T) {
	start, end := sessionSpan(2025)
	repo := &mockSessionRepo{sessions: []models.AcademicSession{{ID: "sess-1", StartDate: start, EndDate: end}}}
	cache := &stubSessionCache{}
	svc := NewSessionService(repo, cache, time.Minute, nil, zap.NewNop())

	first, err := svc.Latest(context.Background())
	require.NoError(t, err)
	second, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.latestCalls)
}

func TestSessionServiceLatestWithoutSessions(t *testing.T) {
	svc := NewSessionService(&mockSessionRepo{}, &stubSessionCache{}, time.Minute, nil, zap.NewNop())

	_, err := svc.Latest(context.Background())
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestSessionServiceCreateRejectsOverlap(t *testing.T) {
	start, end := sessionSpan(2025)
	repo := &mockSessionRepo{sessions: []models.AcademicSession{{ID: "sess-1", StartDate: start, EndDate: end}}}
	svc := NewSessionService(repo, &stubSessionCache{}, time.Minute, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSessionRequest{Start: start.AddDate(0, 6, 0), End: end.AddDate(0, 6, 0)})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestSessionServiceCreateAllowsTouchingSessions(t *testing.T) {
	start, end := sessionSpan(2025)
	repo := &mockSessionRepo{sessions: []models.AcademicSession{{ID: "sess-1", StartDate: start, EndDate: end}}}
	cache := &stubSessionCache{store: map[string][]byte{latestSessionCacheKey: []byte("{}")}}
	svc := NewSessionService(repo, cache, time.Minute, nil, zap.NewNop())

	// Back-to-back: the new session starts the day the old one ends.
	created, err := svc.Create(context.Background(), CreateSessionRequest{Start: end, End: end.AddDate(1, 0, 0)})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 1, cache.deletes)
}

func TestSessionServiceCreateRejectsInvertedRange(t *testing.T) {
	svc := NewSessionService(&mockSessionRepo{}, &stubSessionCache{}, time.Minute, nil, zap.NewNop())

	start, end := sessionSpan(2025)
	_, err := svc.Create(context.Background(), CreateSessionRequest{Start: end, End: start})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}
