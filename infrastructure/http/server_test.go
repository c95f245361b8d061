package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"gaming-hub/auth"
	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/repositories"
	"gaming-hub/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubSessionService lets each test wire just the method it exercises.
type stubSessionService struct {
	create func(ctx context.Context, hostID string, params services.CreateSessionParams) (*domain.Session, error)
	join   func(ctx context.Context, sessionID, userID string) (*domain.Session, error)
	delete func(ctx context.Context, sessionID, actorID string) error
}

func (s *stubSessionService) Create(ctx context.Context, hostID string, params services.CreateSessionParams) (*domain.Session, error) {
	return s.create(ctx, hostID, params)
}

func (s *stubSessionService) Get(context.Context, string, string) (*domain.Session, error) {
	return nil, errors.ErrNotFound
}

func (s *stubSessionService) List(context.Context, string, repositories.SessionFilter) ([]domain.Session, error) {
	return nil, nil
}

func (s *stubSessionService) Join(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	return s.join(ctx, sessionID, userID)
}

func (s *stubSessionService) UpdateParticipantStatus(context.Context, string, string, string, domain.ParticipantStatus) (*domain.Session, error) {
	return nil, errors.ErrForbidden
}

func (s *stubSessionService) Delete(ctx context.Context, sessionID, actorID string) error {
	return s.delete(ctx, sessionID, actorID)
}

// stubAuthService echoes a fixed outcome per test.
type stubAuthService struct {
	register func(ctx context.Context, username, password string) (*domain.User, string, error)
	login    func(ctx context.Context, username, password string) (*domain.User, string, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string) (*domain.User, string, error) {
	return s.register(ctx, username, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	return s.login(ctx, username, password)
}

type stubNotificationService struct{}

func (stubNotificationService) List(context.Context, string, repositories.NotificationPage) ([]domain.Notification, error) {
	return []domain.Notification{}, nil
}
func (stubNotificationService) UnreadCount(context.Context, string) (int, error) { return 2, nil }
func (stubNotificationService) MarkRead(context.Context, string, string) error {
	return errors.ErrNotFound
}
func (stubNotificationService) MarkAllRead(context.Context, string) error    { return nil }
func (stubNotificationService) Delete(context.Context, string, string) error { return nil }

func testServer(t *testing.T, sessions services.ISessionService) (*Server, *auth.TokenManager) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.ExpectPing().WillReturnError(nil)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authn := &stubAuthService{
		register: func(_ context.Context, username, _ string) (*domain.User, string, error) {
			return &domain.User{ID: "u1", Username: username}, "signed-token", nil
		},
		login: func(context.Context, string, string) (*domain.User, string, error) {
			return nil, "", errors.ErrInvalidCredentials
		},
	}
	return NewServer(log, db, authn, sessions, nil, nil, stubNotificationService{}, tokens, nil, nil), tokens
}

func bearer(t *testing.T, tokens *auth.TokenManager, userID string) string {
	t.Helper()
	signed, err := tokens.Generate(userID, nil)
	require.NoError(t, err)
	return "Bearer " + signed
}

func Test_Protected_Routes_Require_Token(t *testing.T) {
	req := require.New(t)
	server, _ := testServer(t, &stubSessionService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	req.Equal(http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusUnauthorized, rec.Code)
}

func Test_Create_Session_Uses_Token_Identity(t *testing.T) {
	req := require.New(t)
	var gotHost string
	sessions := &stubSessionService{
		create: func(_ context.Context, hostID string, params services.CreateSessionParams) (*domain.Session, error) {
			gotHost = hostID
			return &domain.Session{ID: "s1", HostID: hostID, Title: params.Title}, nil
		},
	}
	server, tokens := testServer(t, sessions)

	body := `{"title":"Friday Raid","game":"Destiny 2","platform":"PC","scheduledAt":"2026-09-05T20:00:00Z"}`
	r := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	r.Header.Set("Authorization", bearer(t, tokens, "alice"))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)

	req.Equal(http.StatusCreated, rec.Code)
	req.Equal("alice", gotHost)

	var created domain.Session
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	req.Equal("s1", created.ID)
}

func Test_Error_Mapping_At_The_Edge(t *testing.T) {
	req := require.New(t)
	sessions := &stubSessionService{
		join: func(context.Context, string, string) (*domain.Session, error) {
			return nil, errors.ErrSessionFull
		},
		delete: func(context.Context, string, string) error {
			return errors.ErrStore
		},
	}
	server, tokens := testServer(t, sessions)
	token := bearer(t, tokens, "alice")

	r := httptest.NewRequest(http.MethodPost, "/api/sessions/s1/join", nil)
	r.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusConflict, rec.Code)

	// Store failures stay opaque.
	r = httptest.NewRequest(http.MethodDelete, "/api/sessions/s1", nil)
	r.Header.Set("Authorization", token)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusInternalServerError, rec.Code)
	req.Contains(rec.Body.String(), "internal error")
	req.NotContains(rec.Body.String(), "store")

	r = httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
	r.Header.Set("Authorization", token)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusNotFound, rec.Code)
}

func Test_Health_Reports_Database(t *testing.T) {
	req := require.New(t)
	server, _ := testServer(t, &stubSessionService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	req.Equal(http.StatusOK, rec.Code)
}

func Test_Stats_Requires_Token(t *testing.T) {
	req := require.New(t)
	server, tokens := testServer(t, &stubSessionService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	req.Equal(http.StatusUnauthorized, rec.Code)

	r := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	r.Header.Set("Authorization", bearer(t, tokens, "alice"))
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"connections"`)
}

// Register and login live outside the token middleware; their outcomes map
// through the same error table as every other route.
func Test_Auth_Routes_Are_Public(t *testing.T) {
	req := require.New(t)
	server, _ := testServer(t, &stubSessionService{})

	body := `{"username":"gamer42","password":"ComplexPass123!"}`
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusCreated, rec.Code)
	req.Contains(rec.Body.String(), `"token":"signed-token"`)
	req.Contains(rec.Body.String(), `"gamer42"`)

	r = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusUnauthorized, rec.Code)

	r = httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("not-json"))
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusBadRequest, rec.Code)
}

func Test_Notification_Routes(t *testing.T) {
	req := require.New(t)
	server, tokens := testServer(t, &stubSessionService{})
	token := bearer(t, tokens, "alice")

	r := httptest.NewRequest(http.MethodGet, "/api/notifications/unread-count", nil)
	r.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"count":2`)

	r = httptest.NewRequest(http.MethodPost, "/api/notifications/n1/read", nil)
	r.Header.Set("Authorization", token)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, r)
	req.Equal(http.StatusNotFound, rec.Code)
}
