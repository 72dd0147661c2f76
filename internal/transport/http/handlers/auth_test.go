package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/security"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/repository"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/repository/memory"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/transport/http/middleware"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/usecase"
)

type stubStudentRepo struct {
	students map[string]*domain.Student
}

func (s *stubStudentRepo) GetByEmail(_ context.Context, email string) (*domain.Student, error) {
	if st, ok := s.students[email]; ok {
		copied := *st
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubStudentRepo) UpdateLastLogin(context.Context, string, time.Time) error { return nil }
func (s *stubStudentRepo) UpdateLastVisit(context.Context, string, time.Time) error { return nil }
func (s *stubStudentRepo) UpdateAvatarURL(context.Context, string, *string) error   { return nil }

func newAuthRouter(t *testing.T, withLimiter bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("segreta123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword returned error: %v", err)
	}

	repo := &stubStudentRepo{students: map[string]*domain.Student{
		"mario.rossi@example.com": {
			ID:           "id-1",
			Email:        "mario.rossi@example.com",
			Nome:         "Mario",
			PasswordHash: string(hash),
			Attivo:       true,
		},
	}}

	codec, err := security.NewSessionCodec("test-secret", 14*24*time.Hour, nil)
	if err != nil {
		t.Fatalf("NewSessionCodec returned error: %v", err)
	}

	auth, err := usecase.NewAuthService(repo, codec, 0, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}

	var limiter *usecase.LoginRateLimiter
	if withLimiter {
		limiter = usecase.NewLoginRateLimiter(memory.NewAttemptStore(), 5, 15*time.Minute, nil, zaptest.NewLogger(t))
	}

	r := gin.New()
	api := r.Group("/api")
	NewAuthHandler(auth, limiter, nil, 14*24*3600, false).RegisterRoutes(api)
	return r
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r := newAuthRouter(t, false)

	w := postLogin(r, `{"email": "mario.rossi@example.com", "password": "segreta123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Nome != "Mario" {
		t.Fatalf("response = %+v", resp)
	}

	setCookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(setCookie, middleware.CookieName+"=") {
		t.Fatalf("Set-Cookie = %q, want %s cookie", setCookie, middleware.CookieName)
	}
	if !strings.Contains(setCookie, "HttpOnly") {
		t.Fatalf("Set-Cookie = %q, want HttpOnly", setCookie)
	}
	if !strings.Contains(setCookie, "SameSite=Lax") {
		t.Fatalf("Set-Cookie = %q, want SameSite=Lax", setCookie)
	}
	// 14 day session, 86400 seconds per day.
	if !strings.Contains(setCookie, "Max-Age=1209600") {
		t.Fatalf("Set-Cookie = %q, want Max-Age=1209600", setCookie)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r := newAuthRouter(t, false)

	w := postLogin(r, `{"email": "mario.rossi@example.com", "password": "sbagliata"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Credenziali non valide") {
		t.Fatalf("body = %s", w.Body.String())
	}
	if cookie := w.Header().Get("Set-Cookie"); cookie != "" {
		t.Fatalf("Set-Cookie = %q, want none on failure", cookie)
	}
}

func TestLoginMissingFields(t *testing.T) {
	r := newAuthRouter(t, false)

	w := postLogin(r, `{"email": "mario.rossi@example.com"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "obbligatorie") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestLoginRateLimited(t *testing.T) {
	r := newAuthRouter(t, true)

	for i := 0; i < 5; i++ {
		postLogin(r, `{"email": "mario.rossi@example.com", "password": "sbagliata"}`)
	}

	w := postLogin(r, `{"email": "mario.rossi@example.com", "password": "segreta123"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("Retry-After header missing")
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("X-RateLimit-Remaining = %q, want 0", got)
	}
	if !strings.Contains(w.Body.String(), "Troppi tentativi") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSessionProbe(t *testing.T) {
	r := newAuthRouter(t, false)

	login := postLogin(r, `{"email": "mario.rossi@example.com", "password": "segreta123"}`)
	cookies := login.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no cookies")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Nome == nil || *resp.Nome != "Mario" {
		t.Fatalf("nome = %v, want Mario", resp.Nome)
	}
}

func TestSessionProbeWithoutCookie(t *testing.T) {
	r := newAuthRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"nome":null`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	r := newAuthRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	setCookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(setCookie, middleware.CookieName+"=") || !strings.Contains(setCookie, "Max-Age=0") {
		t.Fatalf("Set-Cookie = %q, want expired cookie", setCookie)
	}
}
