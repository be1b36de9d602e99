package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"corredora-platform/internal/auth"
	"corredora-platform/internal/config"
	"corredora-platform/internal/notify"
	"corredora-platform/internal/rbac"
	"corredora-platform/internal/users"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *users.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := auth.NewManager(config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		ResetSecret:   "reset-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	repo := users.NewMemoryRepo()
	svc := auth.NewService(m, repo, notify.NewRecorder(), auth.NewMemoryResetStore())

	h := Handlers{
		Auth:          svc,
		Users:         repo,
		Cookie:        CookieConfig{MaxAge: 7 * 24 * time.Hour},
		DefaultOrigin: "https://corredora.example",
	}

	r := gin.New()
	ag := r.Group("/api/auth")
	{
		ag.POST("/login", h.Login)
		ag.POST("/refresh", h.Refresh)
		ag.POST("/forgot", h.ForgotPassword)
		ag.POST("/reset", h.ResetPassword)
		ag.POST("/logout", h.Logout)
		ag.GET("/user", auth.RequireAccessToken(m), h.CurrentUser)
	}
	return r, repo
}

func seedAccount(t *testing.T, repo *users.MemoryRepo) users.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secreta123"), bcrypt.MinCost)
	u, err := repo.Create(context.Background(), users.User{
		Username:     "ana",
		Email:        "ana@corredora.mx",
		Nombre:       "Ana",
		Role:         rbac.RoleUsuario,
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func postJSON(r *gin.Engine, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	res := w.Result()
	for _, ck := range res.Cookies() {
		if ck.Name == RefreshCookieName {
			return ck
		}
	}
	t.Fatalf("refresh cookie not set")
	return nil
}

func TestLogin_SetsHTTPOnlyRefreshCookie(t *testing.T) {
	r, repo := newAuthRouter(t)
	seedAccount(t, repo)

	w := postJSON(r, "/api/auth/login", gin.H{"mail": "ana@corredora.mx", "password": "secreta123"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	ck := refreshCookie(t, w)
	if !ck.HttpOnly {
		t.Fatalf("refresh cookie must be HttpOnly")
	}
	if ck.Value == "" {
		t.Fatalf("refresh cookie empty")
	}

	var body struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"mail"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Token == "" || body.User.Email != "ana@corredora.mx" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	r, repo := newAuthRouter(t)
	seedAccount(t, repo)

	w := postJSON(r, "/api/auth/login", gin.H{"mail": "ana@corredora.mx", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRefresh_RotatesCookieAndTokens(t *testing.T) {
	r, repo := newAuthRouter(t)
	seedAccount(t, repo)

	login := postJSON(r, "/api/auth/login", gin.H{"mail": "ana@corredora.mx", "password": "secreta123"})
	ck := refreshCookie(t, login)

	w := postJSON(r, "/api/auth/refresh", nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	rotated := refreshCookie(t, w)
	if rotated.Value == ck.Value {
		t.Fatalf("refresh cookie must rotate")
	}

	var body struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Token == "" || body.RefreshToken == "" {
		t.Fatalf("expected rotated pair, got %s", w.Body.String())
	}
}

func TestRefresh_WithoutCookieFails(t *testing.T) {
	r, _ := newAuthRouter(t)
	if w := postJSON(r, "/api/auth/refresh", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCurrentUser_RequiresBearerToken(t *testing.T) {
	r, repo := newAuthRouter(t)
	seedAccount(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	login := postJSON(r, "/api/auth/login", gin.H{"mail": "ana@corredora.mx", "password": "secreta123"})
	var body struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(login.Body.Bytes(), &body)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestForgot_GhostEmailKeepsStableShape(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(r, "/api/auth/forgot", gin.H{"mail": "ghost@nowhere.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok true")
	}
	if v, present := body["resetToken"]; !present || v != nil {
		t.Fatalf("expected explicit null resetToken, got %v", v)
	}
	if v, present := body["resetUrl"]; !present || v != nil {
		t.Fatalf("expected explicit null resetUrl, got %v", v)
	}
}

func TestReset_InvalidTokenIs400(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(r, "/api/auth/reset", gin.H{"token": "garbage", "newPassword": "nuevaClave99"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	r, repo := newAuthRouter(t)
	seedAccount(t, repo)

	login := postJSON(r, "/api/auth/login", gin.H{"mail": "ana@corredora.mx", "password": "secreta123"})
	ck := refreshCookie(t, login)

	w := postJSON(r, "/api/auth/logout", nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cleared := refreshCookie(t, w)
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", cleared)
	}
}
