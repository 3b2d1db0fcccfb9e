package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mosaic/internal/auth"
	"mosaic/internal/testsupport"
)

func sessionToken(t *testing.T, svc *auth.Service, username, password string) string {
	t.Helper()

	session, err := svc.Login(username, password)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return session.Token
}

func echoIdentity(t *testing.T, captured **auth.Identity) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			t.Error("identity missing from context")
		}
		*captured = id
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireUserAcceptsCookie(t *testing.T) {
	svc := newService(t)
	token := sessionToken(t, svc, "bob", "swordfish")

	var id *auth.Identity
	handler := svc.RequireUser(echoIdentity(t, &id))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if id == nil || id.Username != "bob" || id.Role != "user" {
		t.Fatalf("unexpected identity: %#v", id)
	}
}

func TestRequireUserAcceptsBearer(t *testing.T) {
	svc := newService(t)
	token := sessionToken(t, svc, "bob", "swordfish")

	var id *auth.Identity
	handler := svc.RequireUser(echoIdentity(t, &id))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if id == nil || id.Username != "bob" {
		t.Fatalf("unexpected identity: %#v", id)
	}
}

func TestRequireUserRejectsMissingToken(t *testing.T) {
	svc := newService(t)
	handler := svc.RequireUser(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Fatalf("body = %q, want error payload", rec.Body.String())
	}
}

func TestRequireAdminRejectsUserRole(t *testing.T) {
	svc := newService(t)
	token := sessionToken(t, svc, "bob", "swordfish")

	handler := svc.RequireAdmin(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/video/square/a.mp4/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAdminAcceptsAdmin(t *testing.T) {
	svc := newService(t)
	token := sessionToken(t, svc, "alice", "hunter2")

	var id *auth.Identity
	handler := svc.RequireAdmin(echoIdentity(t, &id))

	req := httptest.NewRequest(http.MethodPost, "/api/video/square/a.mp4/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if id == nil || !id.Admin() {
		t.Fatalf("unexpected identity: %#v", id)
	}
}

func TestTokenFromRequestPrefersCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	if got := auth.TokenFromRequest(req); got != "from-cookie" {
		t.Fatalf("token = %q, want from-cookie", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	if got := auth.TokenFromRequest(req); got != "from-header" {
		t.Fatalf("token = %q, want from-header", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := auth.TokenFromRequest(req); got != "" {
		t.Fatalf("token = %q, want empty", got)
	}
}

func TestSessionCookieLifecycle(t *testing.T) {
	svc := auth.NewService(testsupport.NewConfig(t))

	rec := httptest.NewRecorder()
	svc.SetCookie(rec, "tok-123")
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	set := cookies[0]
	if set.Name != auth.CookieName || set.Value != "tok-123" {
		t.Fatalf("unexpected cookie: %#v", set)
	}
	if !set.HttpOnly || set.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie must be httponly + samesite strict: %#v", set)
	}
	if set.MaxAge <= 0 {
		t.Fatalf("cookie max-age = %d, want > 0", set.MaxAge)
	}

	rec = httptest.NewRecorder()
	auth.ClearCookie(rec)
	cookies = rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got %#v", cookies)
	}
}
