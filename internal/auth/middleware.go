package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"mosaic/internal/logging"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "auth_token"

type contextKey int

const identityKey contextKey = 0

// WithIdentity stores a verified identity on the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity a Require middleware stored.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// TokenFromRequest extracts the session token, preferring the cookie over
// an Authorization bearer header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// SetCookie attaches the session cookie for the token.
func (s *Service) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// RequireUser admits any request bearing a valid token and stores the
// identity on the request context.
func (s *Service) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.Verify(TokenFromRequest(r))
		if err != nil {
			denyJSON(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := WithIdentity(r.Context(), id)
		ctx = logging.WithUser(ctx, id.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin admits only tokens carrying the admin role.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.Verify(TokenFromRequest(r))
		if err != nil {
			denyJSON(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !id.Admin() {
			denyJSON(w, http.StatusForbidden, "admin role required")
			return
		}
		ctx := WithIdentity(r.Context(), id)
		ctx = logging.WithUser(ctx, id.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func denyJSON(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, "{\"error\":%q}", msg)
}
