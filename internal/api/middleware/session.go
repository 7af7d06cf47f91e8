// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"
	"strings"

	"github.com/ndewijer/Conversions-Report-Backend/internal/api/response"
	"github.com/ndewijer/Conversions-Report-Backend/internal/session"
)

// RequireSession rejects requests without a valid session token with 401.
// The token is read from the session cookie or an "Authorization: Bearer" header.
// When sessions are disabled every request passes through.
//
// Example usage in router:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.RequireSession(sessions))
//	    r.Get("/conversions", handler.Conversions)
//	})
func RequireSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.Verify(sessionToken(r)) {
				response.RespondError(w, http.StatusUnauthorized, "authentication required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
