package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const identityCookieName = "user_uuid"

// identityCookieMaxAge keeps the anonymous identity for six months of
// inactivity; every visit re-issues the cookie so active users never expire.
const identityCookieMaxAge = 180 * 24 * 60 * 60

type contextKey string

const userIDContextKey contextKey = "user_id"

// withIdentity assigns every visitor a stable anonymous identity. The id is
// a UUID stored in a cookie; a missing or malformed cookie gets a fresh one.
// Handlers read the id from the request context via userIDFrom.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := ""
		if c, err := r.Cookie(identityCookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				userID = parsed.String()
			}
		}
		if userID == "" {
			userID = uuid.NewString()
		}

		http.SetCookie(w, &http.Cookie{
			Name:     identityCookieName,
			Value:    userID,
			Path:     "/",
			MaxAge:   identityCookieMaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFrom returns the anonymous user id assigned by withIdentity.
func userIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(userIDContextKey).(string); ok {
		return v
	}
	return ""
}
