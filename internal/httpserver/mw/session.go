package mw

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/jaayvee/internal/logger"
)

type sessionKey struct{}

// Session makes sure every visitor carries a session id cookie. The cookie
// has no Max-Age: it lives as long as the browser session, which scopes the
// server-side attribution storage the way tab session storage is scoped.
// Unparsable ids are replaced, so the id is always a UUID.
func Session(cookieName string, secure bool, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if c, err := r.Cookie(cookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					sid = id.String()
				}
			}

			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				log.Debug("new visitor session", logger.String("session_id", sid))
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sid)))
		})
	}
}

// SessionID returns the session id stored by Session, or "" outside it.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey{}).(string)
	return sid
}
