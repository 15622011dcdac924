package mw

import (
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
)

const (
	// RefCookieName is the cookie carrying the referral to server-side consumers.
	RefCookieName = "ref"
	// RefCookieMaxAge is seven days, in seconds.
	RefCookieMaxAge = 60 * 60 * 24 * 7
)

// ReferralCookie copies a ?ref= query parameter into the long-lived ref
// cookie so server-side routes see the referral. The cookie stays readable
// by client-side script. Requests are never blocked or rewritten.
//
// The value is percent-encoded: net/http drops bytes such as ';', '"' or
// non-ASCII from cookie values, which would silently alter the token.
func ReferralCookie(secure bool, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ref := r.URL.Query().Get(referral.ParamRef); ref != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     RefCookieName,
					Value:    url.PathEscape(ref),
					Path:     "/",
					MaxAge:   RefCookieMaxAge,
					HttpOnly: false,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				log.Debug("referral cookie set", logger.String("ref", ref))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RefFromCookie returns the decoded ref cookie value of r, or "".
// A value that is not valid percent-encoding is returned as is.
func RefFromCookie(r *http.Request) string {
	c, err := r.Cookie(RefCookieName)
	if err != nil {
		return ""
	}
	ref, err := url.PathUnescape(c.Value)
	if err != nil {
		return c.Value
	}
	return ref
}
