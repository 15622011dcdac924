package mw

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/jaayvee/internal/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestReferralCookieSet(t *testing.T) {
	h := ReferralCookie(false, logger.NewNop())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?ref=zzz", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code, "request passes through")

	header := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "ref=zzz"), header)
	assert.Contains(t, header, "Path=/")
	assert.Contains(t, header, "Max-Age=604800")
	assert.Contains(t, header, "SameSite=Lax")
	assert.NotContains(t, header, "HttpOnly")
	assert.NotContains(t, header, "Secure")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, RefCookieName, cookies[0].Name)
	assert.Equal(t, "zzz", cookies[0].Value)
	assert.Equal(t, RefCookieMaxAge, cookies[0].MaxAge)
}

func TestReferralCookieSecureInProduction(t *testing.T) {
	h := ReferralCookie(true, logger.NewNop())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ease?ref=partner42", nil))

	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Secure")
}

func TestReferralCookieAbsent(t *testing.T) {
	h := ReferralCookie(false, logger.NewNop())(okHandler())

	for _, target := range []string{"/", "/?ref=", "/?referral=abc"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Empty(t, rec.Header().Values("Set-Cookie"), target)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}
}

func TestRefFromCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", RefFromCookie(r))

	r.AddCookie(&http.Cookie{Name: RefCookieName, Value: "partner42"})
	assert.Equal(t, "partner42", RefFromCookie(r))
}

func TestReferralCookieKeepsTokenBytes(t *testing.T) {
	h := ReferralCookie(false, logger.NewNop())(okHandler())

	for _, ref := range []string{"élan", "a;b", `"x"`, "two words", "a+b=c"} {
		target := "/?" + url.Values{"ref": {ref}}.Encode()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1, ref)

		// the value must survive a round trip through the browser
		req := httptest.NewRequest(http.MethodGet, "/ease/talaash/api/getEvents", nil)
		req.AddCookie(cookies[0])
		assert.Equal(t, ref, RefFromCookie(req))
	}
}

func TestRefFromCookieMalformedEscape(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: RefCookieName, Value: "100%zz"})
	assert.Equal(t, "100%zz", RefFromCookie(r))
}
