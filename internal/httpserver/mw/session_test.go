package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/jaayvee/internal/logger"
)

func captureSession(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = SessionID(r.Context())
	})
}

func TestSessionIssuesCookie(t *testing.T) {
	var sid string
	h := Session("jaayvee_sid", false, logger.NewNop())(captureSession(&sid))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(sid)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jaayvee_sid", cookies[0].Name)
	assert.Equal(t, sid, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Zero(t, cookies[0].MaxAge, "browser-session cookie")
}

func TestSessionReusesCookie(t *testing.T) {
	var sid string
	h := Session("jaayvee_sid", false, logger.NewNop())(captureSession(&sid))
	existing := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jaayvee_sid", Value: existing})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, existing, sid)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessionReplacesForgedCookie(t *testing.T) {
	var sid string
	h := Session("jaayvee_sid", false, logger.NewNop())(captureSession(&sid))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jaayvee_sid", Value: "x:*"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, "x:*", sid)
	_, err := uuid.Parse(sid)
	assert.NoError(t, err)
	assert.Len(t, rec.Result().Cookies(), 1)
}
