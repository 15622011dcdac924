package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/jaayvee/internal/config"
	"github.com/MrSnakeDoc/jaayvee/internal/domain"
	"github.com/MrSnakeDoc/jaayvee/internal/events"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/index"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
)

type testSite struct {
	srv      *httptest.Server
	sessions *referral.MemorySessions
}

func newTestSite(t *testing.T, upstream string) *testSite {
	t.Helper()
	log := logger.NewNop()

	idx := index.NewMemoryIndex()
	idx.UpdateVentures([]*domain.Venture{
		{ID: "talaash", Name: "Talaash", InternalPath: "/ease/talaash", Position: 0},
		{ID: "ease", Name: "Jaayvee Ease", Href: "https://ease.thejaayveeworld.com/", Position: 1},
		{ID: "realestate", Name: "Real Estate", Href: "https://realestate.thejaayveeworld.com", ComingSoon: true, Position: 2},
		{ID: "old", Name: "Old", Href: "https://old.thejaayveeworld.com", Disabled: true, Position: 3},
	})

	ev, err := events.NewClient(upstream, "/api/events", time.Second, log)
	require.NoError(t, err)

	cfg := &config.Config{
		ListenPort:        ":0",
		RequestTimeout:    5 * time.Second,
		SessionCookieName: "jaayvee_sid",
	}

	sessions := referral.NewMemorySessions()
	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		TimeNow:       time.Now,
		Sessions:      sessions,
		SessionMode:   "memory",
		Ventures:      idx,
		Events:        ev,
		EventsBurst:   20,
		EventsPerMin:  60,
		ReloadTrigger: make(chan struct{}, 1),
	}

	srv := httptest.NewServer(New(cfg, log, d).Handler())
	t.Cleanup(srv.Close)
	return &testSite{srv: srv, sessions: sessions}
}

// visitor is a browser: it keeps cookies and never follows redirects.
func (s *testSite) visitor(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func getJSON(t *testing.T, c *http.Client, url string, into any) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp
}

type homeBody struct {
	Attribution *referral.Record `json:"attribution"`
	Ventures    []struct {
		ID          string `json:"id"`
		OutboundURL string `json:"outboundUrl"`
	} `json:"ventures"`
}

type referralBody struct {
	Current referral.Outbound `json:"current"`
	Record  *referral.Record  `json:"record"`
	History []referral.Record `json:"history"`
}

func upstreamEvents(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events":[{"id":"e1","title":"Gala","startDate":"2026-12-01","slug":"gala"},{"id":"e2","title":"No date"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScenario_ReferralFollowsVisitor(t *testing.T) {
	up := upstreamEvents(t)
	site := newTestSite(t, up.URL)
	alice := site.visitor(t)

	// Landing with a referral link.
	var home homeBody
	resp := getJSON(t, alice, site.srv.URL+"/?ref=alice", &home)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, home.Attribution)
	assert.Equal(t, "alice", home.Attribution.Token)
	assert.Equal(t, referral.SourceURL, home.Attribution.Source)

	ids := make([]string, 0, len(home.Ventures))
	for _, v := range home.Ventures {
		ids = append(ids, v.ID)
		if v.ID == "ease" {
			assert.Equal(t, "https://ease.thejaayveeworld.com/?ref=alice", v.OutboundURL)
		} else {
			assert.Empty(t, v.OutboundURL, v.ID)
		}
	}
	assert.Equal(t, []string{"talaash", "ease", "realestate"}, ids, "disabled ventures are hidden")

	// Clicking out with an event carries both parameters.
	resp = getJSON(t, alice, site.srv.URL+"/go/ease?event=e1", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://ease.thejaayveeworld.com/?event=e1&ref=alice", resp.Header.Get("Location"))

	// Coming back without parameters keeps the referral.
	home = homeBody{}
	getJSON(t, alice, site.srv.URL+"/", &home)
	require.NotNil(t, home.Attribution)
	assert.Equal(t, "alice", home.Attribution.Token)

	var ref referralBody
	getJSON(t, alice, site.srv.URL+"/api/referral", &ref)
	assert.Equal(t, referral.Outbound{Token: "alice", Source: referral.SourceURL}, ref.Current)
	require.NotNil(t, ref.Record)
	assert.Equal(t, "e1", ref.Record.EventID)
	assert.Len(t, ref.History, 2)

	// Booking links carry the referral.
	var evs struct {
		Events []events.Event `json:"events"`
		Error  string         `json:"error"`
	}
	getJSON(t, alice, site.srv.URL+"/ease/talaash/api/getEvents", &evs)
	assert.Empty(t, evs.Error)
	require.Len(t, evs.Events, 1)
	assert.Equal(t, up.URL+"/events/gala?event=e1&ref=alice", evs.Events[0].BookingURL)

	assert.Equal(t, 1, site.sessions.Count())
}

func TestScenario_OrganicVisitor(t *testing.T) {
	site := newTestSite(t, upstreamEvents(t).URL)
	bob := site.visitor(t)

	var ref referralBody
	getJSON(t, bob, site.srv.URL+"/api/referral", &ref)
	assert.Equal(t, referral.Outbound{Token: referral.TokenOrganic, Source: referral.SourceDirect}, ref.Current)
	assert.Nil(t, ref.Record)
	assert.Empty(t, ref.History)

	var home homeBody
	getJSON(t, bob, site.srv.URL+"/", &home)
	require.NotNil(t, home.Attribution)
	assert.True(t, home.Attribution.Organic())

	resp := getJSON(t, bob, site.srv.URL+"/go/ease", nil)
	assert.Equal(t, "https://ease.thejaayveeworld.com/?ref=organic", resp.Header.Get("Location"))
}

func TestScenario_SessionsAreIsolated(t *testing.T) {
	site := newTestSite(t, upstreamEvents(t).URL)
	alice, bob := site.visitor(t), site.visitor(t)

	getJSON(t, alice, site.srv.URL+"/?ref=alice", nil)
	getJSON(t, bob, site.srv.URL+"/?ref=bob", nil)

	var a, b referralBody
	getJSON(t, alice, site.srv.URL+"/api/referral", &a)
	getJSON(t, bob, site.srv.URL+"/api/referral", &b)
	assert.Equal(t, "alice", a.Current.Token)
	assert.Equal(t, "bob", b.Current.Token)
}

func TestOutboundSpecialCases(t *testing.T) {
	site := newTestSite(t, upstreamEvents(t).URL)
	c := site.visitor(t)

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/go/talaash", http.StatusFound, "/ease/talaash"},
		{"/go/unknown", http.StatusFound, "/"},
		{"/go/old", http.StatusFound, "/"},
		{"/go/realestate", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := getJSON(t, c, site.srv.URL+tt.path, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
}

func TestReferralContextAndClear(t *testing.T) {
	site := newTestSite(t, upstreamEvents(t).URL)
	c := site.visitor(t)
	getJSON(t, c, site.srv.URL+"/?ref=carol", nil)

	resp, err := c.Post(site.srv.URL+"/api/referral/context", "application/json",
		strings.NewReader(`{"userId":"u-42"}`))
	require.NoError(t, err)
	var rec referral.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "carol", rec.Token)
	assert.Equal(t, "u-42", rec.UserID)

	resp, err = c.Post(site.srv.URL+"/api/referral/context", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, site.srv.URL+"/api/referral", http.NoBody)
	require.NoError(t, err)
	resp, err = c.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var ref referralBody
	getJSON(t, c, site.srv.URL+"/api/referral", &ref)
	assert.Nil(t, ref.Record)
	assert.Equal(t, referral.TokenOrganic, ref.Current.Token)
	assert.Len(t, ref.History, 2, "history survives a clear")
}

func TestEventsRemoteFailure(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(down.Close)

	site := newTestSite(t, down.URL)
	var body map[string]any
	resp := getJSON(t, site.visitor(t), site.srv.URL+"/ease/talaash/api/getEvents", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "REMOTE_FAILED", body["error"])
	assert.Equal(t, []any{}, body["events"])
}

func TestOpsEndpoints(t *testing.T) {
	site := newTestSite(t, upstreamEvents(t).URL)
	c := site.visitor(t)

	var health map[string]any
	resp := getJSON(t, c, site.srv.URL+"/healthz", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])

	var ready map[string]any
	resp = getJSON(t, c, site.srv.URL+"/readyz", &ready)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, ready["ready"])

	resp, err := c.Post(site.srv.URL+"/reload", "", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = c.Post(site.srv.URL+"/reload", "", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "trigger channel is full")
}
