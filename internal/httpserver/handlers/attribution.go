package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/mw"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
)

// sessionStore returns the attribution store of the visitor behind r,
// or nil when the request carries no session.
func sessionStore(r *http.Request, d deps.Deps) *referral.Store {
	sid := mw.SessionID(r.Context())
	if sid == "" || d.Sessions == nil {
		return nil
	}
	s := referral.NewStore(d.Sessions.Backend(sid), d.Logger)
	if d.TimeNow != nil {
		s.WithClock(d.TimeNow)
	}
	return s
}

// pageContext describes a page load. Requests without a session get
// NoContext and attribution is skipped for them.
func pageContext(r *http.Request, d deps.Deps) referral.ExecutionContext {
	store := sessionStore(r, d)
	if store == nil {
		return referral.NoContext{}
	}
	return referral.PageContext{URL: r.URL, Store: store}
}
