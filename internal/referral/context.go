package referral

import "net/url"

// ExecutionContext describes where attribution runs.
//
// A page context exposes the visited URL and the session store. Callers
// without a page (background jobs, API-only requests) use NoContext, and
// every attribution operation becomes a silent no-op.
type ExecutionContext interface {
	Location() (*url.URL, bool)
	Session() *Store
}

// NoContext is the ExecutionContext of callers that have no page.
type NoContext struct{}

func (NoContext) Location() (*url.URL, bool) { return nil, false }
func (NoContext) Session() *Store            { return nil }

// PageContext is the ExecutionContext of a page request.
type PageContext struct {
	URL   *url.URL
	Store *Store
}

func (p PageContext) Location() (*url.URL, bool) {
	if p.URL == nil || p.Store == nil {
		return nil, false
	}
	return p.URL, true
}

func (p PageContext) Session() *Store { return p.Store }
