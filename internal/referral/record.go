// Package referral tracks which affiliate sent a visitor across page loads
// and outbound redirects to sibling ventures.
package referral

const (
	// TokenOrganic is used when no referrer can be determined.
	TokenOrganic = "organic"

	// SourceURL marks a token captured from the page query string.
	SourceURL = "url"
	// SourceDirect marks an organic visit where no capture occurred.
	SourceDirect = "direct"

	// KeyCurrent holds the JSON-encoded current Record.
	KeyCurrent = "jaayvee_referral"
	// KeyHistory holds the JSON-encoded history log.
	KeyHistory = "jaayvee_referral_history"

	// HistoryLimit is the number of snapshots kept in the history log.
	HistoryLimit = 10
)

// Record is the attribution of a single browser session.
//
// JSON field names match the session storage layout used by the
// client-side tracker, so both sides can read each other's data.
type Record struct {
	// Token names the referrer. Never empty.
	Token string `json:"ref"`

	// Source is SourceURL or SourceDirect.
	Source string `json:"source"`

	// CapturedAt is refreshed on every write (milliseconds since epoch).
	CapturedAt int64 `json:"timestamp"`

	// EventID ties the attribution to a booking/event context.
	EventID string `json:"eventId,omitempty"`

	// UserID is filled in once the visitor authenticates.
	UserID string `json:"userId,omitempty"`
}

// Organic reports whether the record carries the default attribution.
func (r *Record) Organic() bool {
	return r == nil || r.Token == TokenOrganic
}
