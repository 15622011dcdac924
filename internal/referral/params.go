package referral

import "net/url"

const (
	// ParamRef is the preferred query parameter carrying a referral token.
	ParamRef = "ref"
	// ParamReferral is accepted when ParamRef is absent or empty.
	ParamReferral = "referral"
	// ParamEvent carries the event identifier on outbound links.
	ParamEvent = "event"
)

// TokenFromURL returns the referral token carried by u, or "" when there is none.
func TokenFromURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	// ParseQuery keeps the well-formed pairs when a later pair is malformed.
	q, _ := url.ParseQuery(u.RawQuery)
	if v := q.Get(ParamRef); v != "" {
		return v
	}
	return q.Get(ParamReferral)
}

// TokenFromRawURL parses raw and delegates to TokenFromURL.
// Unparsable input yields "".
func TokenFromRawURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return TokenFromURL(u)
}
