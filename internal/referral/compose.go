package referral

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidURL is matched by every *InvalidURLError.
var ErrInvalidURL = errors.New("referral: invalid outbound url")

// InvalidURLError reports a base URL that cannot carry a referral.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid outbound url %q: %s", e.URL, e.Reason)
}

func (e *InvalidURLError) Is(target error) bool { return target == ErrInvalidURL }

// Compose returns baseURL with its ref parameter set to token and, when
// eventID is not empty, its event parameter set to eventID.
// baseURL must be absolute.
func Compose(baseURL, token, eventID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", &InvalidURLError{URL: baseURL, Reason: err.Error()}
	}
	if !u.IsAbs() || u.Host == "" {
		return "", &InvalidURLError{URL: baseURL, Reason: "not an absolute url"}
	}

	q := u.Query()
	q.Set(ParamRef, token)
	if eventID != "" {
		q.Set(ParamEvent, eventID)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Outbound is the attribution attached to outbound links.
type Outbound struct {
	Token  string `json:"ref"`
	Source string `json:"source"`
}

// CurrentForOutbound reads the current record of store and falls back to
// organic/direct, so outbound links never carry an empty referral.
func CurrentForOutbound(ctx context.Context, store *Store) Outbound {
	out := Outbound{Token: TokenOrganic, Source: SourceDirect}
	if store == nil {
		return out
	}
	rec := store.Read(ctx)
	if rec == nil {
		return out
	}
	out.Token = rec.Token
	if rec.Source != "" {
		out.Source = rec.Source
	}
	return out
}
