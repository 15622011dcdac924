package domain

import "time"

// Venture is one affiliated sub-brand the front door links out to.
//
// A venture is either external (Href on a sibling sub-domain, reached
// through an outbound redirect carrying the referral) or internal
// (InternalPath served under this site).
type Venture struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier, a URL-safe slug.
	// Example: talaash, realestate
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// LogoURL is a site-relative or absolute image URL.
	LogoURL string `json:"logoUrl,omitempty"`

	// ─────────────────────────────
	// Destination
	// ─────────────────────────────

	// Href is the absolute external URL. Empty for internal ventures.
	Href string `json:"href,omitempty"`

	// InternalPath is the path under this site. Empty for external ventures.
	InternalPath string `json:"internalPath,omitempty"`

	// ComingSoon disables the link while keeping the tile visible.
	ComingSoon bool `json:"comingSoon"`

	// Position keeps the catalogue order.
	Position int `json:"position"`

	// ─────────────────────────────
	// Provenance & lifecycle
	// ─────────────────────────────

	// Sources indicates where this venture was discovered from.
	Sources []string `json:"sources,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Disabled marks a venture dropped from the catalogue.
	// It may be garbage-collected later.
	Disabled bool `json:"disabled"`
}

// External reports whether the venture lives on another domain.
func (v *Venture) External() bool {
	return v.Href != ""
}

// Available reports whether visitors may follow the venture link.
func (v *Venture) Available() bool {
	return !v.Disabled && !v.ComingSoon
}
