package redis

import "fmt"

const (
	// KeyPrefixVenture is the prefix for venture keys
	KeyPrefixVenture = "jaayvee:venture:"
	// KeyAllVentures is the key for the set of all venture IDs
	KeyAllVentures = "jaayvee:ventures:all"
	// KeyPrefixSession is the prefix for session-scoped attribution storage
	KeyPrefixSession = "jaayvee:session:"
	// KeyPrefixClicks is the prefix for outbound click counters
	KeyPrefixClicks = "jaayvee:clicks:"
	// KeyPrefixEvents is the prefix for cached event listings
	KeyPrefixEvents = "jaayvee:events:"
)

// VentureKey returns the Redis key for a venture by ID
func VentureKey(id string) string {
	return KeyPrefixVenture + id
}

// AllVenturesKey returns the key for the set of all venture IDs
func AllVenturesKey() string {
	return KeyAllVentures
}

// SessionKey returns the Redis key holding one storage slot of a session.
// Example: jaayvee:session:5f1c…:jaayvee_referral
func SessionKey(sessionID, slot string) string {
	return fmt.Sprintf("%s%s:%s", KeyPrefixSession, sessionID, slot)
}

// ClicksKey returns the hash of click counts per referral token for a venture
func ClicksKey(ventureID string) string {
	return KeyPrefixClicks + ventureID
}

// EventsKey returns the cache key of the event listing fetched for a referral
func EventsKey(ref string) string {
	if ref == "" {
		ref = "_"
	}
	return KeyPrefixEvents + ref
}

// ExtractVentureID extracts the venture ID from a Redis key
func ExtractVentureID(key string) (string, error) {
	if len(key) <= len(KeyPrefixVenture) {
		return "", fmt.Errorf("invalid venture key: %s", key)
	}
	return key[len(KeyPrefixVenture):], nil
}
