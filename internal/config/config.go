package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout enforced by the router
	Environment     string        // "development" | "production"

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Ventures catalogue
	VenturesFile   string        // path to ventures.yaml
	ReloadInterval time.Duration // interval to reload the catalogue (default: 24h)
	GCInterval     time.Duration // interval to run garbage collection (default: 24h)
	ProbeTimeout   time.Duration // timeout of venture reachability probes in /infra
	WatchVentures  bool          // reload as soon as the ventures file changes on disk

	// Attribution
	SecureCookies     bool          // Secure attribute on ref/session cookies (production)
	SessionCookieName string        // cookie carrying the visitor session id
	SessionTTL        time.Duration // idle lifetime of server-side session storage

	// Event-listing proxy
	EventsAPIBase  string        // ex: https://talaash.thejaayveeworld.com
	EventsEndpoint string        // ex: /api/events
	EventsTimeout  time.Duration // upstream timeout
	EventsCacheTTL time.Duration // 0 disables caching
	EventsBurst    int           // rate limit burst per client IP
	EventsPerMin   int           // rate limit refill per client IP per minute

	// Redis (optional: empty address => in-memory sessions, no mirror)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict /reload to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables take precedence over it.
func Load() *Config {
	_ = godotenv.Load() // optional, production usually has no .env

	env := strings.ToLower(getenv("JAAYVEE_ENV", "development"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("JAAYVEE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("JAAYVEE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("JAAYVEE_REQUEST_TIMEOUT", 10*time.Second),
		Environment:     env,

		// Logging
		LogLevel:  getenv("JAAYVEE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("JAAYVEE_PRETTY_LOG", env != "production"),

		// Ventures
		VenturesFile:   getenv("JAAYVEE_VENTURES_FILE", "/app/ventures.yaml"),
		ReloadInterval: mustDuration("JAAYVEE_RELOAD_INTERVAL", 24*time.Hour),
		GCInterval:     mustDuration("JAAYVEE_GC_INTERVAL", 24*time.Hour),
		ProbeTimeout:   mustDuration("JAAYVEE_PROBE_TIMEOUT", 500*time.Millisecond),
		WatchVentures:  mustBool("JAAYVEE_WATCH_VENTURES", true),

		// Attribution
		SecureCookies:     mustBool("JAAYVEE_SECURE_COOKIES", env == "production"),
		SessionCookieName: getenv("JAAYVEE_SESSION_COOKIE", "jaayvee_sid"),
		SessionTTL:        mustDuration("JAAYVEE_SESSION_TTL", 24*time.Hour),

		// Event-listing proxy
		EventsAPIBase:  getenv("JAAYVEE_EVENTS_API_BASE", "https://talaash.thejaayveeworld.com"),
		EventsEndpoint: getenv("JAAYVEE_EVENTS_ENDPOINT", "/api/events"),
		EventsTimeout:  mustDuration("JAAYVEE_EVENTS_TIMEOUT", 5*time.Second),
		EventsCacheTTL: mustDuration("JAAYVEE_EVENTS_CACHE_TTL", time.Minute),
		EventsBurst:    getenvInt("JAAYVEE_EVENTS_BURST", 20),
		EventsPerMin:   getenvInt("JAAYVEE_EVENTS_PER_MIN", 60),

		// Redis settings
		RedisAddr:             getenv("JAAYVEE_REDIS_ADDR", ""),
		RedisUser:             getenv("JAAYVEE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("JAAYVEE_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("JAAYVEE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("JAAYVEE_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("JAAYVEE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("JAAYVEE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("JAAYVEE_TRUST_PROXY", true),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.RedisEnabled() && c.RedisPasswordRequired && c.RedisPassword == "" {
		return fmt.Errorf("JAAYVEE_REDIS_PASSWORD is required when JAAYVEE_REDIS_PASSWORD_REQUIRED=true")
	}
	if !strings.HasPrefix(c.EventsAPIBase, "http://") && !strings.HasPrefix(c.EventsAPIBase, "https://") {
		return fmt.Errorf("JAAYVEE_EVENTS_API_BASE must be an absolute http(s) url, got %q", c.EventsAPIBase)
	}
	if c.SessionCookieName == "" || c.SessionCookieName == "ref" {
		return fmt.Errorf("JAAYVEE_SESSION_COOKIE must be set and differ from \"ref\"")
	}
	if c.ReloadInterval <= 0 || c.GCInterval <= 0 {
		return fmt.Errorf("reload and gc intervals must be > 0")
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
