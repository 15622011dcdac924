package deps

import (
	"time"

	"github.com/MrSnakeDoc/jaayvee/internal/events"
	"github.com/MrSnakeDoc/jaayvee/internal/index"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
	redisstore "github.com/MrSnakeDoc/jaayvee/internal/store/redis"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time         // for testing, defaults to time.Now
	AllowedHosts   []string                 // Host headers allowed to trigger a reload
	AllowedCIDRS   []string                 // IPs allowed to access ops endpoints
	TrustProxy     bool                     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Sessions       referral.SessionProvider // per-session attribution storage
	SessionMode    string                   // "redis" | "memory", reported by /infra
	Store          *redisstore.Store        // nil when running without Redis
	Ventures       *index.MemoryIndex       // ventures catalogue
	Events         *events.Client           // event-listing upstream
	EventsCacheTTL time.Duration            // 0 disables the events cache
	EventsBurst    int                      // events proxy rate limit burst
	EventsPerMin   int                      // events proxy rate limit refill per minute
	ProbeTimeout   time.Duration            // venture reachability probe timeout
	ReloadTrigger  chan struct{}            // Channel to trigger manual catalogue reload
}
