package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/mw"
)

func init() { Register(registerEvents) }

func registerEvents(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.EventsBurst,
		RefillPerMin: d.EventsPerMin,
		TrustProxy:   d.TrustProxy,
		Now:          d.TimeNow,
		Rejected:     handlers.EventsRateLimited,
	}, d.Logger)

	r.With(limit).Get("/ease/talaash/api/getEvents", handlers.Events(d))
}
