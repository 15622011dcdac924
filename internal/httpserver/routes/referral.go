package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/handlers"
)

func init() { Register(registerReferral) }

func registerReferral(r chi.Router, d deps.Deps) {
	r.Route("/api/referral", func(r chi.Router) {
		r.Get("/", handlers.GetReferral(d))
		r.Delete("/", handlers.ClearReferral(d))
		r.Post("/context", handlers.SetReferralContext(d))
	})
}
