package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mileusna/useragent"

	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
)

// Outbound redirects the visitor to a venture, carrying the referral
// (and ?event= when given) to the sibling domain.
func Outbound(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := strings.ToLower(chi.URLParam(r, "ventureID"))
		eventID := strings.TrimSpace(r.URL.Query().Get(referral.ParamEvent))

		venture, ok := d.Ventures.GetVenture(id)
		if !ok || venture.Disabled {
			d.Logger.Debug("unknown venture, redirecting home",
				logger.String("venture", id))
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		if venture.ComingSoon {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "COMING_SOON"})
			return
		}

		if !venture.External() {
			http.Redirect(w, r, venture.InternalPath, http.StatusFound)
			return
		}

		// Initialize still answers when storage is down; prefer its result.
		out := referral.Outbound{Token: referral.TokenOrganic, Source: referral.SourceDirect}
		if rec := referral.Initialize(ctx, pageContext(r, d), eventID, ""); rec != nil {
			out = referral.Outbound{Token: rec.Token, Source: rec.Source}
		}

		link, err := referral.Compose(venture.Href, out.Token, eventID)
		if err != nil {
			d.Logger.Error("venture href cannot carry a referral",
				logger.String("venture", venture.ID),
				logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		ua := useragent.Parse(r.UserAgent())
		if d.Store != nil && !ua.Bot {
			if err := d.Store.RecordClick(ctx, venture.ID, out.Token); err != nil {
				d.Logger.Warn("failed to record click",
					logger.String("venture", venture.ID),
					logger.Error(err))
			}
		}

		d.Logger.Info("outbound redirect",
			logger.String("venture", venture.ID),
			logger.String("ref", out.Token),
			logger.String("source", out.Source),
			logger.String("device", deviceType(ua)),
			logger.Bool("bot", ua.Bot))

		http.Redirect(w, r, link, http.StatusFound)
	}
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}
