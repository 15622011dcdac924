package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/jaayvee/internal/domain"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
)

type ventureTile struct {
	*domain.Venture
	OutboundURL string `json:"outboundUrl,omitempty"`
}

type homeResponse struct {
	Title      string           `json:"title"`
	Attributed *referral.Record `json:"attribution,omitempty"`
	Ventures   []ventureTile    `json:"ventures"`
}

// Home serves the linktree: the ventures in catalogue order, with outbound
// links already carrying the visitor's referral.
func Home(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rec := referral.Initialize(ctx, pageContext(r, d), "", "")

		token := referral.TokenOrganic
		if rec != nil {
			token = rec.Token
		}

		ventures := d.Ventures.GetEnabledVentures()
		tiles := make([]ventureTile, 0, len(ventures))
		for _, v := range ventures {
			tile := ventureTile{Venture: v}
			if v.External() && v.Available() {
				link, err := referral.Compose(v.Href, token, "")
				if err != nil {
					d.Logger.Error("venture href cannot carry a referral",
						logger.String("venture", v.ID),
						logger.Error(err))
				} else {
					tile.OutboundURL = link
				}
			}
			tiles = append(tiles, tile)
		}

		writeJSON(w, http.StatusOK, homeResponse{
			Title:      "The Jaayvee World",
			Attributed: rec,
			Ventures:   tiles,
		})
	}
}
