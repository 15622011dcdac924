package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/jaayvee/internal/events"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/mw"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
)

type eventsResponse struct {
	Events []events.Event `json:"events"`
	Error  string         `json:"error,omitempty"`
}

// Events proxies the upstream event listing. Failures never surface as an
// HTTP error: the page always gets a (possibly empty) listing.
func Events(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if d.Events == nil {
			writeJSON(w, http.StatusOK, eventsResponse{Events: []events.Event{}, Error: "UNEXPECTED"})
			return
		}

		ref := mw.RefFromCookie(r)
		if ref == "" {
			// first request of a visit: the bridge cookie is not sent back yet
			ref = referral.TokenFromURL(r.URL)
		}
		log := d.Logger.With(logger.String("ref", ref))

		list, cached := cachedEvents(r, d, log, ref)
		if !cached {
			fetched, err := d.Events.Fetch(ctx, ref)
			if err != nil {
				code := "UNEXPECTED"
				if errors.Is(err, events.ErrRemote) {
					code = "REMOTE_FAILED"
				}
				log.Warn("events proxy failed",
					logger.String("code", code),
					logger.Error(err))
				writeJSON(w, http.StatusOK, eventsResponse{Events: []events.Event{}, Error: code})
				return
			}
			list = fetched
			storeEvents(r, d, log, ref, list)
		}

		out := referral.CurrentForOutbound(ctx, sessionStore(r, d))
		token := out.Token
		if token == referral.TokenOrganic && ref != "" {
			token = ref
		}

		writeJSON(w, http.StatusOK, eventsResponse{
			Events: events.StampBooking(list, d.Events.Base(), token),
		})
	}
}

// EventsRateLimited answers a throttled listing request in the listing
// shape so the page renders an empty list.
func EventsRateLimited(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, eventsResponse{Events: []events.Event{}, Error: "RATE_LIMITED"})
}

func cachedEvents(r *http.Request, d deps.Deps, log logger.Logger, ref string) ([]events.Event, bool) {
	if d.Store == nil || d.EventsCacheTTL <= 0 {
		return nil, false
	}
	data, err := d.Store.GetCachedEvents(r.Context(), ref)
	if err != nil {
		log.Warn("events cache read failed", logger.Error(err))
		return nil, false
	}
	if data == nil {
		return nil, false
	}
	var list []events.Event
	if err := json.Unmarshal(data, &list); err != nil {
		log.Warn("events cache entry is corrupt", logger.Error(err))
		return nil, false
	}
	return list, true
}

func storeEvents(r *http.Request, d deps.Deps, log logger.Logger, ref string, list []events.Event) {
	if d.Store == nil || d.EventsCacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := d.Store.CacheEvents(r.Context(), ref, data, d.EventsCacheTTL); err != nil {
		log.Warn("events cache write failed", logger.Error(err))
	}
}
