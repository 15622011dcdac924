package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
)

type referralResponse struct {
	Current referral.Outbound `json:"current"`
	Record  *referral.Record  `json:"record"`
	History []referral.Record `json:"history"`
}

type contextRequest struct {
	EventID string `json:"eventId"`
	UserID  string `json:"userId"`
}

// GetReferral returns the visitor's attribution and its history.
func GetReferral(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := sessionStore(r, d)
		if store == nil {
			writeJSON(w, http.StatusOK, referralResponse{
				Current: referral.CurrentForOutbound(ctx, nil),
				History: []referral.Record{},
			})
			return
		}

		writeJSON(w, http.StatusOK, referralResponse{
			Current: referral.CurrentForOutbound(ctx, store),
			Record:  store.Read(ctx),
			History: store.ReadHistory(ctx),
		})
	}
}

// SetReferralContext folds an event or an authenticated user id into the
// visitor's attribution. The referral token itself is never changed here:
// query parameters of the call are not part of the page and are ignored.
func SetReferralContext(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body contextRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_BODY"})
			return
		}
		body.EventID = strings.TrimSpace(body.EventID)
		body.UserID = strings.TrimSpace(body.UserID)
		if body.EventID == "" && body.UserID == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "EMPTY_CONTEXT"})
			return
		}

		store := sessionStore(r, d)
		if store == nil {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}

		ec := referral.PageContext{URL: &url.URL{Path: r.URL.Path}, Store: store}
		rec := referral.Initialize(r.Context(), ec, body.EventID, body.UserID)
		writeJSON(w, http.StatusOK, rec)
	}
}

// ClearReferral drops the current attribution; the history is kept.
func ClearReferral(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store := sessionStore(r, d); store != nil {
			store.Clear(r.Context())
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
