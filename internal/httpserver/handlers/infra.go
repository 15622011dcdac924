package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/jaayvee/internal/domain"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	VenturesLoaded *int   `json:"ventures_loaded,omitempty"`
	LastReload     string `json:"last_reload,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type ventureHealth struct {
	Reachable bool             `json:"reachable"`
	Error     string           `json:"error,omitempty"`
	Clicks    map[string]int64 `json:"clicks,omitempty"`
}

type infraResponse struct {
	AttributionMode string                     `json:"attribution_mode"`
	Components      map[string]componentStatus `json:"components"`
	Ventures        map[string]ventureHealth   `json:"ventures"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		venturesCount := d.Ventures.Count()
		lastReload := d.Ventures.GetLastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"ventures": {
				OK:             venturesCount > 0,
				VenturesLoaded: &venturesCount,
				LastReload:     lastReloadStr,
			},
			"redis": checkRedis(d),
			"sessions": {
				OK:   d.Sessions != nil,
				Mode: d.SessionMode,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			AttributionMode: determineAttributionMode(components),
			Components:      components,
			Ventures:        ventureReport(ctx, d),
		})
	}
}

func ventureReport(ctx context.Context, d deps.Deps) map[string]ventureHealth {
	ventures := d.Ventures.GetEnabledVentures()
	probes := domain.ProbeVentures(ctx, ventures, d.ProbeTimeout)

	var clicks map[string]map[string]int64
	if d.Store != nil {
		ids := make([]string, 0, len(ventures))
		for _, v := range ventures {
			ids = append(ids, v.ID)
		}
		stats, err := d.Store.GetClickStats(ctx, ids)
		if err != nil {
			d.Logger.Warn("failed to read click stats", logger.Error(err))
		}
		clicks = stats
	}

	out := make(map[string]ventureHealth, len(ventures))
	for _, v := range ventures {
		h := ventureHealth{Reachable: true, Clicks: clicks[v.ID]}
		if err, probed := probes[v.ID]; probed && err != nil {
			h.Reachable = false
			h.Error = err.Error()
		}
		if v.ComingSoon {
			h.Reachable = false
		}
		out[v.ID] = h
	}
	return out
}

func determineAttributionMode(components map[string]componentStatus) string {
	if v, ok := components["ventures"]; ok && !v.OK {
		return "critical" // nothing to link to
	}
	if s, ok := components["sessions"]; ok && !s.OK {
		return "critical"
	}
	// Redis down = clicks and events cache lost, attribution still works in memory
	if r, ok := components["redis"]; ok && !r.OK {
		return "degraded"
	}
	return "nominal"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     d.SessionMode == "memory",
			Mode:   "disabled",
			Impact: "click-stats-disabled",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "sessions-and-click-stats-unavailable",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "click-stats-enabled",
	}
}
