package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Ventures int  `json:"ventures"`
}

// Readyz reports ready once the catalogue holds at least one venture.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := d.Ventures.Count()
		status := http.StatusOK
		if n == 0 {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: n > 0, Ventures: n})
	}
}
