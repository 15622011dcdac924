package domain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbeVentures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ventures := []*Venture{
		{ID: "up", Href: srv.URL},
		{ID: "down", Href: "http://127.0.0.1:1"},
		{ID: "soon", Href: srv.URL, ComingSoon: true},
		{ID: "internal", InternalPath: "/ease/talaash"},
	}

	results := ProbeVentures(context.Background(), ventures, time.Second)

	if len(results) != 2 {
		t.Fatalf("expected 2 probed ventures, got %d", len(results))
	}
	if err := results["up"]; err != nil {
		t.Errorf("up should be reachable, got %v", err)
	}
	if err := results["down"]; err == nil {
		t.Error("down should be unreachable")
	}
	if _, ok := results["soon"]; ok {
		t.Error("coming-soon ventures must not be probed")
	}
}
