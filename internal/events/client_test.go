package events

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/jaayvee/internal/logger"
)

func TestNormalizeShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bare array", body: `[{"id":"a","startDate":"2026-01-01"}]`, want: 1},
		{name: "events envelope", body: `{"events":[{"id":"a","startsAt":"2026-01-01"},{"id":"b"}]}`, want: 1},
		{name: "data envelope", body: `{"success":true,"data":[{"eventId":7,"date":"2026-01-01"},{"id":"c","start":"x"}]}`, want: 2},
		{name: "garbage", body: `<html>`, want: 0},
		{name: "unknown envelope", body: `{"items":[{"id":"a","startDate":"2026-01-01"}]}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Normalize([]byte(tt.body)), tt.want)
		})
	}
}

func TestNormalizeFields(t *testing.T) {
	events := Normalize([]byte(`{"data":[
		{"id":"e1","name":"Garba Night","startsAt":"2026-10-20T18:00:00Z","banner":"https://cdn/x.png","venue":{"name":"Town Hall"},"slug":"garba-night"},
		{"startDate":"2026-11-01","venue":{"city":"Pune","state":"MH"}},
		{"id":"e3","startDate":"2026-12-01","venueName":"Expo Center"}
	]}`))

	require.Len(t, events, 3)
	assert.Equal(t, Event{
		ID:        "e1",
		Title:     "Garba Night",
		StartDate: "2026-10-20T18:00:00Z",
		BannerURL: "https://cdn/x.png",
		Venue:     "Town Hall",
		Slug:      "garba-night",
	}, events[0])
	assert.Equal(t, "1", events[1].ID)
	assert.Equal(t, "Untitled Event", events[1].Title)
	assert.Equal(t, "Pune, MH", events[1].Venue)
	assert.Equal(t, "Expo Center", events[2].Venue)
}

func TestFetchForwardsRef(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"e1","startDate":"2026-01-01"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "/api/events", time.Second, logger.NewNop())
	require.NoError(t, err)

	events, err := client.Fetch(context.Background(), "partner42")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "partner42", gotQuery.Get("ref"))

	_, err = client.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, gotQuery.Has("ref"))
}

func TestFetchRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "/api/events", time.Second, logger.NewNop())
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "")
	assert.True(t, errors.Is(err, ErrRemote))
}

func TestNewClientRejectsRelativeBase(t *testing.T) {
	_, err := NewClient("talaash.thejaayveeworld.com", "/api/events", time.Second, logger.NewNop())
	assert.Error(t, err)
}

func TestStampBooking(t *testing.T) {
	events := StampBooking([]Event{
		{ID: "e1", Slug: "garba-night"},
		{ID: "e2"},
	}, "https://talaash.thejaayveeworld.com", "partner42")

	assert.Equal(t, "https://talaash.thejaayveeworld.com/events/garba-night?event=e1&ref=partner42", events[0].BookingURL)
	assert.Equal(t, "https://talaash.thejaayveeworld.com/events/e2?event=e2&ref=partner42", events[1].BookingURL)
}

func TestNormalizeNumericIDs(t *testing.T) {
	events := Normalize([]byte(`[{"id":1234567,"startDate":"2026-01-01"},{"id":42,"startDate":"2026-01-02"}]`))

	require.Len(t, events, 2)
	assert.Equal(t, "1234567", events[0].ID)
	assert.Equal(t, "42", events[1].ID)

	StampBooking(events, "https://talaash.thejaayveeworld.com", "p42")
	assert.Equal(t, "https://talaash.thejaayveeworld.com/events/1234567?event=1234567&ref=p42", events[0].BookingURL)
}

func TestFetchSurvivesCancelledCaller(t *testing.T) {
	var hits atomic.Int32
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case arrived <- struct{}{}:
		default:
		}
		<-release
		_, _ = w.Write([]byte(`[{"id":"e1","startDate":"2026-01-01"}]`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "/api/events", 5*time.Second, logger.NewNop())
	require.NoError(t, err)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.Fetch(firstCtx, "p")
		firstErr <- err
	}()
	<-arrived

	type result struct {
		events []Event
		err    error
	}
	second := make(chan result, 1)
	go func() {
		events, err := client.Fetch(context.Background(), "p")
		second <- result{events, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	// let the second caller join the upstream request still in flight
	time.Sleep(50 * time.Millisecond)
	close(release)

	res := <-second
	require.NoError(t, res.err)
	require.Len(t, res.events, 1)
	assert.Equal(t, "e1", res.events[0].ID)
	assert.Equal(t, int32(1), hits.Load())
}
