// Package events proxies the Talaash event listing.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
	"github.com/MrSnakeDoc/jaayvee/internal/utils"
)

// maxPayload caps the upstream body read into memory.
const maxPayload = 4 << 20

// ErrRemote reports a non-2xx answer or a transport failure upstream.
var ErrRemote = errors.New("events: remote failed")

// Event is the normalized listing entry served to the site.
type Event struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate,omitempty"`
	BannerURL  string `json:"bannerUrl,omitempty"`
	Venue      string `json:"venue,omitempty"`
	Slug       string `json:"slug,omitempty"`
	BookingURL string `json:"bookingUrl,omitempty"`
}

// Client fetches events from the upstream API.
type Client struct {
	base       *url.URL
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger
	flight     singleflight.Group
}

// NewClient creates a client for base+endpoint.
func NewClient(base, endpoint string, timeout time.Duration, log logger.Logger) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("invalid events api base %q", base)
	}
	return &Client{
		base:       u,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		logger:     log,
	}, nil
}

// Base returns the upstream origin, used to build booking links.
func (c *Client) Base() string {
	return c.base.Scheme + "://" + c.base.Host
}

// Fetch retrieves the listing, forwarding ref as a query parameter when set.
// Concurrent fetches for the same ref share one upstream request. The shared
// request is detached from any single caller: a caller giving up only stops
// its own wait.
func (c *Client) Fetch(ctx context.Context, ref string) ([]Event, error) {
	ch := c.flight.DoChan(ref, func() (any, error) {
		fetchCtx, cancel := c.detach(ctx)
		defer cancel()
		return c.fetch(fetchCtx, ref)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		list := res.Val.([]Event)
		if res.Shared {
			// callers stamp booking links in place
			list = slices.Clone(list)
		}
		return list, nil
	}
}

func (c *Client) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if c.timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, c.timeout)
}

func (c *Client) fetch(ctx context.Context, ref string) ([]Event, error) {
	remote, err := c.base.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid events endpoint %q: %w", c.endpoint, err)
	}
	if ref != "" {
		q := remote.Query()
		q.Set(referral.ParamRef, ref)
		remote.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("events upstream answered with an error",
			logger.String("url", remote.String()),
			logger.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}

	return Normalize(body), nil
}

// Normalize accepts [...], {"events": [...]} or {"data": [...]} and maps each
// entry. Entries without a start date are dropped; undecodable payloads
// yield an empty listing.
func Normalize(body []byte) []Event {
	raw := extractList(body)
	events := make([]Event, 0, len(raw))

	for i, item := range raw {
		e := Event{
			ID:        firstString(item, "id", "eventId"),
			Title:     firstString(item, "title", "name"),
			StartDate: firstString(item, "startDate", "startsAt", "start_time", "start", "date"),
			EndDate:   firstString(item, "endDate", "endsAt", "end_time", "end"),
			BannerURL: firstString(item, "bannerUrl", "banner", "imageUrl", "cover"),
			Venue:     venueOf(item),
			Slug:      firstString(item, "slug", "eventSlug", "urlSlug"),
		}
		if e.StartDate == "" {
			continue
		}
		if e.ID == "" {
			e.ID = fmt.Sprint(i)
		}
		if e.Title == "" {
			e.Title = "Untitled Event"
		}
		events = append(events, e)
	}

	return events
}

func extractList(body []byte) []map[string]any {
	var list []map[string]any
	if err := json.Unmarshal(body, &list); err == nil {
		return list
	}

	var wrapped struct {
		Events []map[string]any `json:"events"`
		Data   []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil
	}
	if wrapped.Events != nil {
		return wrapped.Events
	}
	return wrapped.Data
}

// firstString returns the first key holding a string or number.
func firstString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// venueOf flattens a venue that may be a string or a {name, city, state} object.
func venueOf(item map[string]any) string {
	switch v := item["venue"].(type) {
	case string:
		return v
	case map[string]any:
		if name := firstString(v, "name"); name != "" {
			return name
		}
		parts := make([]string, 0, 2)
		for _, k := range []string{"city", "state"} {
			if s := firstString(v, k); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return firstString(item, "venueName", "location")
}

// StampBooking sets BookingURL on every event: the upstream event page
// carrying the referral token and the event id.
func StampBooking(events []Event, base, ref string) []Event {
	for i := range events {
		e := &events[i]
		key := e.Slug
		if key == "" {
			key = e.ID
		}
		link, err := referral.Compose(base+"/events/"+url.PathEscape(key), ref, e.ID)
		if err != nil {
			continue
		}
		e.BookingURL = link
	}
	return events
}
