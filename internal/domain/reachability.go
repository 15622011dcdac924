package domain

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"
)

// CheckReachable issues a HEAD request against rawURL and reports whether
// the host answers over a valid TLS connection. Any HTTP status counts.
func CheckReachable(ctx context.Context, rawURL string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 0,
			}).DialContext,
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("venture unreachable: %w", err)
	}
	_ = resp.Body.Close()

	return nil
}

// ProbeVentures checks every available external venture and returns the
// error per venture ID (nil when reachable).
func ProbeVentures(ctx context.Context, ventures []*Venture, timeout time.Duration) map[string]error {
	results := make(map[string]error, len(ventures))
	for _, v := range ventures {
		if !v.External() || !v.Available() {
			continue
		}
		results[v.ID] = CheckReachable(ctx, v.Href, timeout)
	}
	return results
}
