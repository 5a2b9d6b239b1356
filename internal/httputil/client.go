// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across pipeline stages:
// client construction with a browser User-Agent, 429 retry, and a
// rate-limited client for the metadata APIs.
package httputil

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// userAgents is the pool of browser User-Agent strings. One is picked at
// random per client so repeated runs do not present a fixed fingerprint
// to scraped pages.
var userAgents = [...]string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64) AppleWebKit/537.36",
	"Mozilla/5.0 (Linux; Android 14; Pixel 7) AppleWebKit/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/537.36",
	"Mozilla/5.0 (Windows NT 6.1; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 11_6) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
	"Mozilla/5.0 (Linux; Android 13; SM-G991B) AppleWebKit/537.36",
	"Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 12_5_1) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; Fedora; Linux x86_64) AppleWebKit/537.36",
	"Mozilla/5.0 (Linux; Android 12; OnePlus 9) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_6) AppleWebKit/537.36",
	"Mozilla/5.0 (Linux; Android 11; Nokia X20) AppleWebKit/537.36",
	"Mozilla/5.0 (Windows NT 6.3; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; CrOS x86_64 15604.45.0) AppleWebKit/537.36",
	"Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_13_6) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_6) AppleWebKit/537.36 Edg/124.0",
}

// RandomUserAgent returns one User-Agent from the pool.
func RandomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

// uaTransport sets a default User-Agent on every request that does not
// already carry one.
type uaTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.agent)
	}
	return t.base.RoundTrip(req)
}

// NewClient returns an HTTP client with the given timeout whose requests
// carry userAgent unless a request sets its own.
func NewClient(timeout time.Duration, userAgent string) *http.Client {
	if userAgent == "" {
		userAgent = RandomUserAgent()
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &uaTransport{
			base:  http.DefaultTransport,
			agent: userAgent,
		},
	}
}

// PacedClient wraps an HTTP client with a token-bucket limiter so a burst
// of candidates cannot hammer the metadata APIs.
type PacedClient struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewPacedClient builds a PacedClient allowing perSecond requests with a
// burst of one.
func NewPacedClient(client *http.Client, perSecond float64) *PacedClient {
	if perSecond <= 0 {
		perSecond = 2
	}
	return &PacedClient{
		Client:  client,
		Limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Do waits for limiter capacity, then executes the request.
func (p *PacedClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := p.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return p.Client.Do(req.WithContext(ctx))
}
