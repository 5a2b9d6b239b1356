// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package searx queries a SearXNG instance for candidate papers. The
// query is the only stage whose failure aborts a pipeline run: without a
// candidate list there is nothing to process.
package searx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/servus-altissimi/researcher/internal/httputil"
	"github.com/servus-altissimi/researcher/internal/logbuf"
	"github.com/servus-altissimi/researcher/pkg/types"
)

// standardRanges are the time_range values SearXNG instances accept.
var standardRanges = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
}

// Client queries one SearXNG instance.
type Client struct {
	HTTP *http.Client
	Log  *logbuf.Logger
}

// searchResponse is the SearXNG JSON envelope.
type searchResponse struct {
	Results []types.Candidate `json:"results"`
}

// Search issues one query for subject and returns the raw candidates in
// instance order. A non-2xx response is fatal and the error carries the
// status, request parameters, and response body for diagnosis.
func (c *Client) Search(ctx context.Context, subject string, cfg types.SearchConfig) ([]types.Candidate, error) {
	c.Log.Log("Searching SearXNG instance")

	params := url.Values{
		"q":          {subject},
		"format":     {"json"},
		"categories": {cfg.Category},
		"engines":    {cfg.Engines},
	}
	if cfg.TimeRange != "" {
		if tr, ok := c.normalizeTimeRange(cfg.TimeRange); ok {
			params.Set("time_range", tr)
		}
	}

	reqURL := strings.TrimSuffix(cfg.Instance, "/") + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 2)
	if err != nil {
		return nil, fmt.Errorf("searxng request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.Log.Logf("SearXNG request failed: status %d, url %s", resp.StatusCode, reqURL)
		return nil, fmt.Errorf("searxng returned HTTP %d (params %s): %s",
			resp.StatusCode, params.Encode(), strings.TrimSpace(string(body)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing searxng response: %w", err)
	}

	c.Log.Logf("Found %d results from SearXNG", len(sr.Results))
	return sr.Results, nil
}

// normalizeTimeRange maps a requested range onto what SearXNG accepts.
// Multi-year ranges like "5year" collapse to "year" with a warning, since
// downstream aggregators support at most twelve months. Unrecognized
// values drop the filter entirely. The second return value reports
// whether a filter should be applied.
func (c *Client) normalizeTimeRange(v string) (string, bool) {
	if years, ok := multiYear(v); ok {
		c.Log.Logf("Warning: multi-year range '%dyear' requested; SearXNG supports day, week, month, year", years)
		c.Log.Log("   Falling back to 'year' (last 12 months)")
		return "year", true
	}
	if standardRanges[v] {
		c.Log.Logf("Applying time filter: %s", v)
		return v, true
	}
	c.Log.Logf("Warning: invalid time range '%s'; valid options: day, week, month, year", v)
	c.Log.Log("   Continuing without time filter")
	return "", false
}

// multiYear reports whether v is of the form "<N>year" with N numeric.
func multiYear(v string) (int, bool) {
	if !strings.HasSuffix(v, "year") || len(v) <= 4 {
		return 0, false
	}
	n, err := strconv.Atoi(v[:len(v)-4])
	if err != nil {
		return 0, false
	}
	return n, true
}
