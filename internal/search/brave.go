package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const braveURL = "https://api.search.brave.com"

// Brave uses the Brave Search API, authenticated via X-Subscription-Token
type Brave struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewBrave constructs a Brave backend. baseURL may be empty.
func NewBrave(apiKey, baseURL string, client *http.Client) *Brave {
	if baseURL == "" {
		baseURL = braveURL
	}
	return &Brave{apiKey: apiKey, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) Query(ctx context.Context, query string) ([]Result, error) {
	endpoint := b.baseURL + "/res/v1/web/search?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("brave http 429: rate limited, quota resets in %s", braveResetDelay(resp.Header))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpError(b.Name(), resp)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		results = append(results, Result{Title: r.Title, Snippet: r.Description, URL: r.URL})
	}
	return results, nil
}

// braveResetDelay reads X-RateLimit-Reset, a comma-separated list of reset
// times in seconds ("1, 1419704"), and returns the smallest. Defaults to 1s.
func braveResetDelay(h http.Header) time.Duration {
	raw := h.Get("X-RateLimit-Reset")
	if raw == "" {
		return time.Second
	}

	minReset := -1
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			continue
		}
		if minReset < 0 || n < minReset {
			minReset = n
		}
	}
	if minReset <= 0 {
		return time.Second
	}
	return time.Duration(minReset) * time.Second
}
