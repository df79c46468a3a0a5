package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const serperURL = "https://google.serper.dev"

// Serper queries Google results through serper.dev
type Serper struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSerper constructs a Serper backend. baseURL may be empty.
func NewSerper(apiKey, baseURL string, client *http.Client) *Serper {
	if baseURL == "" {
		baseURL = serperURL
	}
	return &Serper{apiKey: apiKey, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (s *Serper) Name() string { return "serper" }

// Query posts the query and returns the organic results
func (s *Serper) Query(ctx context.Context, query string) ([]Result, error) {
	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(s.Name(), resp)
	}

	var payload struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Organic))
	for _, r := range payload.Organic {
		results = append(results, Result{Title: r.Title, Snippet: r.Snippet, URL: r.Link})
	}
	return results, nil
}
