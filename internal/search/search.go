// Package search provides the web search collaborators used to gather
// evidence: Serper, Brave and Tavily backends behind one formatting client.
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/ppiankov/swarm/internal/model"
)

// CostPerThousand is the search price in USD per 1000 queries
const CostPerThousand = 0.30

// Result is one organic search hit
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Backend runs a raw query against one search API
type Backend interface {
	Name() string
	Query(ctx context.Context, query string) ([]Result, error)
}

// Config holds search client configuration
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Limit       int
	IncludeURLs bool
	Timeout     time.Duration
	Concurrency int
}

// ConfigFromModel converts model.SearchConfig to search.Config
func ConfigFromModel(cfg model.SearchConfig) Config {
	return Config{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Limit:       cfg.Limit,
		IncludeURLs: cfg.IncludeURLs,
		Timeout:     cfg.Timeout,
		Concurrency: cfg.Concurrency,
	}
}

// NewBackend creates the backend named by config.Provider
func NewBackend(config Config) (Backend, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("%s API key is required", config.Provider)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	switch strings.ToLower(config.Provider) {
	case "serper", "":
		return NewSerper(config.APIKey, config.BaseURL, client), nil
	case "brave":
		return NewBrave(config.APIKey, config.BaseURL, client), nil
	case "tavily":
		return NewTavily(config.APIKey, config.BaseURL, client), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s (supported: serper, brave, tavily)", config.Provider)
	}
}

// Client formats backend hits into evidence text and counts every query
// issued. It is safe for concurrent use.
type Client struct {
	backend     Backend
	limit       int
	includeURLs bool
	concurrency int
	searches    atomic.Int64
}

// NewClient wraps a backend
func NewClient(backend Backend, config Config) *Client {
	limit := config.Limit
	if limit <= 0 {
		limit = 5
	}
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	return &Client{
		backend:     backend,
		limit:       limit,
		includeURLs: config.IncludeURLs,
		concurrency: concurrency,
	}
}

// New builds the configured backend and wraps it in a Client
func New(config Config) (*Client, error) {
	backend, err := NewBackend(config)
	if err != nil {
		return nil, err
	}
	return NewClient(backend, config), nil
}

// Search runs one query and returns the top results as text
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	c.searches.Add(1)

	results, err := c.backend.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrTransport, c.backend.Name(), err)
	}

	return Format(results, c.limit, c.includeURLs), nil
}

// Batch runs queries concurrently and joins their formatted results, each
// prefixed with its query, in input order. Any failure fails the batch.
func (c *Client) Batch(ctx context.Context, queries []string) (string, error) {
	out := make([]string, len(queries))

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(c.concurrency)

	for i, q := range queries {
		i, q := i, q
		p.Go(func(ctx context.Context) error {
			text, err := c.Search(ctx, q)
			if err != nil {
				return err
			}
			out[i] = fmt.Sprintf("Query: %s\n\n%s", q, text)
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return "", err
	}

	return strings.Join(out, "\n\n\n"), nil
}

// Searches returns how many queries were issued
func (c *Client) Searches() int64 {
	return c.searches.Load()
}

// Cost estimates the spend in USD, rounded to four decimals
func (c *Client) Cost() float64 {
	cost := float64(c.Searches()) * CostPerThousand / 1000
	return float64(int64(cost*10000+0.5)) / 10000
}

// Provider returns the backend name
func (c *Client) Provider() string {
	return c.backend.Name()
}

// Format renders up to limit results as Title/Snippet(/URL) blocks
func Format(results []Result, limit int, includeURLs bool) string {
	var sb strings.Builder
	for i, r := range results {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(&sb, "Title: %s\n", r.Title)
		fmt.Fprintf(&sb, "Snippet: %s\n", r.Snippet)
		if includeURLs {
			fmt.Fprintf(&sb, "URL: %s\n", r.URL)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// httpError reads a short excerpt of a failed response for the error text
func httpError(provider string, resp *http.Response) error {
	buf := make([]byte, 512)
	n, _ := resp.Body.Read(buf)
	return fmt.Errorf("%s http %d: %s", provider, resp.StatusCode, strings.TrimSpace(string(buf[:n])))
}
