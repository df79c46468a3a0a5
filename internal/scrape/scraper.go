// Package scrape fetches a single web page and reduces it to its title,
// description and main readable text.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/swarm/internal/model"
	"github.com/ppiankov/swarm/internal/worker"
)

var (
	// ErrInvalidURL is returned for URLs without an http(s) scheme and host
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrDisallowed is returned when robots.txt forbids the fetch
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// Page is the result of scraping one URL
type Page struct {
	URL         string `json:"url"`
	FinalURL    string `json:"final_url"`
	StatusCode  int    `json:"status_code"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Content     string `json:"content"`
	Truncated   bool   `json:"truncated,omitempty"`
}

// Scraper fetches pages politely: robots.txt is honoured and requests to
// the same host are paced by a token bucket.
type Scraper struct {
	fetcher  *Fetcher
	robots   *RobotsChecker
	limiter  *worker.HostLimiter
	maxChars int
	logger   *slog.Logger
}

// New creates a scraper from configuration. Pass a nil logger to discard logs.
func New(cfg model.ScrapeConfig, proxy model.ProxyConfig, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	fetcher := NewFetcher(timeout, cfg.UserAgent, cfg.MaxBodyBytes, proxy.HTTP, proxy.HTTPS)

	s := &Scraper{
		fetcher:  fetcher,
		limiter:  worker.NewHostLimiter(cfg.RequestsPerSecond, cfg.Burst),
		maxChars: cfg.MaxContentChars,
		logger:   logger,
	}
	if cfg.RespectRobots {
		s.robots = NewRobotsChecker(cfg.UserAgent, fetcher.httpClient)
	}

	return s
}

// Limiter exposes the per-host limiter so callers can tune individual hosts
func (s *Scraper) Limiter() *worker.HostLimiter {
	return s.limiter
}

// Scrape fetches rawURL and extracts its readable content
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Page, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	var crawlDelay time.Duration
	if s.robots != nil {
		allowed, delay, err := s.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
		crawlDelay = delay
	}

	if err := s.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
		return nil, err
	}

	s.logger.Debug("fetching page", "url", rawURL, "crawl_delay", crawlDelay)

	result, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTransport, err)
	}

	doc, err := extractDocument(result.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	language := doc.Language
	if language == "" {
		language = result.Language
	}

	content := truncate(doc.Content, s.maxChars)

	s.logger.Debug("page scraped", "url", result.FinalURL, "status", result.StatusCode, "chars", len(content))

	return &Page{
		URL:         rawURL,
		FinalURL:    result.FinalURL,
		StatusCode:  result.StatusCode,
		Title:       doc.Title,
		Description: doc.Description,
		Language:    language,
		Content:     content,
		Truncated:   len(content) < len(doc.Content),
	}, nil
}

// ValidateURL accepts absolute http and https URLs only
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}
