// Package fetch retrieves remote pages for auditing.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"a11ylint/internal/logging"
)

// Config controls fetching behavior.
type Config struct {
	UserAgent      string
	Timeout        time.Duration
	MaxBodyBytes   int64
	AllowedDomains []string
	BlockedDomains []string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:    "a11ylint/0.3 (+accessibility audit)",
		Timeout:      30 * time.Second,
		MaxBodyBytes: 2 << 20, // 2MB
	}
}

// Fetcher downloads pages with domain restrictions and a body size cap.
type Fetcher struct {
	cfg    Config
	client *http.Client
}

// New builds a Fetcher from the config.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads a page body. Non-200 responses and disallowed domains
// are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	host, err := hostOf(rawURL)
	if err != nil {
		return nil, err
	}
	if !f.isDomainAllowed(host) {
		return nil, fmt.Errorf("domain not allowed: %s", host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	timer := logging.StartTimer(logging.CategoryFetch, "fetch "+rawURL)
	resp, err := f.client.Do(req)
	timer.Stop()
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	logging.Fetch("fetched %s (%d bytes)", rawURL, len(body))
	return body, nil
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.Hostname(), nil
}

// isDomainAllowed applies the block list first, then the allow list; an
// empty allow list permits everything not blocked.
func (f *Fetcher) isDomainAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, blocked := range f.cfg.BlockedDomains {
		if matchDomain(host, blocked) {
			return false
		}
	}
	if len(f.cfg.AllowedDomains) == 0 {
		return true
	}
	for _, allowed := range f.cfg.AllowedDomains {
		if matchDomain(host, allowed) {
			return true
		}
	}
	return false
}

// matchDomain matches a host against a domain, including subdomains.
func matchDomain(host, domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
