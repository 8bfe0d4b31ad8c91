// Package browser audits pages as a real browser renders them, so markup
// produced by client-side scripts is linted too. It drives headless
// Chromium through go-rod.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"a11ylint/internal/logging"
)

// Config holds browser session configuration.
type Config struct {
	Headless          bool
	NavigationTimeout time.Duration
	// ControlURL attaches to an already-running browser instead of
	// launching one.
	ControlURL string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
	}
}

// Session owns one browser instance.
type Session struct {
	cfg      Config
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// Launch starts (or attaches to) a browser. Fails with a descriptive error
// when no Chromium binary can be found.
func Launch(cfg Config) (*Session, error) {
	s := &Session{cfg: cfg}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser (is chromium installed?): %w", err)
		}
		s.launcher = l
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		if s.launcher != nil {
			s.launcher.Cleanup()
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	s.browser = b
	logging.Browser("browser connected at %s", controlURL)
	return s, nil
}

// RenderedHTML navigates to the URL, waits for the load event, and returns
// the rendered document markup.
func (s *Session) RenderedHTML(ctx context.Context, url string) (string, error) {
	timeout := s.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().NavigationTimeout
	}

	timer := logging.StartTimer(logging.CategoryBrowser, "render "+url)
	defer timer.StopWithThreshold(timeout / 2)

	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()
	page = page.Timeout(timeout)

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("page failed to load: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read rendered markup: %w", err)
	}
	return html, nil
}

// Close disconnects and tears the launched browser down.
func (s *Session) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	return err
}
