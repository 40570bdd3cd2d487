package scrape

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/biblefetch"
)

// Defaults for Navigator, matching the live site's chapter menu.
const (
	DefaultTriggerSelector   = "#chapter-dropdown-button"
	DefaultContainerSelector = ".book-container"
	DefaultTriggerTimeout    = 10 * time.Second
	DefaultContainerTimeout  = 20 * time.Second
)

var _ biblefetch.Navigator = (*Navigator)(nil)

// Navigator opens the site's chapter menu in a browser and parses it.
type Navigator struct {
	browser           biblefetch.Browser
	parser            biblefetch.MenuParser
	logger            *slog.Logger
	triggerSelector   string
	containerSelector string
	triggerTimeout    time.Duration
	containerTimeout  time.Duration
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithTrigger sets the element clicked to open the menu and how long it may
// take to become clickable.
func WithTrigger(selector string, timeout time.Duration) NavigatorOption {
	return func(n *Navigator) {
		n.triggerSelector = selector
		n.triggerTimeout = timeout
	}
}

// WithContainer sets the menu container and how long it may take to appear.
func WithContainer(selector string, timeout time.Duration) NavigatorOption {
	return func(n *Navigator) {
		n.containerSelector = selector
		n.containerTimeout = timeout
	}
}

// WithNavigatorLogger sets the logger.
func WithNavigatorLogger(logger *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// NewNavigator creates a Navigator.
func NewNavigator(browser biblefetch.Browser, parser biblefetch.MenuParser, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		browser:           browser,
		parser:            parser,
		logger:            slog.New(slog.DiscardHandler),
		triggerSelector:   DefaultTriggerSelector,
		containerSelector: DefaultContainerSelector,
		triggerTimeout:    DefaultTriggerTimeout,
		containerTimeout:  DefaultContainerTimeout,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Discover loads rootURL, clicks the menu trigger, waits for the menu
// container and parses the rendered menu. Discovery is all-or-nothing: any
// failure before parsing returns ENAVIGATION and no groups.
func (n *Navigator) Discover(ctx context.Context, rootURL string) ([]*biblefetch.TestamentGroup, error) {
	base, err := siteBase(rootURL)
	if err != nil {
		return nil, err
	}

	session, err := n.browser.Open(ctx, rootURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, biblefetch.Errorf(biblefetch.ENAVIGATION, "loading %s: %v", rootURL, err)
	}
	defer session.Close()
	n.logger.Info("loaded root page", "url", rootURL)

	if err := session.Click(n.triggerSelector, n.triggerTimeout); err != nil {
		return nil, n.navigationError(ctx, "chapter menu trigger %q not clickable: %v", n.triggerSelector, err)
	}
	n.logger.Debug("clicked chapter menu trigger", "selector", n.triggerSelector)

	if err := session.WaitPresent(n.containerSelector, n.containerTimeout); err != nil {
		return nil, n.navigationError(ctx, "chapter menu %q did not appear: %v", n.containerSelector, err)
	}
	if err := session.WaitVisible(n.containerSelector, n.containerTimeout); err != nil {
		return nil, n.navigationError(ctx, "chapter menu %q did not become visible: %v", n.containerSelector, err)
	}
	n.logger.Debug("chapter menu visible", "selector", n.containerSelector)

	html, err := session.HTML()
	if err != nil {
		return nil, n.navigationError(ctx, "reading rendered menu: %v", err)
	}

	groups, err := n.parser.ParseMenu(html, base)
	if err != nil {
		return nil, err
	}
	n.logger.Info("chapter menu parsed", "groups", len(groups))

	return groups, nil
}

// navigationError returns the context error if the caller gave up, and an
// ENAVIGATION error otherwise.
func (n *Navigator) navigationError(ctx context.Context, format string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return biblefetch.Errorf(biblefetch.ENAVIGATION, format, args...)
}

// siteBase returns the scheme and host of rawURL.
func siteBase(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", biblefetch.Errorf(biblefetch.EINVALID, "root URL must be absolute: %q", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
