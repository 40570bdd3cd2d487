// Package rod implements biblefetch.Browser with Chrome browser automation.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/biblefetch"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultLoadTimeout bounds navigation and the initial load event of a session.
const DefaultLoadTimeout = 30 * time.Second

var errClosed = biblefetch.Errorf(biblefetch.EINVALID, "browser is closed")

// Ensure Browser implements biblefetch.Browser at compile time.
var _ biblefetch.Browser = (*Browser)(nil)

// Browser opens isolated rendering sessions on a managed Chrome instance.
// Each session runs in its own incognito context so cookies and storage are
// never shared between chapters.
//
// Browser is safe for concurrent use by multiple goroutines.
type Browser struct {
	manager     *BrowserManager
	loadTimeout time.Duration
}

// Option configures a Browser.
type Option func(*Browser)

// WithLoadTimeout sets the navigation timeout for new sessions.
// Defaults to DefaultLoadTimeout (30s) if not specified.
func WithLoadTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.loadTimeout = d
	}
}

// NewBrowser creates a Browser backed by a new BrowserManager.
// Close must be called when the Browser is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewBrowser(managerOpts []ManagerOption, opts ...Option) (*Browser, error) {
	manager, err := NewBrowserManager(managerOpts...)
	if err != nil {
		return nil, err
	}

	b := &Browser{
		manager:     manager,
		loadTimeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Open creates an incognito page, navigates it to url and waits for the load event.
func (b *Browser) Open(ctx context.Context, url string) (biblefetch.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := b.manager.Acquire()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		b.manager.Release()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		b.manager.Release()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	s := &Session{
		ctx:       ctx,
		page:      page,
		incognito: incognito,
		manager:   b.manager,
	}

	loadCtx, cancel := context.WithTimeout(ctx, b.loadTimeout)
	defer cancel()
	loading := s.page.Context(loadCtx)

	if err := loading.Navigate(url); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := loading.WaitLoad(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("waiting for %s to load: %w", url, err)
	}

	return s, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (b *Browser) Close() error {
	return b.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (b *Browser) LauncherPID() int {
	return b.manager.LauncherPID()
}

// Ensure Session implements biblefetch.Session at compile time.
var _ biblefetch.Session = (*Session)(nil)

// Session is one rendered page in its own incognito context.
// Waits are bound to the context passed to Open; Close is not, so a session
// can be released after its context has been canceled.
type Session struct {
	ctx       context.Context
	page      *rod.Page
	incognito *rod.Browser
	manager   *BrowserManager
	closeOnce sync.Once
	closeErr  error
}

// WaitPresent blocks until an element matching selector exists in the DOM.
func (s *Session) WaitPresent(selector string, timeout time.Duration) error {
	_, cancel, err := s.element(selector, timeout)
	defer cancel()
	return err
}

// WaitVisible blocks until an element matching selector is visible.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	el, cancel, err := s.element(selector, timeout)
	defer cancel()
	if err != nil {
		return err
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("waiting for %s to become visible: %w", selector, err)
	}
	return nil
}

// Click waits until the element is visible and interactable, then clicks it.
func (s *Session) Click(selector string, timeout time.Duration) error {
	el, cancel, err := s.element(selector, timeout)
	defer cancel()
	if err != nil {
		return err
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("waiting for %s to become visible: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

// HTML returns the current rendered markup.
func (s *Session) HTML() (string, error) {
	return s.page.Context(s.ctx).HTML()
}

// Close closes the page and disposes its incognito context.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		pageErr := s.page.Close()
		ctxErr := s.incognito.Close()
		s.manager.Release()
		if pageErr != nil {
			s.closeErr = pageErr
		} else {
			s.closeErr = ctxErr
		}
	})
	return s.closeErr
}

// element finds selector within timeout. The returned element is bound to the
// timeout context, so cancel must be called once the caller is done with it.
func (s *Session) element(selector string, timeout time.Duration) (*rod.Element, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return nil, cancel, fmt.Errorf("waiting for %s: %w", selector, err)
	}
	return el, cancel, nil
}
