package mock

import (
	"context"
	"time"

	"github.com/fwojciec/biblefetch"
)

// Compile-time interface verification.
var (
	_ biblefetch.Browser = (*Browser)(nil)
	_ biblefetch.Session = (*Session)(nil)
)

// Browser is a mock implementation of biblefetch.Browser.
type Browser struct {
	OpenFn  func(ctx context.Context, url string) (biblefetch.Session, error)
	CloseFn func() error
}

func (b *Browser) Open(ctx context.Context, url string) (biblefetch.Session, error) {
	return b.OpenFn(ctx, url)
}

func (b *Browser) Close() error {
	return b.CloseFn()
}

// Session is a mock implementation of biblefetch.Session.
type Session struct {
	WaitPresentFn func(selector string, timeout time.Duration) error
	WaitVisibleFn func(selector string, timeout time.Duration) error
	ClickFn       func(selector string, timeout time.Duration) error
	HTMLFn        func() (string, error)
	CloseFn       func() error
}

func (s *Session) WaitPresent(selector string, timeout time.Duration) error {
	return s.WaitPresentFn(selector, timeout)
}

func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	return s.WaitVisibleFn(selector, timeout)
}

func (s *Session) Click(selector string, timeout time.Duration) error {
	return s.ClickFn(selector, timeout)
}

func (s *Session) HTML() (string, error) {
	return s.HTMLFn()
}

func (s *Session) Close() error {
	return s.CloseFn()
}
