package biblefetch

import (
	"context"
	"time"
)

// Browser renders pages with JavaScript enabled.
// Implementations must be safe for concurrent use.
type Browser interface {
	// Open starts an isolated session and navigates it to url.
	// The returned Session must be closed by the caller.
	Open(ctx context.Context, url string) (Session, error)

	// Close releases browser resources.
	Close() error
}

// Session is a single rendered page.
type Session interface {
	// WaitPresent blocks until an element matching selector exists in the DOM.
	WaitPresent(selector string, timeout time.Duration) error

	// WaitVisible blocks until an element matching selector is visible.
	WaitVisible(selector string, timeout time.Duration) error

	// Click waits until the element matching selector is interactable and clicks it.
	Click(selector string, timeout time.Duration) error

	// HTML returns the current rendered markup.
	HTML() (string, error)

	// Close releases the session. Safe to call more than once.
	Close() error
}
