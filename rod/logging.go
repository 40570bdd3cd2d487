package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/biblefetch"
)

// Ensure LoggingBrowser implements biblefetch.Browser.
var _ biblefetch.Browser = (*LoggingBrowser)(nil)

// LoggingBrowser wraps a Browser with debug logging.
type LoggingBrowser struct {
	next   biblefetch.Browser
	logger *slog.Logger
}

// NewLoggingBrowser creates a new LoggingBrowser.
func NewLoggingBrowser(next biblefetch.Browser, logger *slog.Logger) *LoggingBrowser {
	return &LoggingBrowser{next: next, logger: logger}
}

// Open logs the URL being rendered and delegates to the wrapped browser.
func (b *LoggingBrowser) Open(ctx context.Context, url string) (s biblefetch.Session, err error) {
	defer func(begin time.Time) {
		b.logger.Debug("open",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.Open(ctx, url)
}

// Close delegates to the wrapped browser.
func (b *LoggingBrowser) Close() error {
	return b.next.Close()
}
