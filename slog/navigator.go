// Package slog provides logging decorators for biblefetch services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/biblefetch"
)

// Ensure LoggingNavigator implements biblefetch.Navigator.
var _ biblefetch.Navigator = (*LoggingNavigator)(nil)

// LoggingNavigator wraps a Navigator with logging.
type LoggingNavigator struct {
	next   biblefetch.Navigator
	logger *slog.Logger
}

// NewLoggingNavigator creates a new LoggingNavigator.
func NewLoggingNavigator(next biblefetch.Navigator, logger *slog.Logger) *LoggingNavigator {
	return &LoggingNavigator{next: next, logger: logger}
}

// Discover delegates to the wrapped navigator and logs the operation.
func (n *LoggingNavigator) Discover(ctx context.Context, rootURL string) (groups []*biblefetch.TestamentGroup, err error) {
	defer func(begin time.Time) {
		chapters := 0
		for _, g := range groups {
			chapters += len(g.Chapters)
		}
		n.logger.Info("discover",
			"url", rootURL,
			"groups", len(groups),
			"chapters", chapters,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return n.next.Discover(ctx, rootURL)
}
