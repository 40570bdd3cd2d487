package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/biblefetch"
)

// Ensure LoggingChapterFetcher implements biblefetch.ChapterFetcher.
var _ biblefetch.ChapterFetcher = (*LoggingChapterFetcher)(nil)

// LoggingChapterFetcher wraps a ChapterFetcher with debug logging.
// Failed fetches are logged at warn level.
type LoggingChapterFetcher struct {
	next   biblefetch.ChapterFetcher
	logger *slog.Logger
}

// NewLoggingChapterFetcher creates a new LoggingChapterFetcher.
func NewLoggingChapterFetcher(next biblefetch.ChapterFetcher, logger *slog.Logger) *LoggingChapterFetcher {
	return &LoggingChapterFetcher{next: next, logger: logger}
}

// FetchChapter delegates to the wrapped fetcher and logs the result.
func (f *LoggingChapterFetcher) FetchChapter(ctx context.Context, url string) *biblefetch.FetchResult {
	begin := time.Now()
	r := f.next.FetchChapter(ctx, url)

	level := slog.LevelDebug
	if r.Err != nil {
		level = slog.LevelWarn
	}
	f.logger.Log(ctx, level, "fetch",
		"url", url,
		"text_bytes", len(r.Text),
		"audio_bytes", len(r.Audio),
		"duration", time.Since(begin),
		"err", r.Err,
	)
	return r
}
