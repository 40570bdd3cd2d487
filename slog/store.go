package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/biblefetch"
)

// Ensure LoggingChapterStore implements biblefetch.ChapterStore.
var _ biblefetch.ChapterStore = (*LoggingChapterStore)(nil)

// LoggingChapterStore wraps a ChapterStore with logging. Every chapter the
// store could not write is logged individually.
type LoggingChapterStore struct {
	next   biblefetch.ChapterStore
	logger *slog.Logger
}

// NewLoggingChapterStore creates a new LoggingChapterStore.
func NewLoggingChapterStore(next biblefetch.ChapterStore, logger *slog.Logger) *LoggingChapterStore {
	return &LoggingChapterStore{next: next, logger: logger}
}

// Persist delegates to the wrapped store and logs the operation.
func (s *LoggingChapterStore) Persist(ctx context.Context, folderName string, records []*biblefetch.MergedChapter) (metas []*biblefetch.ChapterMetadata, err error) {
	defer func(begin time.Time) {
		failed := 0
		for _, m := range metas {
			if m.Failed() {
				failed++
				s.logger.Warn("persist chapter",
					"folder", folderName,
					"chapter", m.ChapterID,
					"err", m.Error,
				)
			}
		}
		s.logger.Info("persist",
			"folder", folderName,
			"count", len(metas),
			"failed", failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Persist(ctx, folderName, records)
}
