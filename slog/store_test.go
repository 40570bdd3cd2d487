package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/biblefetch"
	"github.com/fwojciec/biblefetch/mock"
	bfslog "github.com/fwojciec/biblefetch/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingChapterStore_Persist(t *testing.T) {
	t.Parallel()

	t.Run("logs counts and each failed chapter", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ChapterStore{
			PersistFn: func(ctx context.Context, folderName string, records []*biblefetch.MergedChapter) ([]*biblefetch.ChapterMetadata, error) {
				return []*biblefetch.ChapterMetadata{
					{ChapterID: "1", TextFilePath: "testament_0/chapter_1/content.txt"},
					{ChapterID: "2", Error: "disk full"},
				}, nil
			},
		}

		store := bfslog.NewLoggingChapterStore(inner, logger)
		metas, err := store.Persist(context.Background(), "testament_0", nil)

		require.NoError(t, err)
		assert.Len(t, metas, 2)
		output := buf.String()
		assert.Contains(t, output, "level=WARN msg=\"persist chapter\"")
		assert.Contains(t, output, "chapter=2")
		assert.Contains(t, output, "err=\"disk full\"")
		assert.Contains(t, output, "folder=testament_0")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "failed=1")
	})
}
