package mock

import (
	"context"

	"github.com/fwojciec/biblefetch"
)

// Compile-time interface verification.
var (
	_ biblefetch.ChapterStore      = (*ChapterStore)(nil)
	_ biblefetch.IndexStore        = (*IndexStore)(nil)
	_ biblefetch.CheckpointService = (*CheckpointService)(nil)
)

// ChapterStore is a mock implementation of biblefetch.ChapterStore.
type ChapterStore struct {
	PersistFn func(ctx context.Context, folderName string, records []*biblefetch.MergedChapter) ([]*biblefetch.ChapterMetadata, error)
}

func (s *ChapterStore) Persist(ctx context.Context, folderName string, records []*biblefetch.MergedChapter) ([]*biblefetch.ChapterMetadata, error) {
	return s.PersistFn(ctx, folderName, records)
}

// IndexStore is a mock implementation of biblefetch.IndexStore.
type IndexStore struct {
	LoadIndexFn  func(ctx context.Context) ([]*biblefetch.TestamentIndex, error)
	WriteIndexFn func(ctx context.Context, index []*biblefetch.TestamentIndex) error
}

func (s *IndexStore) LoadIndex(ctx context.Context) ([]*biblefetch.TestamentIndex, error) {
	return s.LoadIndexFn(ctx)
}

func (s *IndexStore) WriteIndex(ctx context.Context, index []*biblefetch.TestamentIndex) error {
	return s.WriteIndexFn(ctx, index)
}

// CheckpointService is a mock implementation of biblefetch.CheckpointService.
type CheckpointService struct {
	FindCheckpointFn func(ctx context.Context, rootURL string) (*biblefetch.Checkpoint, error)
	SaveCheckpointFn func(ctx context.Context, cp *biblefetch.Checkpoint) error
}

func (s *CheckpointService) FindCheckpoint(ctx context.Context, rootURL string) (*biblefetch.Checkpoint, error) {
	return s.FindCheckpointFn(ctx, rootURL)
}

func (s *CheckpointService) SaveCheckpoint(ctx context.Context, cp *biblefetch.Checkpoint) error {
	return s.SaveCheckpointFn(ctx, cp)
}
