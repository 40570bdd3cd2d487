// Package scrape orchestrates chapter discovery, fetching, merging and
// persistence.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/biblefetch"
	"github.com/google/uuid"
)

// Scraper runs the discovery-then-fetch pipeline over every testament group.
type Scraper struct {
	Navigator   biblefetch.Navigator
	MenuCache   biblefetch.MenuCache
	Fetcher     biblefetch.BatchFetcher
	Store       biblefetch.ChapterStore
	Index       biblefetch.IndexStore
	Checkpoints biblefetch.CheckpointService
	Logger      *slog.Logger

	// SkipGroups is the number of leading menu groups to leave out.
	// Folder numbering starts at the first processed group.
	SkipGroups int

	// Resume continues after the last group recorded in Checkpoints and
	// extends the existing index instead of replacing it.
	Resume bool

	// RunID identifies this run in checkpoints. Generated if empty.
	RunID string

	// Progress, if set, receives per-chapter fetch progress.
	Progress biblefetch.FetchProgressFunc
}

// Result holds the outcome of a run.
type Result struct {
	Testaments int
	Saved      int
	Failed     int
	Dropped    int
	AudioBytes int
}

// FolderName returns the output folder for the testament at position i of
// the processed groups.
func FolderName(i int) string {
	return fmt.Sprintf("testament_%d", i)
}

// Run discovers the menu of rootURL and processes every group from the
// resume point on. Discovery failure aborts the run. Chapter failures are
// logged, counted and never abort the run. The index is rewritten after each
// group so the checkpoint never points past what the index holds.
func (s *Scraper) Run(ctx context.Context, rootURL string) (*Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	runID := s.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	groups, err := s.discover(ctx, rootURL, logger)
	if err != nil {
		return nil, err
	}

	skip := max(s.SkipGroups, 0)
	start := skip
	var index []*biblefetch.TestamentIndex

	if s.Resume {
		if start, err = s.resumePoint(ctx, rootURL, start, logger); err != nil {
			return nil, err
		}
		if index, err = s.loadIndex(ctx); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	for i := start; i < len(groups); i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		group := groups[i]
		folder := FolderName(i - skip)
		logger.Info("processing testament",
			"name", group.Name,
			"folder", folder,
			"chapters", len(group.Chapters),
		)

		metas, err := s.processGroup(ctx, group, folder, result, logger)
		if err != nil {
			return result, err
		}

		index = upsertIndex(index, &biblefetch.TestamentIndex{
			TestamentName:       group.Name,
			TestamentFolderName: folder,
			Chapters:            metas,
		})
		if err := s.Index.WriteIndex(ctx, index); err != nil {
			return result, fmt.Errorf("writing index: %w", err)
		}
		result.Testaments++

		if s.Checkpoints != nil {
			cp := &biblefetch.Checkpoint{
				RootURL:       rootURL,
				RunID:         runID,
				LastCompleted: i,
				TestamentName: group.Name,
				UpdatedAt:     time.Now().UTC(),
			}
			if err := s.Checkpoints.SaveCheckpoint(ctx, cp); err != nil {
				logger.Error("saving checkpoint", "testament", group.Name, "err", err)
			}
		}
	}

	logger.Info("scraping complete",
		"testaments", result.Testaments,
		"saved", result.Saved,
		"failed", result.Failed,
		"dropped", result.Dropped,
	)
	return result, nil
}

// processGroup fetches, merges and persists one group, logging every
// chapter that does not make it to disk.
func (s *Scraper) processGroup(ctx context.Context, group *biblefetch.TestamentGroup, folder string, result *Result, logger *slog.Logger) ([]*biblefetch.ChapterMetadata, error) {
	fetched := s.Fetcher.FetchAll(ctx, group.URLs(), s.Progress)
	merged := Merge(fetched, group.Chapters)

	for _, r := range merged.Failed {
		logger.Error("chapter fetch failed", "url", r.ChapterURL, "err", r.Err)
		result.Failed++
	}
	for _, r := range merged.Misses {
		logger.Warn("dropping result with no matching chapter", "url", r.ChapterURL)
		result.Dropped++
	}

	metas, err := s.Store.Persist(ctx, folder, merged.Records)
	if err != nil {
		return nil, fmt.Errorf("persisting %s: %w", folder, err)
	}

	for _, rec := range merged.Records {
		result.AudioBytes += len(rec.Audio)
	}
	for _, m := range metas {
		if m.Failed() {
			logger.Error("chapter persist failed", "chapter", m.ChapterID, "url", m.ChapterURL, "err", m.Error)
			result.Failed++
			continue
		}
		result.Saved++
	}

	return metas, nil
}

// discover returns the cached menu if one exists, otherwise navigates the site
// and caches the result.
func (s *Scraper) discover(ctx context.Context, rootURL string, logger *slog.Logger) ([]*biblefetch.TestamentGroup, error) {
	if s.MenuCache != nil {
		groups, err := s.MenuCache.LoadMenu(ctx)
		if err == nil {
			logger.Info("using cached chapter menu", "groups", len(groups))
			return groups, nil
		}
		if biblefetch.ErrorCode(err) != biblefetch.ENOTFOUND {
			return nil, fmt.Errorf("loading menu cache: %w", err)
		}
	}

	groups, err := s.Navigator.Discover(ctx, rootURL)
	if err != nil {
		logger.Error("discovering chapter menu", "url", rootURL, "err", err)
		return nil, err
	}

	if s.MenuCache != nil {
		if err := s.MenuCache.SaveMenu(ctx, groups); err != nil {
			logger.Warn("saving menu cache", "err", err)
		}
	}
	return groups, nil
}

// resumePoint returns the first group to process given the checkpoint for rootURL.
func (s *Scraper) resumePoint(ctx context.Context, rootURL string, start int, logger *slog.Logger) (int, error) {
	if s.Checkpoints == nil {
		return start, nil
	}
	cp, err := s.Checkpoints.FindCheckpoint(ctx, rootURL)
	if biblefetch.ErrorCode(err) == biblefetch.ENOTFOUND {
		return start, nil
	} else if err != nil {
		return 0, fmt.Errorf("reading checkpoint: %w", err)
	}
	if next := cp.LastCompleted + 1; next > start {
		logger.Info("resuming after checkpoint",
			"testament", cp.TestamentName,
			"index", cp.LastCompleted,
			"run", cp.RunID,
		)
		return next, nil
	}
	return start, nil
}

func (s *Scraper) loadIndex(ctx context.Context) ([]*biblefetch.TestamentIndex, error) {
	index, err := s.Index.LoadIndex(ctx)
	if biblefetch.ErrorCode(err) == biblefetch.ENOTFOUND {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}
	return index, nil
}

// upsertIndex replaces the entry with the same folder or appends a new one.
func upsertIndex(index []*biblefetch.TestamentIndex, entry *biblefetch.TestamentIndex) []*biblefetch.TestamentIndex {
	for i, existing := range index {
		if existing.TestamentFolderName == entry.TestamentFolderName {
			index[i] = entry
			return index
		}
	}
	return append(index, entry)
}
