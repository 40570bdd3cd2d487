package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fwojciec/biblefetch"
	"github.com/fwojciec/biblefetch/fs"
	"github.com/fwojciec/biblefetch/goquery"
	bfhttp "github.com/fwojciec/biblefetch/http"
	"github.com/fwojciec/biblefetch/rod"
	bfslog "github.com/fwojciec/biblefetch/slog"
	"github.com/fwojciec/biblefetch/scrape"
	"github.com/fwojciec/biblefetch/sqlite"
	"github.com/gofrs/flock"
)

// File names kept in the output directory besides the chapter tree.
const (
	LockFileName  = ".biblefetch.lock"
	StateFileName = ".biblefetch.db"
)

// Run wires the pipeline from the parsed flags and runs it.
func (c *CLI) Run(deps *Dependencies) error {
	if err := os.MkdirAll(c.Output, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	lock := flock.New(filepath.Join(c.Output, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking output directory: %w", err)
	}
	if !locked {
		return biblefetch.Errorf(biblefetch.ECONFLICT, "another run is writing to %s", c.Output)
	}
	defer func() { _ = lock.Unlock() }()

	logger := c.logger(deps)

	statePath := c.State
	if statePath == "" {
		statePath = filepath.Join(c.Output, StateFileName)
	}
	db := sqlite.NewDB(statePath)
	if err := db.Open(); err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: use --state to choose a different checkpoint database")
		return fmt.Errorf("failed to open checkpoint database at %q: %w", statePath, err)
	}
	defer db.Close()

	var managerOpts []rod.ManagerOption
	if c.BrowserBin != "" {
		managerOpts = append(managerOpts, rod.WithBrowserBin(c.BrowserBin))
	}
	rodBrowser, err := rod.NewBrowser(managerOpts)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer rodBrowser.Close()
	browser := rod.NewLoggingBrowser(rodBrowser, logger)

	chapters := scrape.NewChapterFetcher(browser, goquery.NewChapterParser(), bfhttp.NewDownloader(),
		scrape.WithFetchTimeout(c.Timeout),
		scrape.WithRateLimiter(scrape.NewDomainLimiter(c.RPS)),
		scrape.WithLogger(logger),
	)

	s := &scrape.Scraper{
		Navigator: bfslog.NewLoggingNavigator(
			scrape.NewNavigator(browser, goquery.NewMenuParser(), scrape.WithNavigatorLogger(logger)),
			logger,
		),
		Fetcher:     c.batchFetcher(bfslog.NewLoggingChapterFetcher(chapters, logger), logger),
		Store:       bfslog.NewLoggingChapterStore(fs.NewChapterStore(c.Output), logger),
		Index:       fs.NewIndexStore(filepath.Join(c.Output, fs.DefaultIndexFileName)),
		Checkpoints: sqlite.NewCheckpointService(db),
		Logger:      logger,
		SkipGroups:  c.SkipGroups,
		Resume:      c.Resume,
		Progress:    progressPrinter(deps),
	}
	if c.MenuCache {
		s.MenuCache = fs.NewMenuCache(filepath.Join(c.Output, fs.DefaultMenuFileName))
	}

	result, err := s.Run(deps.Ctx, c.URL)
	if result != nil {
		fmt.Fprintf(deps.Stdout, "\n%d testaments, %d chapters saved, %d failed, %d dropped, %s audio\n",
			result.Testaments, result.Saved, result.Failed, result.Dropped, formatBytes(result.AudioBytes))
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", biblefetch.ErrorMessage(err))
		return err
	}
	return nil
}

func (c *CLI) logger(deps *Dependencies) *slog.Logger {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: level}))
}

// batchFetcher builds the strategy selected with --mode.
func (c *CLI) batchFetcher(chapters biblefetch.ChapterFetcher, logger *slog.Logger) biblefetch.BatchFetcher {
	opts := []scrape.BatchOption{
		scrape.WithPacer(scrape.NewEveryNth(c.PauseEvery)),
		scrape.WithBatchLogger(logger),
	}
	if c.Mode == ModeConcurrent {
		opts = append(opts, scrape.WithConcurrency(c.Concurrency))
		return scrape.NewConcurrentFetcher(chapters, opts...)
	}
	return scrape.NewSequentialFetcher(chapters, opts...)
}

// progressPrinter writes a one-line progress indicator for each chapter.
func progressPrinter(deps *Dependencies) biblefetch.FetchProgressFunc {
	return func(p biblefetch.FetchProgress) {
		fmt.Fprintf(deps.Stdout, "\r[%d/%d] %s", p.Completed, p.Total, truncateURL(p.URL, 40))
	}
}
