package scrape

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/biblefetch"
	"golang.org/x/sync/errgroup"
)

// BatchOption configures SequentialFetcher and ConcurrentFetcher.
type BatchOption func(*batchConfig)

type batchConfig struct {
	pacer       biblefetch.Pacer
	counter     *Counter
	sleep       SleepFunc
	jitter      func() time.Duration
	concurrency int
	logger      *slog.Logger
}

func newBatchConfig(opts []BatchOption) batchConfig {
	cfg := batchConfig{
		pacer:  NewEveryNth(DefaultPauseEvery),
		sleep:  Sleep,
		jitter: UniformJitter(DefaultMinJitter, DefaultMaxJitter),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.counter == nil {
		cfg.counter = &Counter{}
	}
	return cfg
}

// WithPacer sets the pause policy. Defaults to NewEveryNth(DefaultPauseEvery).
func WithPacer(p biblefetch.Pacer) BatchOption {
	return func(c *batchConfig) {
		c.pacer = p
	}
}

// WithCounter shares a request counter between fetchers.
func WithCounter(counter *Counter) BatchOption {
	return func(c *batchConfig) {
		c.counter = counter
	}
}

// WithSleep replaces the function used to wait. Useful in tests.
func WithSleep(sleep SleepFunc) BatchOption {
	return func(c *batchConfig) {
		c.sleep = sleep
	}
}

// WithJitter sets the source of delays between sequential requests.
func WithJitter(jitter func() time.Duration) BatchOption {
	return func(c *batchConfig) {
		c.jitter = jitter
	}
}

// WithConcurrency limits in-flight fetches of a ConcurrentFetcher.
// Zero or negative means no limit.
func WithConcurrency(n int) BatchOption {
	return func(c *batchConfig) {
		c.concurrency = n
	}
}

// WithBatchLogger sets the logger used to report pauses.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(c *batchConfig) {
		c.logger = logger
	}
}

// Ensure SequentialFetcher implements biblefetch.BatchFetcher at compile time.
var _ biblefetch.BatchFetcher = (*SequentialFetcher)(nil)

// SequentialFetcher fetches one chapter at a time with a randomized delay
// between requests and a long pause whenever the pacer asks for one.
type SequentialFetcher struct {
	fetcher biblefetch.ChapterFetcher
	cfg     batchConfig
}

// NewSequentialFetcher creates a SequentialFetcher.
func NewSequentialFetcher(fetcher biblefetch.ChapterFetcher, opts ...BatchOption) *SequentialFetcher {
	return &SequentialFetcher{fetcher: fetcher, cfg: newBatchConfig(opts)}
}

// Requests returns the number of requests completed so far.
func (s *SequentialFetcher) Requests() int {
	return s.cfg.counter.Value()
}

// FetchAll fetches urls in order. Results are in input order. Every
// invocation counts toward the pacer, whether it succeeded or not. After
// cancellation the remaining URLs get results carrying the context error.
func (s *SequentialFetcher) FetchAll(ctx context.Context, urls []string, progress biblefetch.FetchProgressFunc) []*biblefetch.FetchResult {
	results := make([]*biblefetch.FetchResult, 0, len(urls))
	total := len(urls)

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			for _, rest := range urls[i:] {
				results = append(results, &biblefetch.FetchResult{ChapterURL: rest, Err: err})
			}
			break
		}

		result := s.fetcher.FetchChapter(ctx, url)
		results = append(results, result)

		if progress != nil {
			progress(biblefetch.FetchProgress{
				URL:       url,
				Completed: i + 1,
				Total:     total,
				Error:     result.Err,
			})
		}

		n := s.cfg.counter.Increment()
		if d, ok := s.cfg.pacer.Pause(n); ok {
			s.cfg.logger.Info("pausing", "requests", n, "duration", d)
			_ = s.cfg.sleep(ctx, d)
		} else if i < total-1 {
			_ = s.cfg.sleep(ctx, s.cfg.jitter())
		}
	}

	return results
}

// Ensure ConcurrentFetcher implements biblefetch.BatchFetcher at compile time.
var _ biblefetch.BatchFetcher = (*ConcurrentFetcher)(nil)

// ConcurrentFetcher fetches chapters as independent goroutines. A task whose
// completion makes the shared counter hit the pacer's interval sleeps before
// returning its result; other tasks keep running. Failed fetches count
// toward the pacer like successful ones.
type ConcurrentFetcher struct {
	fetcher biblefetch.ChapterFetcher
	cfg     batchConfig
}

// NewConcurrentFetcher creates a ConcurrentFetcher.
func NewConcurrentFetcher(fetcher biblefetch.ChapterFetcher, opts ...BatchOption) *ConcurrentFetcher {
	return &ConcurrentFetcher{fetcher: fetcher, cfg: newBatchConfig(opts)}
}

// Requests returns the number of requests completed so far.
func (c *ConcurrentFetcher) Requests() int {
	return c.cfg.counter.Value()
}

// FetchAll fetches all urls concurrently. Results are in completion order.
func (c *ConcurrentFetcher) FetchAll(ctx context.Context, urls []string, progress biblefetch.FetchProgressFunc) []*biblefetch.FetchResult {
	resultCh := make(chan *biblefetch.FetchResult, len(urls))

	var g errgroup.Group
	if c.cfg.concurrency > 0 {
		g.SetLimit(c.cfg.concurrency)
	}

	go func() {
		for _, url := range urls {
			g.Go(func() error {
				result := c.fetcher.FetchChapter(ctx, url)

				// Only the increment is serialized; the pause runs unlocked.
				n := c.cfg.counter.Increment()
				if d, ok := c.cfg.pacer.Pause(n); ok {
					c.cfg.logger.Info("pausing", "requests", n, "duration", d, "url", url)
					_ = c.cfg.sleep(ctx, d)
				}

				resultCh <- result
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]*biblefetch.FetchResult, 0, len(urls))
	total := len(urls)
	for result := range resultCh {
		results = append(results, result)
		if progress != nil {
			progress(biblefetch.FetchProgress{
				URL:       result.ChapterURL,
				Completed: len(results),
				Total:     total,
				Error:     result.Err,
			})
		}
	}

	return results
}
