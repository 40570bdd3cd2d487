package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/biblefetch"
)

// Defaults for ChapterFetcher.
const (
	DefaultReadySelector = "main"
	DefaultAudioSelector = "video.audio-player"
	DefaultReadyTimeout  = 20 * time.Second
	DefaultAudioTimeout  = 10 * time.Second
	DefaultFetchTimeout  = 60 * time.Second
)

var _ biblefetch.ChapterFetcher = (*ChapterFetcher)(nil)

// ChapterFetcher renders one chapter page in a fresh browser session,
// extracts its text and downloads its narration.
type ChapterFetcher struct {
	browser       biblefetch.Browser
	parser        biblefetch.ChapterParser
	audio         biblefetch.AudioDownloader
	rateLimiter   biblefetch.DomainLimiter
	logger        *slog.Logger
	readySelector string
	audioSelector string
	readyTimeout  time.Duration
	audioTimeout  time.Duration
	timeout       time.Duration
	retryDelays   []time.Duration
}

// FetcherOption configures a ChapterFetcher.
type FetcherOption func(*ChapterFetcher)

// WithReadySelector sets the element awaited before the page is read.
func WithReadySelector(selector string) FetcherOption {
	return func(f *ChapterFetcher) {
		f.readySelector = selector
	}
}

// WithAudioSelector sets the element awaited for the narration source.
func WithAudioSelector(selector string) FetcherOption {
	return func(f *ChapterFetcher) {
		f.audioSelector = selector
	}
}

// WithReadyTimeout bounds the wait for the content region.
func WithReadyTimeout(d time.Duration) FetcherOption {
	return func(f *ChapterFetcher) {
		f.readyTimeout = d
	}
}

// WithAudioTimeout bounds the wait for the audio element.
func WithAudioTimeout(d time.Duration) FetcherOption {
	return func(f *ChapterFetcher) {
		f.audioTimeout = d
	}
}

// WithFetchTimeout sets the overall deadline of a single attempt.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *ChapterFetcher) {
		f.timeout = d
	}
}

// WithRetryDelays sets the delays between attempts.
// Defaults to DefaultRetryDelays() if not specified.
func WithRetryDelays(delays []time.Duration) FetcherOption {
	return func(f *ChapterFetcher) {
		f.retryDelays = delays
	}
}

// WithRateLimiter waits on limiter for the page's host before each attempt
// and for the audio host before each download.
func WithRateLimiter(limiter biblefetch.DomainLimiter) FetcherOption {
	return func(f *ChapterFetcher) {
		f.rateLimiter = limiter
	}
}

// WithLogger sets the logger for per-chapter warnings.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *ChapterFetcher) {
		f.logger = logger
	}
}

// NewChapterFetcher creates a ChapterFetcher.
func NewChapterFetcher(
	browser biblefetch.Browser,
	parser biblefetch.ChapterParser,
	audio biblefetch.AudioDownloader,
	opts ...FetcherOption,
) *ChapterFetcher {
	f := &ChapterFetcher{
		browser:       browser,
		parser:        parser,
		audio:         audio,
		logger:        slog.New(slog.DiscardHandler),
		readySelector: DefaultReadySelector,
		audioSelector: DefaultAudioSelector,
		readyTimeout:  DefaultReadyTimeout,
		audioTimeout:  DefaultAudioTimeout,
		timeout:       DefaultFetchTimeout,
		retryDelays:   DefaultRetryDelays(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchChapter retrieves url. Failures are returned on the result, never
// raised. Attempts that hit their deadline or an unavailable audio host
// are retried.
func (f *ChapterFetcher) FetchChapter(ctx context.Context, url string) *biblefetch.FetchResult {
	policy := RetryPolicy{
		Delays: f.retryDelays,
		Retryable: func(err error) bool {
			return isRetryable(ctx, err)
		},
		OnRetry: func(attempt int, err error) {
			f.logger.Warn("retrying chapter", "url", url, "attempt", attempt, "err", err)
		},
	}

	result, err := Retry(ctx, policy, func(ctx context.Context) (*biblefetch.FetchResult, error) {
		return f.fetchOnce(ctx, url)
	})
	if err != nil {
		return &biblefetch.FetchResult{ChapterURL: url, Err: err}
	}
	return result
}

func (f *ChapterFetcher) fetchOnce(ctx context.Context, url string) (*biblefetch.FetchResult, error) {
	if err := f.wait(ctx, url); err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	result, err := f.render(attemptCtx, url)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return nil, &attemptTimeoutError{err: err}
	}
	return result, err
}

func (f *ChapterFetcher) render(ctx context.Context, url string) (*biblefetch.FetchResult, error) {
	session, err := f.browser.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("opening chapter: %w", err)
	}
	defer session.Close()

	// A page without the content region is still read; the parser reports HasMain=false.
	if err := session.WaitVisible(f.readySelector, f.readyTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("waiting for chapter content: %w", ctx.Err())
		}
		f.logger.Debug("content region not visible", "url", url, "err", err)
	}

	// The audio element is attached after the text; its absence is not an error.
	if err := session.WaitPresent(f.audioSelector, f.audioTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Debug("audio element not present", "url", url, "err", err)
	}

	html, err := session.HTML()
	if err != nil {
		return nil, fmt.Errorf("reading rendered page: %w", err)
	}

	page, err := f.parser.ParseChapter(html, url)
	if err != nil {
		return nil, err
	}
	if !page.HasMain {
		f.logger.Warn("main content region not found", "url", url)
	}

	result := &biblefetch.FetchResult{
		ChapterURL: url,
		Text:       page.Text,
		AudioURL:   page.AudioURL,
	}

	if page.AudioURL == "" {
		f.logger.Warn("audio source not found", "url", url)
		return result, nil
	}

	if err := f.wait(ctx, page.AudioURL); err != nil {
		return nil, err
	}
	audio, err := f.audio.Download(ctx, page.AudioURL)
	if err != nil {
		return nil, err
	}
	result.Audio = audio

	return result, nil
}

// wait blocks on the rate limiter for the host of url, if one is set.
func (f *ChapterFetcher) wait(ctx context.Context, url string) error {
	if f.rateLimiter == nil {
		return nil
	}
	return f.rateLimiter.Wait(ctx, hostOf(url))
}

// attemptTimeoutError marks a failure caused by the expiry of a single
// attempt's deadline.
type attemptTimeoutError struct {
	err error
}

func (e *attemptTimeoutError) Error() string { return e.err.Error() }
func (e *attemptTimeoutError) Unwrap() error { return e.err }

// isRetryable reports whether err is transient: the audio host signaled
// unavailability, or the attempt ran out of time while the caller's context
// is still live. Timeouts of individual page waits are not retried.
func isRetryable(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if biblefetch.ErrorCode(err) == biblefetch.EUNAVAILABLE {
		return true
	}
	var timeout *attemptTimeoutError
	return errors.As(err, &timeout)
}
