package biblefetch

import (
	"context"
	"time"
)

// FetchResult is the outcome of visiting one chapter URL.
// A non-nil Err marks the result as failed; Text and Audio are then unset.
// A nil Audio with a nil Err means the chapter has no narration.
type FetchResult struct {
	ChapterURL string
	Text       string
	AudioURL   string
	Audio      []byte
	Err        error
}

// HasAudio reports whether the result carries an audio payload.
func (r *FetchResult) HasAudio() bool {
	return r.Audio != nil
}

// ChapterPage holds what a parser found on one rendered chapter page.
type ChapterPage struct {
	// Text is the chapter text, one line per text span.
	Text string

	// AudioURL is the absolute narration URL, empty if the page has none.
	AudioURL string

	// HasMain reports whether the main content region was present.
	HasMain bool
}

// ChapterParser extracts chapter text and the audio location from HTML.
type ChapterParser interface {
	ParseChapter(html string, pageURL string) (*ChapterPage, error)
}

// AudioDownloader retrieves narration audio.
type AudioDownloader interface {
	// Download returns the response body of a GET to url.
	// Non-200 responses return an error naming the HTTP status.
	Download(ctx context.Context, url string) ([]byte, error)
}

// ChapterFetcher retrieves a single chapter.
type ChapterFetcher interface {
	// FetchChapter never returns an error; failures are recorded on the
	// result so one bad chapter cannot abort a batch.
	FetchChapter(ctx context.Context, url string) *FetchResult
}

// FetchProgress reports progress during a batch fetch.
type FetchProgress struct {
	URL       string
	Completed int
	Total     int
	Error     error
}

// FetchProgressFunc is called as chapters complete.
type FetchProgressFunc func(FetchProgress)

// BatchFetcher retrieves many chapters with a pacing strategy.
type BatchFetcher interface {
	// FetchAll returns one result per URL. Result order is not guaranteed
	// to match input order; callers must match on ChapterURL.
	FetchAll(ctx context.Context, urls []string, progress FetchProgressFunc) []*FetchResult
}

// Pacer decides whether the nth completed request should be followed by a
// pause, and for how long.
type Pacer interface {
	Pause(n int) (time.Duration, bool)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
