package scrape_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/biblefetch"
	"github.com/fwojciec/biblefetch/goquery"
	"github.com/fwojciec/biblefetch/mock"
	"github.com/fwojciec/biblefetch/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chapterSession returns a session whose waits succeed and whose HTML is html.
func chapterSession(html string, closed *atomic.Int32) *mock.Session {
	return &mock.Session{
		WaitVisibleFn: func(string, time.Duration) error { return nil },
		WaitPresentFn: func(string, time.Duration) error { return nil },
		HTMLFn:        func() (string, error) { return html, nil },
		CloseFn: func() error {
			closed.Add(1)
			return nil
		},
	}
}

func staticParser(page *biblefetch.ChapterPage) *mock.ChapterParser {
	return &mock.ChapterParser{
		ParseChapterFn: func(html, pageURL string) (*biblefetch.ChapterPage, error) {
			return page, nil
		},
	}
}

func TestChapterFetcher_FetchChapter(t *testing.T) {
	t.Parallel()

	const chapterURL = "https://example.com/gen/1"
	const audioURL = "https://cdn.example.com/gen1.mp3"

	t.Run("returns text and downloaded audio", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) {
				assert.Equal(t, chapterURL, url)
				return chapterSession("<main/>", &closed), nil
			},
		}
		audio := &mock.AudioDownloader{
			DownloadFn: func(ctx context.Context, url string) ([]byte, error) {
				assert.Equal(t, audioURL, url)
				return []byte("mp3"), nil
			},
		}
		f := scrape.NewChapterFetcher(browser,
			staticParser(&biblefetch.ChapterPage{Text: "In the beginning", AudioURL: audioURL, HasMain: true}),
			audio,
		)

		r := f.FetchChapter(context.Background(), chapterURL)

		require.NoError(t, r.Err)
		assert.Equal(t, chapterURL, r.ChapterURL)
		assert.Equal(t, "In the beginning", r.Text)
		assert.Equal(t, audioURL, r.AudioURL)
		assert.Equal(t, []byte("mp3"), r.Audio)
		assert.Equal(t, int32(1), closed.Load())
	})

	t.Run("missing audio element yields text-only result", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		session := chapterSession("<main/>", &closed)
		session.WaitPresentFn = func(string, time.Duration) error { return errors.New("timeout") }
		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) { return session, nil },
		}
		audio := &mock.AudioDownloader{
			DownloadFn: func(ctx context.Context, url string) ([]byte, error) {
				t.Fatal("download should not be called")
				return nil, nil
			},
		}
		f := scrape.NewChapterFetcher(browser,
			staticParser(&biblefetch.ChapterPage{Text: "text", HasMain: true}),
			audio,
			scrape.WithRetryDelays(nil),
		)

		r := f.FetchChapter(context.Background(), chapterURL)

		require.NoError(t, r.Err)
		assert.Equal(t, "text", r.Text)
		assert.Nil(t, r.Audio)
		assert.False(t, r.HasAudio())
	})

	t.Run("audio HTTP 404 fails the chapter without retry", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		var opens atomic.Int32
		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) {
				opens.Add(1)
				return chapterSession("<main/>", &closed), nil
			},
		}
		audio := &mock.AudioDownloader{
			DownloadFn: func(ctx context.Context, url string) ([]byte, error) {
				return nil, biblefetch.Errorf(biblefetch.EFETCH, "failed to download audio, HTTP status: 404")
			},
		}
		f := scrape.NewChapterFetcher(browser,
			staticParser(&biblefetch.ChapterPage{Text: "text", AudioURL: audioURL, HasMain: true}),
			audio,
			scrape.WithRetryDelays([]time.Duration{0, 0}),
		)

		r := f.FetchChapter(context.Background(), chapterURL)

		require.Error(t, r.Err)
		assert.Equal(t, biblefetch.EFETCH, biblefetch.ErrorCode(r.Err))
		assert.Contains(t, biblefetch.ErrorMessage(r.Err), "404")
		assert.Equal(t, chapterURL, r.ChapterURL)
		assert.Empty(t, r.Text)
		assert.Equal(t, int32(1), opens.Load())
		assert.Equal(t, int32(1), closed.Load())
	})

	t.Run("retries when audio host is unavailable", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) {
				return chapterSession("<main/>", &closed), nil
			},
		}
		var downloads atomic.Int32
		audio := &mock.AudioDownloader{
			DownloadFn: func(ctx context.Context, url string) ([]byte, error) {
				if downloads.Add(1) < 3 {
					return nil, biblefetch.Errorf(biblefetch.EUNAVAILABLE, "failed to download audio, HTTP status: 503")
				}
				return []byte("mp3"), nil
			},
		}
		f := scrape.NewChapterFetcher(browser,
			staticParser(&biblefetch.ChapterPage{Text: "text", AudioURL: audioURL, HasMain: true}),
			audio,
			scrape.WithRetryDelays([]time.Duration{0, 0, 0}),
		)

		r := f.FetchChapter(context.Background(), chapterURL)

		require.NoError(t, r.Err)
		assert.Equal(t, []byte("mp3"), r.Audio)
		assert.Equal(t, int32(3), downloads.Load())
		assert.Equal(t, int32(3), closed.Load(), "every session is closed")
	})

	t.Run("page without content region keeps its audio", func(t *testing.T) {
		t.Parallel()

		// Given a page whose content region never appears but whose audio element does
		var closed atomic.Int32
		var opens atomic.Int32
		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) {
				opens.Add(1)
				s := chapterSession(`<html><body><video class="audio-player" src="/audio/gen1.mp3"></video></body></html>`, &closed)
				s.WaitVisibleFn = func(string, time.Duration) error {
					return fmt.Errorf("waiting for main: %w", context.DeadlineExceeded)
				}
				return s, nil
			},
		}
		var downloaded []string
		audio := &mock.AudioDownloader{
			DownloadFn: func(ctx context.Context, url string) ([]byte, error) {
				downloaded = append(downloaded, url)
				return []byte("mp3"), nil
			},
		}
		f := scrape.NewChapterFetcher(browser, goquery.NewChapterParser(), audio,
			scrape.WithRetryDelays([]time.Duration{0, 0, 0}),
		)

		// When the chapter is fetched
		r := f.FetchChapter(context.Background(), chapterURL)

		// Then it succeeds on the first attempt with empty text and the audio
		require.NoError(t, r.Err)
		assert.Empty(t, r.Text)
		assert.Equal(t, "https://example.com/audio/gen1.mp3", r.AudioURL)
		assert.Equal(t, []byte("mp3"), r.Audio)
		assert.Equal(t, []string{"https://example.com/audio/gen1.mp3"}, downloaded)
		assert.Equal(t, int32(1), opens.Load())
		assert.Equal(t, int32(1), closed.Load())
	})

	t.Run("attempt deadline expiry is retried", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		var opens atomic.Int32
		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) {
				opens.Add(1)
				s := chapterSession("", &closed)
				s.WaitVisibleFn = func(string, time.Duration) error {
					<-ctx.Done()
					return ctx.Err()
				}
				return s, nil
			},
		}
		f := scrape.NewChapterFetcher(browser,
			staticParser(&biblefetch.ChapterPage{}),
			&mock.AudioDownloader{},
			scrape.WithFetchTimeout(10*time.Millisecond),
			scrape.WithRetryDelays([]time.Duration{0}),
		)

		r := f.FetchChapter(context.Background(), chapterURL)

		assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
		assert.Equal(t, int32(2), opens.Load(), "deadline expiry is retried")
		assert.Equal(t, int32(2), closed.Load())
	})

	t.Run("open failure is returned on the result", func(t *testing.T) {
		t.Parallel()

		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) {
				return nil, errors.New("navigation failed")
			},
		}
		f := scrape.NewChapterFetcher(browser, staticParser(nil), &mock.AudioDownloader{},
			scrape.WithRetryDelays(nil),
		)

		r := f.FetchChapter(context.Background(), chapterURL)

		require.Error(t, r.Err)
		assert.Contains(t, r.Err.Error(), "navigation failed")
	})

	t.Run("waits on the rate limiter with the page host", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		var domains []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(ctx context.Context, domain string) error {
				domains = append(domains, domain)
				return nil
			},
		}
		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) {
				return chapterSession("", &closed), nil
			},
		}
		f := scrape.NewChapterFetcher(browser,
			staticParser(&biblefetch.ChapterPage{Text: "t", HasMain: true}),
			&mock.AudioDownloader{},
			scrape.WithRateLimiter(limiter),
		)

		r := f.FetchChapter(context.Background(), chapterURL)

		require.NoError(t, r.Err)
		assert.Equal(t, []string{"example.com"}, domains)
	})

	t.Run("waits on the rate limiter with the audio host before download", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		var domains []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(ctx context.Context, domain string) error {
				domains = append(domains, domain)
				return nil
			},
		}
		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) {
				return chapterSession("", &closed), nil
			},
		}
		audio := &mock.AudioDownloader{
			DownloadFn: func(ctx context.Context, url string) ([]byte, error) {
				assert.Equal(t, []string{"example.com", "cdn.example.com"}, domains)
				return []byte("mp3"), nil
			},
		}
		f := scrape.NewChapterFetcher(browser,
			staticParser(&biblefetch.ChapterPage{Text: "t", AudioURL: audioURL, HasMain: true}),
			audio,
			scrape.WithRateLimiter(limiter),
		)

		r := f.FetchChapter(context.Background(), chapterURL)

		require.NoError(t, r.Err)
		assert.Equal(t, []string{"example.com", "cdn.example.com"}, domains)
	})

	t.Run("canceled context is not retried", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var opens atomic.Int32
		browser := &mock.Browser{
			OpenFn: func(ctx context.Context, url string) (biblefetch.Session, error) {
				opens.Add(1)
				cancel()
				return nil, ctx.Err()
			},
		}
		f := scrape.NewChapterFetcher(browser, staticParser(nil), &mock.AudioDownloader{},
			scrape.WithRetryDelays([]time.Duration{0, 0}),
		)

		r := f.FetchChapter(ctx, chapterURL)

		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Equal(t, int32(1), opens.Load())
	})
}
