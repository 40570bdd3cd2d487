package mock

import (
	"context"
	"time"

	"github.com/fwojciec/biblefetch"
)

// Compile-time interface verification.
var (
	_ biblefetch.AudioDownloader = (*AudioDownloader)(nil)
	_ biblefetch.ChapterFetcher  = (*ChapterFetcher)(nil)
	_ biblefetch.BatchFetcher    = (*BatchFetcher)(nil)
	_ biblefetch.Pacer           = (*Pacer)(nil)
	_ biblefetch.DomainLimiter   = (*DomainLimiter)(nil)
)

// AudioDownloader is a mock implementation of biblefetch.AudioDownloader.
type AudioDownloader struct {
	DownloadFn func(ctx context.Context, url string) ([]byte, error)
}

func (d *AudioDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	return d.DownloadFn(ctx, url)
}

// ChapterFetcher is a mock implementation of biblefetch.ChapterFetcher.
type ChapterFetcher struct {
	FetchChapterFn func(ctx context.Context, url string) *biblefetch.FetchResult
}

func (f *ChapterFetcher) FetchChapter(ctx context.Context, url string) *biblefetch.FetchResult {
	return f.FetchChapterFn(ctx, url)
}

// BatchFetcher is a mock implementation of biblefetch.BatchFetcher.
type BatchFetcher struct {
	FetchAllFn func(ctx context.Context, urls []string, progress biblefetch.FetchProgressFunc) []*biblefetch.FetchResult
}

func (f *BatchFetcher) FetchAll(ctx context.Context, urls []string, progress biblefetch.FetchProgressFunc) []*biblefetch.FetchResult {
	return f.FetchAllFn(ctx, urls, progress)
}

// Pacer is a mock implementation of biblefetch.Pacer.
type Pacer struct {
	PauseFn func(n int) (time.Duration, bool)
}

func (p *Pacer) Pause(n int) (time.Duration, bool) {
	return p.PauseFn(n)
}

// DomainLimiter is a mock implementation of biblefetch.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
