package mock

import (
	"context"

	"github.com/fwojciec/biblefetch"
)

// Compile-time interface verification.
var (
	_ biblefetch.Navigator     = (*Navigator)(nil)
	_ biblefetch.MenuParser    = (*MenuParser)(nil)
	_ biblefetch.MenuCache     = (*MenuCache)(nil)
	_ biblefetch.ChapterParser = (*ChapterParser)(nil)
)

// Navigator is a mock implementation of biblefetch.Navigator.
type Navigator struct {
	DiscoverFn func(ctx context.Context, rootURL string) ([]*biblefetch.TestamentGroup, error)
}

func (n *Navigator) Discover(ctx context.Context, rootURL string) ([]*biblefetch.TestamentGroup, error) {
	return n.DiscoverFn(ctx, rootURL)
}

// MenuParser is a mock implementation of biblefetch.MenuParser.
type MenuParser struct {
	ParseMenuFn func(html string, baseURL string) ([]*biblefetch.TestamentGroup, error)
}

func (p *MenuParser) ParseMenu(html string, baseURL string) ([]*biblefetch.TestamentGroup, error) {
	return p.ParseMenuFn(html, baseURL)
}

// MenuCache is a mock implementation of biblefetch.MenuCache.
type MenuCache struct {
	LoadMenuFn func(ctx context.Context) ([]*biblefetch.TestamentGroup, error)
	SaveMenuFn func(ctx context.Context, groups []*biblefetch.TestamentGroup) error
}

func (c *MenuCache) LoadMenu(ctx context.Context) ([]*biblefetch.TestamentGroup, error) {
	return c.LoadMenuFn(ctx)
}

func (c *MenuCache) SaveMenu(ctx context.Context, groups []*biblefetch.TestamentGroup) error {
	return c.SaveMenuFn(ctx, groups)
}

// ChapterParser is a mock implementation of biblefetch.ChapterParser.
type ChapterParser struct {
	ParseChapterFn func(html string, pageURL string) (*biblefetch.ChapterPage, error)
}

func (p *ChapterParser) ParseChapter(html string, pageURL string) (*biblefetch.ChapterPage, error) {
	return p.ParseChapterFn(html, pageURL)
}
