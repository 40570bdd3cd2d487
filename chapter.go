package biblefetch

import "context"

// ChapterRef identifies one retrievable chapter in the site's menu.
// URL is absolute and is the key used to re-associate fetch results.
type ChapterRef struct {
	ID  string `json:"chapter_id"`
	URL string `json:"chapter_url"`
}

// TestamentGroup is one top-level section of the chapter menu.
// Chapters are kept in menu order.
type TestamentGroup struct {
	Name     string       `json:"testament_name"`
	Chapters []ChapterRef `json:"chapters"`
}

// URLs returns the chapter URLs of the group in menu order.
func (g *TestamentGroup) URLs() []string {
	urls := make([]string, 0, len(g.Chapters))
	for _, ch := range g.Chapters {
		urls = append(urls, ch.URL)
	}
	return urls
}

// Navigator discovers the site's table of contents.
type Navigator interface {
	// Discover renders rootURL, opens the chapter menu and returns its
	// groups in document order. Returns ENAVIGATION if the menu never
	// became usable. An empty result with a nil error means the menu
	// rendered but contained no groups.
	Discover(ctx context.Context, rootURL string) ([]*TestamentGroup, error)
}

// MenuParser extracts testament groups from rendered menu markup.
type MenuParser interface {
	// ParseMenu parses HTML and returns groups in document order.
	// Relative chapter links are resolved against baseURL.
	ParseMenu(html string, baseURL string) ([]*TestamentGroup, error)
}

// MenuCache stores a previously discovered menu so later runs can skip
// browser discovery.
type MenuCache interface {
	// LoadMenu returns ENOTFOUND if nothing has been cached.
	LoadMenu(ctx context.Context) ([]*TestamentGroup, error)
	SaveMenu(ctx context.Context, groups []*TestamentGroup) error
}
