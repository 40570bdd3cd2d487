package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/biblefetch"
)

// ChapterSelectors names the elements read from a chapter page.
type ChapterSelectors struct {
	// Main matches the content region.
	Main string
	// Text matches text spans, relative to Main.
	Text string
	// Audio matches the element carrying the narration source.
	Audio string
	// AudioAttr is the attribute holding the narration URL.
	AudioAttr string
}

// DefaultChapterSelectors returns the selectors used by the live site's chapter pages.
func DefaultChapterSelectors() ChapterSelectors {
	return ChapterSelectors{
		Main:      "main",
		Text:      "span.align-left",
		Audio:     "video.audio-player",
		AudioAttr: "src",
	}
}

// Ensure ChapterParser implements biblefetch.ChapterParser at compile time.
var _ biblefetch.ChapterParser = (*ChapterParser)(nil)

// ChapterParser extracts chapter text and narration URL from a chapter page.
type ChapterParser struct {
	selectors ChapterSelectors
}

// NewChapterParser creates a ChapterParser using DefaultChapterSelectors.
func NewChapterParser() *ChapterParser {
	return &ChapterParser{selectors: DefaultChapterSelectors()}
}

// NewChapterParserWithSelectors creates a ChapterParser with custom selectors.
func NewChapterParserWithSelectors(s ChapterSelectors) *ChapterParser {
	return &ChapterParser{selectors: s}
}

// ParseChapter joins the trimmed text of every text span inside the main
// region with newlines, in document order. A page without a main region
// yields empty text and HasMain=false. The audio URL is resolved against
// pageURL; an audio element without the source attribute counts as no audio.
func (p *ChapterParser) ParseChapter(html string, pageURL string) (*biblefetch.ChapterPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, biblefetch.Errorf(biblefetch.EINVALID, "failed to parse HTML: %v", err)
	}

	page := &biblefetch.ChapterPage{}

	content := doc.Find(p.selectors.Main).First()
	if content.Length() > 0 {
		page.HasMain = true
		var lines []string
		content.Find(p.selectors.Text).Each(func(_ int, sel *goquery.Selection) {
			lines = append(lines, strings.TrimSpace(sel.Text()))
		})
		page.Text = strings.Join(lines, "\n")
	}

	src, ok := doc.Find(p.selectors.Audio).First().Attr(p.selectors.AudioAttr)
	src = strings.TrimSpace(src)
	if ok && src != "" {
		page.AudioURL = src
		if base, err := url.Parse(pageURL); err == nil && base.IsAbs() {
			if resolved := resolveURL(base, src); resolved != "" {
				page.AudioURL = resolved
			}
		}
	}

	return page, nil
}
