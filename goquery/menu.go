// Package goquery parses rendered site markup with goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/biblefetch"
)

// MenuSelectors names the elements that make up the chapter menu.
type MenuSelectors struct {
	// Group matches one testament group.
	Group string
	// Name matches the group heading, relative to Group.
	Name string
	// Link matches a chapter link, relative to Group.
	Link string
	// Label matches the chapter identifier, relative to Link.
	Label string
}

// DefaultMenuSelectors returns the selectors used by the live site's menu.
func DefaultMenuSelectors() MenuSelectors {
	return MenuSelectors{
		Group: "div.book-button",
		Name:  "h4",
		Link:  "a.chapter-box",
		Label: "span",
	}
}

// Ensure MenuParser implements biblefetch.MenuParser at compile time.
var _ biblefetch.MenuParser = (*MenuParser)(nil)

// MenuParser extracts testament groups from the chapter menu.
type MenuParser struct {
	selectors MenuSelectors
}

// NewMenuParser creates a MenuParser using DefaultMenuSelectors.
func NewMenuParser() *MenuParser {
	return &MenuParser{selectors: DefaultMenuSelectors()}
}

// NewMenuParserWithSelectors creates a MenuParser for a differently shaped menu.
func NewMenuParserWithSelectors(s MenuSelectors) *MenuParser {
	return &MenuParser{selectors: s}
}

// ParseMenu returns the menu's groups in document order. Links without an
// href are skipped. Links to another host are kept as-is.
func (p *MenuParser) ParseMenu(html string, baseURL string) ([]*biblefetch.TestamentGroup, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, biblefetch.Errorf(biblefetch.EINVALID, "invalid base URL: %q", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, biblefetch.Errorf(biblefetch.EINVALID, "failed to parse HTML: %v", err)
	}

	groups := []*biblefetch.TestamentGroup{}
	doc.Find(p.selectors.Group).Each(func(_ int, sel *goquery.Selection) {
		group := &biblefetch.TestamentGroup{
			Name:     strings.TrimSpace(sel.Find(p.selectors.Name).First().Text()),
			Chapters: []biblefetch.ChapterRef{},
		}

		sel.Find(p.selectors.Link).Each(func(_ int, link *goquery.Selection) {
			href, exists := link.Attr("href")
			if !exists || strings.TrimSpace(href) == "" || isNonHTTPLink(href) {
				return
			}

			resolved := resolveURL(base, href)
			if resolved == "" {
				return
			}

			group.Chapters = append(group.Chapters, biblefetch.ChapterRef{
				ID:  strings.TrimSpace(link.Find(p.selectors.Label).First().Text()),
				URL: resolved,
			})
		})

		groups = append(groups, group)
	})

	return groups, nil
}

// resolveURL resolves href against base and strips the fragment.
// Returns empty string if href cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
