package fs

import (
	"context"

	"github.com/fwojciec/biblefetch"
)

// DefaultMenuFileName is the name of the cached chapter menu.
const DefaultMenuFileName = "testament_metadata.json"

// Ensure MenuCache implements biblefetch.MenuCache at compile time.
var _ biblefetch.MenuCache = (*MenuCache)(nil)

// MenuCache keeps a discovered chapter menu in a JSON file.
type MenuCache struct {
	path string
}

// NewMenuCache creates a MenuCache stored at path.
func NewMenuCache(path string) *MenuCache {
	return &MenuCache{path: path}
}

// LoadMenu reads the cached menu. Returns ENOTFOUND if nothing is cached.
func (c *MenuCache) LoadMenu(ctx context.Context) ([]*biblefetch.TestamentGroup, error) {
	var groups []*biblefetch.TestamentGroup
	if err := readJSON(c.path, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// SaveMenu replaces the cached menu.
func (c *MenuCache) SaveMenu(ctx context.Context, groups []*biblefetch.TestamentGroup) error {
	if groups == nil {
		groups = []*biblefetch.TestamentGroup{}
	}
	return writeJSON(c.path, groups)
}
