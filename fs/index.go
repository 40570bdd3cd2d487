package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/biblefetch"
)

// DefaultIndexFileName is the name of the global metadata index.
const DefaultIndexFileName = "global_metadata.json"

// Ensure IndexStore implements biblefetch.IndexStore at compile time.
var _ biblefetch.IndexStore = (*IndexStore)(nil)

// IndexStore keeps the global metadata index in a JSON file.
type IndexStore struct {
	path string
}

// NewIndexStore creates an IndexStore writing to path.
func NewIndexStore(path string) *IndexStore {
	return &IndexStore{path: path}
}

// LoadIndex reads the index. Returns ENOTFOUND if the file does not exist.
func (s *IndexStore) LoadIndex(ctx context.Context) ([]*biblefetch.TestamentIndex, error) {
	var index []*biblefetch.TestamentIndex
	if err := readJSON(s.path, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// WriteIndex replaces the index. The file is written to a temporary name and
// renamed into place, so readers never see a partial index.
func (s *IndexStore) WriteIndex(ctx context.Context, index []*biblefetch.TestamentIndex) error {
	if index == nil {
		index = []*biblefetch.TestamentIndex{}
	}
	return writeJSON(s.path, index)
}

// readJSON decodes the file at path into v. Returns ENOTFOUND if it does not exist.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return biblefetch.Errorf(biblefetch.ENOTFOUND, "%s not found", filepath.Base(path))
	} else if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return biblefetch.Errorf(biblefetch.EINVALID, "parsing %s: %v", filepath.Base(path), err)
	}
	return nil
}

// writeJSON atomically replaces path with the indented JSON encoding of v.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
