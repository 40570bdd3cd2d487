// Package fs provides file-based storage for chapters and metadata.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/biblefetch"
)

// File names written inside each chapter folder.
const (
	TextFileName  = "content.txt"
	AudioFileName = "audio.mp3"
)

// ChapterFolderName returns the folder name for a chapter identifier.
// Path separators and other characters unsafe in file names are replaced.
func ChapterFolderName(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		id = "unknown"
	}
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, id)
	if safe == "." || safe == ".." {
		safe = strings.Repeat("_", len(safe))
	}
	return "chapter_" + safe
}

// Ensure ChapterStore implements biblefetch.ChapterStore at compile time.
var _ biblefetch.ChapterStore = (*ChapterStore)(nil)

// ChapterStore writes chapters as baseDir/<folder>/chapter_<id>/{content.txt,audio.mp3}.
type ChapterStore struct {
	baseDir string
}

// NewChapterStore creates a ChapterStore rooted at baseDir.
func NewChapterStore(baseDir string) *ChapterStore {
	return &ChapterStore{baseDir: baseDir}
}

// Persist writes each record and returns its metadata. Paths in the metadata
// are relative to baseDir. A record without audio gets no audio file. A
// record that cannot be written is returned with Error set, and the
// remaining records are still written.
func (s *ChapterStore) Persist(ctx context.Context, folderName string, records []*biblefetch.MergedChapter) ([]*biblefetch.ChapterMetadata, error) {
	if folderName == "" || filepath.IsAbs(folderName) || strings.Contains(folderName, "..") {
		return nil, biblefetch.Errorf(biblefetch.EINVALID, "invalid folder name %q", folderName)
	}
	if err := os.MkdirAll(filepath.Join(s.baseDir, folderName), 0755); err != nil {
		return nil, biblefetch.Errorf(biblefetch.EPERSIST, "creating %s: %v", folderName, err)
	}

	metas := make([]*biblefetch.ChapterMetadata, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return metas, err
		}
		metas = append(metas, s.persistOne(folderName, rec))
	}
	return metas, nil
}

func (s *ChapterStore) persistOne(folderName string, rec *biblefetch.MergedChapter) *biblefetch.ChapterMetadata {
	meta := &biblefetch.ChapterMetadata{
		ChapterID:  rec.ID,
		ChapterURL: rec.URL,
	}

	relDir := filepath.Join(folderName, ChapterFolderName(rec.ID))
	if err := os.MkdirAll(filepath.Join(s.baseDir, relDir), 0755); err != nil {
		meta.Error = fmt.Sprintf("creating chapter folder: %v", err)
		return meta
	}

	textPath := filepath.Join(relDir, TextFileName)
	if err := os.WriteFile(filepath.Join(s.baseDir, textPath), []byte(rec.Text), 0644); err != nil {
		meta.Error = fmt.Sprintf("writing text: %v", err)
		return meta
	}
	meta.TextFilePath = textPath
	meta.ContentHash = ComputeHash(rec.Text)

	if rec.Audio == nil {
		return meta
	}

	audioPath := filepath.Join(relDir, AudioFileName)
	if err := os.WriteFile(filepath.Join(s.baseDir, audioPath), rec.Audio, 0644); err != nil {
		meta.Error = fmt.Sprintf("writing audio: %v", err)
		return meta
	}
	meta.AudioFilePath = audioPath

	return meta
}

// ComputeHash computes a hash of the content using xxhash.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
