package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/biblefetch"
	"github.com/fwojciec/biblefetch/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Global Metadata Index
// The index is replaced atomically and can be read back on resume.

func TestIndexStore_LoadMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := fs.NewIndexStore(filepath.Join(t.TempDir(), fs.DefaultIndexFileName))

	_, err := store.LoadIndex(context.Background())

	assert.Equal(t, biblefetch.ENOTFOUND, biblefetch.ErrorCode(err))
}

func TestIndexStore_WriteThenLoad(t *testing.T) {
	t.Parallel()

	// Given an index with one testament
	path := filepath.Join(t.TempDir(), fs.DefaultIndexFileName)
	store := fs.NewIndexStore(path)
	index := []*biblefetch.TestamentIndex{{
		TestamentName:       "Genesis",
		TestamentFolderName: "testament_0",
		Chapters: []*biblefetch.ChapterMetadata{{
			ChapterID:    "1",
			ChapterURL:   "https://example.com/gen/1",
			TextFilePath: "testament_0/chapter_1/content.txt",
		}},
	}}

	// When I write and reload it
	require.NoError(t, store.WriteIndex(context.Background(), index))
	got, err := store.LoadIndex(context.Background())

	// Then the same index comes back
	require.NoError(t, err)
	assert.Equal(t, index, got)

	// And no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fs.DefaultIndexFileName, entries[0].Name())
}

func TestIndexStore_UsesSnakeCaseKeysAndOmitsAbsentAudio(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), fs.DefaultIndexFileName)
	store := fs.NewIndexStore(path)
	index := []*biblefetch.TestamentIndex{{
		TestamentName:       "Exodus",
		TestamentFolderName: "testament_1",
		Chapters: []*biblefetch.ChapterMetadata{{
			ChapterID:    "1",
			ChapterURL:   "https://example.com/ex/1",
			TextFilePath: "testament_1/chapter_1/content.txt",
		}},
	}}
	require.NoError(t, store.WriteIndex(context.Background(), index))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Exodus", raw[0]["testament_name"])
	assert.Equal(t, "testament_1", raw[0]["testament_folder_name"])

	chapters, ok := raw[0]["chapters"].([]any)
	require.True(t, ok)
	chapter, ok := chapters[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1", chapter["chapter_id"])
	assert.Contains(t, chapter, "text_file_path")
	assert.NotContains(t, chapter, "audio_file_path")
	assert.NotContains(t, chapter, "error")
}

func TestIndexStore_WriteReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), fs.DefaultIndexFileName)
	store := fs.NewIndexStore(path)
	ctx := context.Background()

	require.NoError(t, store.WriteIndex(ctx, []*biblefetch.TestamentIndex{
		{TestamentName: "A", TestamentFolderName: "testament_0"},
		{TestamentName: "B", TestamentFolderName: "testament_1"},
	}))
	require.NoError(t, store.WriteIndex(ctx, []*biblefetch.TestamentIndex{
		{TestamentName: "C", TestamentFolderName: "testament_0"},
	}))

	got, err := store.LoadIndex(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].TestamentName)
}

func TestIndexStore_WriteNilProducesEmptyArray(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), fs.DefaultIndexFileName)
	store := fs.NewIndexStore(path)

	require.NoError(t, store.WriteIndex(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestIndexStore_LoadCorruptReturnsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), fs.DefaultIndexFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	store := fs.NewIndexStore(path)

	_, err := store.LoadIndex(context.Background())

	assert.Equal(t, biblefetch.EINVALID, biblefetch.ErrorCode(err))
}
