package biblefetch

import "context"

// MergedChapter is a successful fetch result joined with its menu entry.
type MergedChapter struct {
	ID    string
	URL   string
	Text  string
	Audio []byte
}

// ChapterMetadata describes the files written for one chapter.
// Paths are relative to the output directory. Error is set when the
// chapter could not be persisted.
type ChapterMetadata struct {
	ChapterID     string `json:"chapter_id"`
	ChapterURL    string `json:"chapter_url"`
	TextFilePath  string `json:"text_file_path,omitempty"`
	AudioFilePath string `json:"audio_file_path,omitempty"`
	ContentHash   string `json:"content_hash,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Failed reports whether the chapter could not be persisted.
func (m *ChapterMetadata) Failed() bool {
	return m.Error != ""
}

// TestamentIndex is one entry of the global metadata index.
type TestamentIndex struct {
	TestamentName       string             `json:"testament_name"`
	TestamentFolderName string             `json:"testament_folder_name"`
	Chapters            []*ChapterMetadata `json:"chapters"`
}

// ChapterStore writes merged chapters to storage.
type ChapterStore interface {
	// Persist writes each record under folderName. A failure on one record
	// is reported in its metadata and does not stop the others. The error
	// return is reserved for failures that affect the whole folder.
	Persist(ctx context.Context, folderName string, records []*MergedChapter) ([]*ChapterMetadata, error)
}

// IndexStore reads and writes the global metadata index.
type IndexStore interface {
	// LoadIndex returns ENOTFOUND if no index has been written.
	LoadIndex(ctx context.Context) ([]*TestamentIndex, error)

	// WriteIndex replaces the index atomically.
	WriteIndex(ctx context.Context, index []*TestamentIndex) error
}
