package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/biblefetch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ biblefetch.CheckpointService = (*CheckpointService)(nil)

// CheckpointService implements biblefetch.CheckpointService using SQLite.
// One checkpoint is kept per root URL.
type CheckpointService struct {
	db *DB
}

// NewCheckpointService creates a new CheckpointService.
func NewCheckpointService(db *DB) *CheckpointService {
	return &CheckpointService{db: db}
}

// FindCheckpoint retrieves the checkpoint for rootURL.
func (s *CheckpointService) FindCheckpoint(ctx context.Context, rootURL string) (*biblefetch.Checkpoint, error) {
	var cp biblefetch.Checkpoint
	var updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT root_url, run_id, last_completed, testament_name, updated_at
		FROM checkpoints
		WHERE root_url = ?
	`, rootURL).Scan(&cp.RootURL, &cp.RunID, &cp.LastCompleted, &cp.TestamentName, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, biblefetch.Errorf(biblefetch.ENOTFOUND, "checkpoint not found")
	}
	if err != nil {
		return nil, err
	}

	if cp.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &cp, nil
}

// SaveCheckpoint creates or replaces the checkpoint for cp.RootURL.
// RunID is generated and UpdatedAt set to now when empty.
func (s *CheckpointService) SaveCheckpoint(ctx context.Context, cp *biblefetch.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return err
	}

	if cp.RunID == "" {
		cp.RunID = uuid.New().String()
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (root_url, run_id, last_completed, testament_name, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(root_url) DO UPDATE SET
			run_id = excluded.run_id,
			last_completed = excluded.last_completed,
			testament_name = excluded.testament_name,
			updated_at = excluded.updated_at
	`, cp.RootURL, cp.RunID, cp.LastCompleted, cp.TestamentName, cp.UpdatedAt.UTC().Format(time.RFC3339))

	return err
}
