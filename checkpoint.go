package biblefetch

import (
	"context"
	"time"
)

// Checkpoint records the last testament group a run completed for a root URL.
// LastCompleted is the group's position in the discovered menu.
type Checkpoint struct {
	RootURL       string    `json:"rootUrl"`
	RunID         string    `json:"runId"`
	LastCompleted int       `json:"lastCompleted"`
	TestamentName string    `json:"testamentName"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate returns an error if the checkpoint contains invalid fields.
func (c *Checkpoint) Validate() error {
	if c.RootURL == "" {
		return Errorf(EINVALID, "checkpoint root URL required")
	}
	if c.LastCompleted < 0 {
		return Errorf(EINVALID, "checkpoint index must not be negative")
	}
	return nil
}

// CheckpointService persists resumption markers between runs.
type CheckpointService interface {
	// FindCheckpoint returns ENOTFOUND if no checkpoint exists for rootURL.
	FindCheckpoint(ctx context.Context, rootURL string) (*Checkpoint, error)

	// SaveCheckpoint creates or replaces the checkpoint for its root URL.
	SaveCheckpoint(ctx context.Context, cp *Checkpoint) error
}
