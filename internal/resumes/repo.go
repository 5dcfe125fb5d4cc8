package resumes

import (
	"context"
	"time"
)

// NewResume carries everything Replace needs to persist one ingested
// document as the user's current resume.
type NewResume struct {
	ID         string
	UserID     string
	StorageKey string
	FileName   string
	Text       string
	CreatedAt  time.Time
	Parsed     ParsedResume
}

// Repo persists resumes and their extracted graph. Replace is full-replace:
// whatever the user had before is removed in the same transaction that
// writes the new record.
type Repo interface {
	Replace(ctx context.Context, rec NewResume) (Resume, error)
	CurrentByUser(ctx context.Context, userID string) (Resume, error)
	// DeleteByUser removes every resume the user owns and returns the
	// storage keys of the removed blobs so the caller can reap them.
	DeleteByUser(ctx context.Context, userID string) ([]string, error)
}
