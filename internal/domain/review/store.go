package review

import (
	"context"
	"errors"
)

// ErrReviewNotFound is returned by Store.GetSnapshot when no snapshot exists
// for the requested key. A stored document that fails to deserialize is
// reported the same way: absence on any parse error.
var ErrReviewNotFound = errors.New("review snapshot not found")

// Store persists one review document per (userID, monthYear) key plus a
// per-month set of failure records. Both are keyed by the logical owner of
// the write, so concurrent writers for different users never collide.
type Store interface {
	GetSnapshot(ctx context.Context, userID int64, monthYear string) (*Snapshot, error)
	PutSnapshot(ctx context.Context, snap *Snapshot) error
	// GetSnapshotsBatch returns the stored snapshots for the given users in a
	// single round trip. Missing and unparseable entries are simply absent
	// from the result, never surfaced as errors.
	GetSnapshotsBatch(ctx context.Context, userIDs []int64, monthYear string) (map[int64]*Snapshot, error)

	AddFailure(ctx context.Context, userID int64, monthYear, detail string) error
	RemoveFailure(ctx context.Context, userID int64, monthYear string) error
	ListFailedUserIDs(ctx context.Context, monthYear string) ([]int64, error)
	CountFailed(ctx context.Context, monthYear string) (int, error)
}
