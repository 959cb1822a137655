package activity

import (
	"context"
	"time"
)

// Repository provides read access to completed user activities. Both methods
// are batch-by-id-list so a whole review run costs one query per source
// regardless of user count.
type Repository interface {
	// CountByTypeBatch returns per-user counts of completed activities per
	// type within [start, end].
	CountByTypeBatch(ctx context.Context, userIDs []int64, start, end time.Time) (map[int64]map[Type]int, error)

	// ListRoutineCompletionsBatch returns, per user, the personal routines
	// completed at least once within [start, end] with their completion
	// counts and repeat masks.
	ListRoutineCompletionsBatch(ctx context.Context, userIDs []int64, start, end time.Time) (map[int64][]RoutineCompletions, error)
}
