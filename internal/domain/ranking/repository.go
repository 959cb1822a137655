package ranking

import "context"

// Repository provides read access to accumulated ranking scores.
type Repository interface {
	// TotalScoresByUserIDs returns each user's accumulated score, bonuses
	// included, in one query. Users with no score rows are absent.
	TotalScoresByUserIDs(ctx context.Context, userIDs []int64) (map[int64]int64, error)
}
