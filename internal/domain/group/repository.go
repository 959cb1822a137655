package group

import "context"

// Repository provides read access to group membership.
type Repository interface {
	// CountActiveGroupsBatch returns each user's number of active group
	// memberships in one query. Users in no groups are absent.
	CountActiveGroupsBatch(ctx context.Context, userIDs []int64) (map[int64]int, error)
}
