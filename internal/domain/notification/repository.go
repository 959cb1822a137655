package notification

import "context"

// Repository records in-app notification events. The review pipeline treats
// this as fire-and-forget: one event per delivered review.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
}
