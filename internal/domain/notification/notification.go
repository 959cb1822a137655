package notification

import "time"

// Type identifies the kind of an in-app notification event.
type Type string

const (
	TypeMonthlyReview Type = "MONTHLY_REVIEW"
)

// Notification is a single in-app notification event for a user.
// SenderID and GroupID are nil for system-originated events.
type Notification struct {
	ID         int64
	Type       Type
	SenderID   *int64
	ReceiverID int64
	GroupID    *int64
	IsRead     bool
	CreatedAt  time.Time
}
