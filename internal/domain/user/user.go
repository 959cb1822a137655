package user

import "time"

// User represents a registered user of the routine service.
type User struct {
	ID        int64
	Nickname  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
