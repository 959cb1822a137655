package user

import "context"

// Repository defines the operations for retrieving User entities.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	ListActive(ctx context.Context) ([]*User, error)
}
