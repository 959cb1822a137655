// internal/infra/database/postgres_group_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PostgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

// CountActiveGroupsBatch counts each user's active group memberships in a
// single query over the whole id list.
func (r *PostgresGroupRepository) CountActiveGroupsBatch(ctx context.Context, userIDs []int64) (map[int64]int, error) {
	query := `SELECT user_id, COUNT(*)
               FROM group_members
               WHERE user_id = ANY($1) AND status = 'JOINED'
               GROUP BY user_id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("error counting active groups batch: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var userID int64
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, fmt.Errorf("error scanning group count row: %w", err)
		}
		counts[userID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group count rows: %w", err)
	}
	return counts, nil
}
