// internal/infra/database/postgres_ranking_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) *PostgresRankingRepository {
	return &PostgresRankingRepository{db: db}
}

// TotalScoresByUserIDs sums each user's accumulated ranking score, bonus rows
// included, in a single query over the whole id list.
func (r *PostgresRankingRepository) TotalScoresByUserIDs(ctx context.Context, userIDs []int64) (map[int64]int64, error) {
	query := `SELECT user_id, COALESCE(SUM(score), 0)
               FROM rankings
               WHERE user_id = ANY($1)
               GROUP BY user_id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("error querying total scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[int64]int64)
	for rows.Next() {
		var userID, total int64
		if err := rows.Scan(&userID, &total); err != nil {
			return nil, fmt.Errorf("error scanning score row: %w", err)
		}
		scores[userID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score rows: %w", err)
	}
	return scores, nil
}
