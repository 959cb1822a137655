// internal/infra/database/postgres_activity_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"routine_review_service/internal/domain/activity"

	"github.com/lib/pq" // For pq.Array and driver registration
)

type PostgresActivityRepository struct {
	db *sql.DB
}

func NewPostgresActivityRepository(db *sql.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

// CountByTypeBatch aggregates completed-activity counts per user and type in
// a single GROUP BY query over the whole id list.
func (r *PostgresActivityRepository) CountByTypeBatch(ctx context.Context, userIDs []int64, start, end time.Time) (map[int64]map[activity.Type]int, error) {
	query := `SELECT user_id, activity_type, COUNT(*)
               FROM user_activities
               WHERE user_id = ANY($1) AND activity_date BETWEEN $2 AND $3
               GROUP BY user_id, activity_type`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs), start, end)
	if err != nil {
		return nil, fmt.Errorf("error counting activities batch: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]map[activity.Type]int)
	for rows.Next() {
		var userID int64
		var actType activity.Type
		var count int
		if err := rows.Scan(&userID, &actType, &count); err != nil {
			return nil, fmt.Errorf("error scanning activity count row: %w", err)
		}
		if counts[userID] == nil {
			counts[userID] = make(map[activity.Type]int)
		}
		counts[userID][actType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity count rows: %w", err)
	}
	return counts, nil
}

// ListRoutineCompletionsBatch returns per-routine completion counts joined
// with each routine's repeat mask, for every user in the id list at once.
func (r *PostgresActivityRepository) ListRoutineCompletionsBatch(ctx context.Context, userIDs []int64, start, end time.Time) (map[int64][]activity.RoutineCompletions, error) {
	query := `SELECT ua.user_id, pr.routine_id, pr.repeat_days, COUNT(*)
               FROM user_activities ua
               JOIN personal_routines pr ON pr.routine_id = ua.routine_id
               WHERE ua.user_id = ANY($1)
                 AND ua.activity_type = $2
                 AND ua.activity_date BETWEEN $3 AND $4
               GROUP BY ua.user_id, pr.routine_id, pr.repeat_days`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs), activity.TypePersonalRoutineComplete, start, end)
	if err != nil {
		return nil, fmt.Errorf("error listing routine completions batch: %w", err)
	}
	defer rows.Close()

	completions := make(map[int64][]activity.RoutineCompletions)
	for rows.Next() {
		var userID int64
		rc := activity.RoutineCompletions{}
		if err := rows.Scan(&userID, &rc.RoutineID, &rc.RepeatDays, &rc.Completions); err != nil {
			return nil, fmt.Errorf("error scanning routine completion row: %w", err)
		}
		completions[userID] = append(completions[userID], rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating routine completion rows: %w", err)
	}
	return completions, nil
}
