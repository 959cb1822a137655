// internal/infra/redisstore/review_store.go
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"routine_review_service/internal/domain/review"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ReviewStore keeps one JSON review document per (user, month) key and a
// per-month hash of failure records.
//
//	review:{userId}:{monthYear}      -> snapshot JSON
//	review:failed:{monthYear}        -> hash userId -> error detail
type ReviewStore struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewReviewStore(client *redis.Client, logger *logrus.Logger) *ReviewStore {
	return &ReviewStore{client: client, logger: logger}
}

func snapshotKey(userID int64, monthYear string) string {
	return fmt.Sprintf("review:%d:%s", userID, monthYear)
}

func failedKey(monthYear string) string {
	return "review:failed:" + monthYear
}

// GetSnapshot returns the stored snapshot, or review.ErrReviewNotFound when
// the key is absent or the stored document does not parse.
func (s *ReviewStore) GetSnapshot(ctx context.Context, userID int64, monthYear string) (*review.Snapshot, error) {
	raw, err := s.client.Get(ctx, snapshotKey(userID, monthYear)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, review.ErrReviewNotFound
		}
		return nil, fmt.Errorf("error getting review snapshot: %w", err)
	}
	snap := review.Snapshot{}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.Warnf("Stored review for user %d, month %s is unparseable, treating as absent: %v", userID, monthYear, err)
		return nil, review.ErrReviewNotFound
	}
	return &snap, nil
}

// PutSnapshot serializes and writes the whole document, overwriting any prior
// value for the key. Retention is left to the store's own policy, so no TTL.
func (s *ReviewStore) PutSnapshot(ctx context.Context, snap *review.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("error serializing review snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(snap.UserID, snap.MonthYear), payload, 0).Err(); err != nil {
		return fmt.Errorf("error saving review snapshot: %w", err)
	}
	return nil
}

// GetSnapshotsBatch fetches all users' snapshots for the month in one MGET.
// Missing and unparseable entries are dropped silently.
func (s *ReviewStore) GetSnapshotsBatch(ctx context.Context, userIDs []int64, monthYear string) (map[int64]*review.Snapshot, error) {
	if len(userIDs) == 0 {
		return map[int64]*review.Snapshot{}, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = snapshotKey(id, monthYear)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("error batch getting review snapshots: %w", err)
	}

	snapshots := make(map[int64]*review.Snapshot, len(userIDs))
	for i, v := range values {
		if v == nil {
			continue
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		snap := review.Snapshot{}
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			s.logger.Warnf("Dropping unparseable stored review for user %d, month %s: %v", userIDs[i], monthYear, err)
			continue
		}
		snapshots[userIDs[i]] = &snap
	}
	return snapshots, nil
}

func (s *ReviewStore) AddFailure(ctx context.Context, userID int64, monthYear, detail string) error {
	if err := s.client.HSet(ctx, failedKey(monthYear), strconv.FormatInt(userID, 10), detail).Err(); err != nil {
		return fmt.Errorf("error recording review failure: %w", err)
	}
	return nil
}

func (s *ReviewStore) RemoveFailure(ctx context.Context, userID int64, monthYear string) error {
	if err := s.client.HDel(ctx, failedKey(monthYear), strconv.FormatInt(userID, 10)).Err(); err != nil {
		return fmt.Errorf("error removing review failure: %w", err)
	}
	return nil
}

func (s *ReviewStore) ListFailedUserIDs(ctx context.Context, monthYear string) ([]int64, error) {
	fields, err := s.client.HKeys(ctx, failedKey(monthYear)).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing failed user IDs: %w", err)
	}
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			s.logger.Warnf("Skipping malformed failed-review field %q for month %s", f, monthYear)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *ReviewStore) CountFailed(ctx context.Context, monthYear string) (int, error) {
	n, err := s.client.HLen(ctx, failedKey(monthYear)).Result()
	if err != nil {
		return 0, fmt.Errorf("error counting failed reviews: %w", err)
	}
	return int(n), nil
}
