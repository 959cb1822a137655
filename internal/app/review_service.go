// internal/app/review_service.go
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"routine_review_service/internal/domain/activity"
	"routine_review_service/internal/domain/group"
	"routine_review_service/internal/domain/notification"
	"routine_review_service/internal/domain/ranking"
	"routine_review_service/internal/domain/review"
	"routine_review_service/internal/domain/user"
	"routine_review_service/internal/infra/executor"

	"github.com/sirupsen/logrus"
)

// ReviewService defines the operations of the monthly review pipeline.
type ReviewService interface {
	// SendMonthlyReviews runs the whole batch for monthYear (previous
	// calendar month when empty): one bulk data load, then one concurrent
	// dispatch per active user. It returns an error when the batch deadline
	// is exceeded or, after every user has been attempted, when any
	// dispatch failed.
	SendMonthlyReviews(ctx context.Context, monthYear string) error

	// SendUserReview runs the immediate single-user path: persist the
	// snapshot with the fallback message right away, notify eagerly, then
	// enrich with AI in a detached background task. Never blocks on AI.
	SendUserReview(ctx context.Context, userID int64, monthYear string) error

	// RetryFailed re-dispatches every user recorded as failed for the month
	// (previous calendar month when empty), removing each record on success.
	RetryFailed(ctx context.Context, monthYear string) error

	// FailedCount reports the failure-record count for the month (current
	// calendar month when empty).
	FailedCount(ctx context.Context, monthYear string) (int, error)

	// GetMonthlyReview returns the stored snapshot, or a freshly computed
	// (not persisted) one when nothing parseable is stored.
	GetMonthlyReview(ctx context.Context, userID int64, monthYear string) (*review.Snapshot, error)
}

// ReviewServiceConfig bounds the pipeline's waits and the detached
// enrichment retry loop. Zero fields take the defaults below.
type ReviewServiceConfig struct {
	AITimeout     time.Duration // per narrative-generation call
	BatchTimeout  time.Duration // whole batch run
	EnrichRetries int
	EnrichDelay   time.Duration
}

const (
	defaultAITimeout    = 10 * time.Second
	defaultBatchTimeout = 30 * time.Minute
	defaultEnrichRetry  = 3
	defaultEnrichDelay  = 2 * time.Second
)

// ReviewServiceImpl implements the ReviewService interface.
type ReviewServiceImpl struct {
	users         user.Repository
	activities    activity.Repository
	rankings      ranking.Repository
	groups        group.Repository
	notifications notification.Repository
	store         review.Store
	generator     review.Generator
	pool          *executor.Pool
	logger        *logrus.Logger
	cfg           ReviewServiceConfig
}

func NewReviewServiceImpl(
	users user.Repository,
	activities activity.Repository,
	rankings ranking.Repository,
	groups group.Repository,
	notifications notification.Repository,
	store review.Store,
	generator review.Generator,
	pool *executor.Pool,
	logger *logrus.Logger,
	cfg ReviewServiceConfig,
) *ReviewServiceImpl {
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = defaultAITimeout
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaultBatchTimeout
	}
	if cfg.EnrichRetries <= 0 {
		cfg.EnrichRetries = defaultEnrichRetry
	}
	if cfg.EnrichDelay <= 0 {
		cfg.EnrichDelay = defaultEnrichDelay
	}
	return &ReviewServiceImpl{
		users:         users,
		activities:    activities,
		rankings:      rankings,
		groups:        groups,
		notifications: notifications,
		store:         store,
		generator:     generator,
		pool:          pool,
		logger:        logger,
		cfg:           cfg,
	}
}

func (s *ReviewServiceImpl) SendMonthlyReviews(ctx context.Context, monthYear string) error {
	targetMonth := monthYear
	if targetMonth == "" {
		targetMonth = review.FormatMonth(time.Now().AddDate(0, -1, 0))
	}
	start, end, err := review.MonthBounds(targetMonth)
	if err != nil {
		return fmt.Errorf("invalid month %q: %w", targetMonth, err)
	}

	allUsers, err := s.users.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}
	if len(allUsers) == 0 {
		s.logger.Warn("No active users, monthly review batch has nothing to send.")
		return nil
	}

	userIDs := make([]int64, len(allUsers))
	userMap := make(map[int64]*user.User, len(allUsers))
	for i, u := range allUsers {
		userIDs[i] = u.ID
		userMap[u.ID] = u
	}

	data, err := s.loadBatchData(ctx, userIDs, start, end, targetMonth)
	if err != nil {
		return fmt.Errorf("failed to load batch data: %w", err)
	}
	data.users = userMap

	s.logger.Infof("Monthly review batch starting: month=%s users=%d", targetMonth, len(allUsers))

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var successCount, failCount int64
	var wg sync.WaitGroup
	for _, id := range userIDs {
		userID := id
		wg.Add(1)
		s.pool.Submit(func() {
			defer wg.Done()
			if err := s.dispatchOne(batchCtx, userID, targetMonth, data); err != nil {
				s.logger.Errorf("Monthly review dispatch failed: userID=%d month=%s err=%v", userID, targetMonth, err)
				if ferr := s.store.AddFailure(batchCtx, userID, targetMonth, err.Error()); ferr != nil {
					s.logger.Errorf("Could not record review failure: userID=%d month=%s err=%v", userID, targetMonth, ferr)
				}
				atomic.AddInt64(&failCount, 1)
				return
			}
			atomic.AddInt64(&successCount, 1)
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	deadline := time.NewTimer(s.cfg.BatchTimeout)
	defer deadline.Stop()
	select {
	case <-done:
	case <-deadline.C:
		cancel()
		return fmt.Errorf("monthly review batch exceeded %s deadline for month %s", s.cfg.BatchTimeout, targetMonth)
	case <-ctx.Done():
		return fmt.Errorf("monthly review batch aborted: %w", ctx.Err())
	}

	success := atomic.LoadInt64(&successCount)
	failed := atomic.LoadInt64(&failCount)
	s.logger.Infof("Monthly review batch finished: month=%s success=%d failed=%d", targetMonth, success, failed)

	if failed > 0 {
		return fmt.Errorf("monthly review batch had failures: %d succeeded, %d failed", success, failed)
	}
	return nil
}

// loadBatchData pulls the data provider collections and the previous month's
// stored snapshots in bulk: one query per source, never per user.
func (s *ReviewServiceImpl) loadBatchData(ctx context.Context, userIDs []int64, start, end time.Time, targetMonth string) (*batchData, error) {
	activityCounts, err := s.activities.CountByTypeBatch(ctx, userIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity counts: %w", err)
	}
	routineCompletions, err := s.activities.ListRoutineCompletionsBatch(ctx, userIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load routine completions: %w", err)
	}
	scores, err := s.rankings.TotalScoresByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	groupCounts, err := s.groups.CountActiveGroupsBatch(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load group counts: %w", err)
	}

	previousSnapshots := map[int64]*review.Snapshot{}
	if prevMonth, ok := review.PreviousMonth(targetMonth); ok {
		previousSnapshots, err = s.store.GetSnapshotsBatch(ctx, userIDs, prevMonth)
		if err != nil {
			return nil, fmt.Errorf("failed to load previous snapshots: %w", err)
		}
	}

	return &batchData{
		activityCounts:     activityCounts,
		routineCompletions: routineCompletions,
		scores:             scores,
		groupCounts:        groupCounts,
		previousSnapshots:  previousSnapshots,
	}, nil
}

// dispatchOne runs the strict per-user sequence: compute, generate or fall
// back, persist, notify. Generation problems are absorbed by the fallback;
// persistence and notification errors surface as the dispatch failure.
func (s *ReviewServiceImpl) dispatchOne(ctx context.Context, userID int64, monthYear string, data *batchData) error {
	snap, err := buildSnapshot(userID, monthYear, data, time.Now())
	if err != nil {
		return fmt.Errorf("failed to compute review: %w", err)
	}

	gen := s.generateWithTimeout(ctx, snap)
	switch gen.Kind {
	case review.GenerationOK:
		snap.MessageContent = gen.Narrative
	case review.GenerationTimedOut:
		s.logger.Warnf("AI generation timed out, using fallback message: userID=%d month=%s", userID, monthYear)
		snap.MessageContent = FallbackMessage(snap)
	case review.GenerationFailed:
		s.logger.Warnf("AI generation failed, using fallback message: userID=%d month=%s err=%v", userID, monthYear, gen.Err)
		snap.MessageContent = FallbackMessage(snap)
	}
	// The fallback counts as a delivered message, not a failure.
	snap.MessageSent = true

	if err := s.store.PutSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to persist review: %w", err)
	}
	if err := s.notifications.Create(ctx, &notification.Notification{
		Type:       notification.TypeMonthlyReview,
		ReceiverID: userID,
	}); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// generateWithTimeout submits one generation call to the shared pool and
// waits up to the configured budget. On timeout the underlying call is
// cancelled so its worker slot frees promptly.
func (s *ReviewServiceImpl) generateWithTimeout(ctx context.Context, snap *review.Snapshot) review.Generation {
	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type genResult struct {
		narrative string
		err       error
	}
	resCh := make(chan genResult, 1)
	s.pool.Submit(func() {
		narrative, err := s.generator.GenerateNarrative(genCtx, snap)
		resCh <- genResult{narrative: narrative, err: err}
	})

	budget := time.NewTimer(s.cfg.AITimeout)
	defer budget.Stop()
	select {
	case res := <-resCh:
		if res.err != nil {
			return review.Generation{Kind: review.GenerationFailed, Err: res.err}
		}
		return review.Generation{Kind: review.GenerationOK, Narrative: res.narrative}
	case <-budget.C:
		cancel()
		return review.Generation{Kind: review.GenerationTimedOut}
	}
}

func (s *ReviewServiceImpl) SendUserReview(ctx context.Context, userID int64, monthYear string) error {
	if monthYear == "" {
		monthYear = review.FormatMonth(time.Now().AddDate(0, -1, 0))
	}

	snap, err := s.calculateForUser(ctx, userID, monthYear)
	if err != nil {
		return fmt.Errorf("failed to compute review: %w", err)
	}

	// Provisional save: fallback content now, AI enrichment pending.
	snap.MessageContent = FallbackMessage(snap)
	snap.MessageSent = false
	if err := s.store.PutSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to persist review: %w", err)
	}

	if err := s.notifications.Create(ctx, &notification.Notification{
		Type:       notification.TypeMonthlyReview,
		ReceiverID: userID,
	}); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	s.pool.Submit(func() {
		s.enrichWithRetry(context.Background(), snap)
	})

	s.logger.Infof("Review saved with fallback and notification sent, AI enrichment pending: userID=%d month=%s", userID, monthYear)
	return nil
}

// enrichWithRetry attempts AI generation up to the configured number of
// times with a fixed delay in between, overwriting the stored snapshot with
// the narrative on the first success. The loop is sequential, never
// concurrent with itself for the same snapshot.
func (s *ReviewServiceImpl) enrichWithRetry(ctx context.Context, snap *review.Snapshot) {
	for attempt := 1; attempt <= s.cfg.EnrichRetries; attempt++ {
		if attempt > 1 {
			s.logger.Infof("Waiting %s before AI enrichment retry: userID=%d month=%s attempt=%d",
				s.cfg.EnrichDelay, snap.UserID, snap.MonthYear, attempt)
			select {
			case <-time.After(s.cfg.EnrichDelay):
			case <-ctx.Done():
				return
			}
		}

		gen := s.generateWithTimeout(ctx, snap)
		switch gen.Kind {
		case review.GenerationOK:
			snap.MessageContent = gen.Narrative
			snap.MessageSent = true
			if err := s.store.PutSnapshot(ctx, snap); err != nil {
				s.logger.Errorf("Could not persist AI-enriched review: userID=%d month=%s err=%v", snap.UserID, snap.MonthYear, err)
				continue
			}
			s.logger.Infof("AI enrichment succeeded: userID=%d month=%s attempt=%d", snap.UserID, snap.MonthYear, attempt)
			return
		case review.GenerationTimedOut:
			s.logger.Warnf("AI enrichment timed out: userID=%d month=%s attempt=%d", snap.UserID, snap.MonthYear, attempt)
		case review.GenerationFailed:
			s.logger.Warnf("AI enrichment failed: userID=%d month=%s attempt=%d err=%v", snap.UserID, snap.MonthYear, attempt, gen.Err)
		}
	}
	s.logger.Errorf("AI enrichment gave up, fallback message stands: userID=%d month=%s attempts=%d",
		snap.UserID, snap.MonthYear, s.cfg.EnrichRetries)
}

// calculateForUser computes a snapshot outside a batch run by issuing the
// provider queries for a single-element id list.
func (s *ReviewServiceImpl) calculateForUser(ctx context.Context, userID int64, monthYear string) (*review.Snapshot, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	start, end, err := review.MonthBounds(monthYear)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", monthYear, err)
	}

	ids := []int64{userID}
	activityCounts, err := s.activities.CountByTypeBatch(ctx, ids, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity counts: %w", err)
	}
	routineCompletions, err := s.activities.ListRoutineCompletionsBatch(ctx, ids, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load routine completions: %w", err)
	}
	scores, err := s.rankings.TotalScoresByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load score: %w", err)
	}
	groupCounts, err := s.groups.CountActiveGroupsBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load group count: %w", err)
	}

	previousSnapshots := map[int64]*review.Snapshot{}
	if prevMonth, ok := review.PreviousMonth(monthYear); ok {
		prev, err := s.store.GetSnapshot(ctx, userID, prevMonth)
		if err == nil {
			previousSnapshots[userID] = prev
		} else if err != review.ErrReviewNotFound {
			return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
		}
	}

	data := &batchData{
		users:              map[int64]*user.User{userID: u},
		activityCounts:     activityCounts,
		routineCompletions: routineCompletions,
		scores:             scores,
		groupCounts:        groupCounts,
		previousSnapshots:  previousSnapshots,
	}
	return buildSnapshot(userID, monthYear, data, time.Now())
}

func (s *ReviewServiceImpl) RetryFailed(ctx context.Context, monthYear string) error {
	targetMonth := monthYear
	if targetMonth == "" {
		targetMonth = review.FormatMonth(time.Now().AddDate(0, -1, 0))
	}

	failedIDs, err := s.store.ListFailedUserIDs(ctx, targetMonth)
	if err != nil {
		return fmt.Errorf("failed to list failed reviews: %w", err)
	}
	if len(failedIDs) == 0 {
		s.logger.Infof("No failed reviews to retry for month %s.", targetMonth)
		return nil
	}

	retrySuccess := 0
	retryFail := 0
	for _, userID := range failedIDs {
		if err := s.SendUserReview(ctx, userID, targetMonth); err != nil {
			retryFail++
			s.logger.Errorf("Review retry failed: userID=%d month=%s err=%v", userID, targetMonth, err)
			continue
		}
		if err := s.store.RemoveFailure(ctx, userID, targetMonth); err != nil {
			s.logger.Errorf("Could not remove review failure record: userID=%d month=%s err=%v", userID, targetMonth, err)
		}
		retrySuccess++
	}

	s.logger.Infof("Review retry finished: month=%s success=%d failed=%d", targetMonth, retrySuccess, retryFail)
	return nil
}

func (s *ReviewServiceImpl) FailedCount(ctx context.Context, monthYear string) (int, error) {
	targetMonth := monthYear
	if targetMonth == "" {
		targetMonth = review.FormatMonth(time.Now())
	}
	return s.store.CountFailed(ctx, targetMonth)
}

func (s *ReviewServiceImpl) GetMonthlyReview(ctx context.Context, userID int64, monthYear string) (*review.Snapshot, error) {
	snap, err := s.store.GetSnapshot(ctx, userID, monthYear)
	if err == nil {
		return snap, nil
	}
	if err != review.ErrReviewNotFound {
		return nil, fmt.Errorf("failed to read stored review: %w", err)
	}
	// Nothing parseable stored: compute fresh without persisting.
	return s.calculateForUser(ctx, userID, monthYear)
}
