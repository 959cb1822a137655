package scheduler

import (
	"context"
	"time"

	"routine_review_service/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReviewScheduler drives the review pipeline on a fixed calendar: the batch
// run on the 1st of each month for the previous month, and a daily sweep that
// re-dispatches recorded failures.
type ReviewScheduler struct {
	cronEngine         *cron.Cron
	reviewService      app.ReviewService
	logger             *logrus.Logger
	cronSpecMonthly    string
	cronSpecRetrySweep string
	batchTimeout       time.Duration
}

func NewReviewScheduler(
	reviewService app.ReviewService,
	logger *logrus.Logger,
	cronSpecMonthly string, // e.g. "0 9 1 * *" (09:00 on the 1st)
	cronSpecRetrySweep string, // e.g. "0 10 * * *" (10:00 daily)
	batchTimeout time.Duration,
) *ReviewScheduler {
	return &ReviewScheduler{
		cronEngine:         cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		reviewService:      reviewService,
		logger:             logger,
		cronSpecMonthly:    cronSpecMonthly,
		cronSpecRetrySweep: cronSpecRetrySweep,
		batchTimeout:       batchTimeout,
	}
}

func (s *ReviewScheduler) Start() {
	s.logger.Info("Starting review scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecMonthly, func() {
		s.logger.Info("Cron job triggered for monthly review batch.")
		// Leave headroom past the batch's own deadline so the service
		// reports the timeout, not the context.
		ctx, cancel := context.WithTimeout(context.Background(), s.batchTimeout+5*time.Minute)
		defer cancel()
		// Empty month resolves to the previous calendar month.
		if err := s.reviewService.SendMonthlyReviews(ctx, ""); err != nil {
			s.logger.Errorf("Monthly review batch run failed: %v", err)
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add monthly review cron job: %v", err)
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecRetrySweep, func() {
		s.logger.Info("Cron job triggered for failed review retry sweep.")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.reviewService.RetryFailed(ctx, ""); err != nil {
			s.logger.Errorf("Failed review retry sweep failed: %v", err)
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add retry sweep cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Review scheduler started with jobs.")
}

func (s *ReviewScheduler) Stop() {
	s.logger.Info("Stopping review scheduler...")
	ctx := s.cronEngine.Stop() // Stops scheduling new runs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Review scheduler gracefully stopped.")
}
