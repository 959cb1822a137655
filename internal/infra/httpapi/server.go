// internal/infra/httpapi/server.go
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"routine_review_service/internal/app"
	"routine_review_service/internal/domain/review"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Server exposes the thin admin surface of the review pipeline.
type Server struct {
	reviewService app.ReviewService
	logger        *logrus.Logger
	httpServer    *http.Server
}

func NewServer(addr string, reviewService app.ReviewService, logger *logrus.Logger) *Server {
	s := &Server{reviewService: reviewService, logger: logger}

	r := chi.NewRouter()
	r.Post("/api/reviews/monthly", s.handleRunMonthly)
	r.Post("/api/reviews/retry", s.handleRetryFailed)
	r.Post("/api/reviews/user/{userID}", s.handleRunUser)
	r.Get("/api/reviews/failed/count", s.handleFailedCount)
	r.Get("/api/reviews/{userID}", s.handleGetReview)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleRunMonthly kicks off a batch run in the background; the run can take
// up to the batch deadline, far beyond any sensible request timeout.
func (s *Server) handleRunMonthly(w http.ResponseWriter, r *http.Request) {
	monthYear := r.URL.Query().Get("monthYear")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Minute)
		defer cancel()
		if err := s.reviewService.SendMonthlyReviews(ctx, monthYear); err != nil {
			s.logger.Errorf("Monthly review batch run failed: %v", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"data": "monthly review batch started"})
}

func (s *Server) handleRunUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}
	monthYear := r.URL.Query().Get("monthYear")
	if err := s.reviewService.SendUserReview(r.Context(), userID, monthYear); err != nil {
		s.logger.Errorf("Single-user review run failed: userID=%d err=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "review dispatch failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": "review message sent"})
}

func (s *Server) handleRetryFailed(w http.ResponseWriter, r *http.Request) {
	monthYear := r.URL.Query().Get("monthYear")
	if err := s.reviewService.RetryFailed(r.Context(), monthYear); err != nil {
		s.logger.Errorf("Review retry run failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "retry run failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": "retry run finished"})
}

func (s *Server) handleFailedCount(w http.ResponseWriter, r *http.Request) {
	monthYear := r.URL.Query().Get("monthYear")
	count, err := s.reviewService.FailedCount(r.Context(), monthYear)
	if err != nil {
		s.logger.Errorf("Failed-count read failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed count unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"data": count})
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}
	monthYear := r.URL.Query().Get("monthYear")
	if monthYear == "" {
		monthYear = review.FormatMonth(time.Now().AddDate(0, -1, 0))
	}
	snap, err := s.reviewService.GetMonthlyReview(r.Context(), userID, monthYear)
	if err != nil {
		s.logger.Errorf("Review read failed: userID=%d month=%s err=%v", userID, monthYear, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "review unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]*review.Snapshot{"data": snap})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
