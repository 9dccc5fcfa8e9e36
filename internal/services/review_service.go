package services

import (
	"context"
	"strings"

	"homefix_backend/internal/logger"
	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"
	"homefix_backend/internal/services/dto"
	"homefix_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ReviewService interface {
	SubmitReview(ctx context.Context, db *gorm.DB, p Principal, bookingID string, req *dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error)
}

type reviewService struct {
	bookings   repositories.BookingRepository
	workers    repositories.WorkerRepository
	reviews    repositories.ReviewRepository
	dispatcher *Dispatcher
}

func NewReviewService(
	bookings repositories.BookingRepository,
	workers repositories.WorkerRepository,
	reviews repositories.ReviewRepository,
	dispatcher *Dispatcher,
) ReviewService {
	return &reviewService{
		bookings:   bookings,
		workers:    workers,
		reviews:    reviews,
		dispatcher: dispatcher,
	}
}

// AverageRating — среднее, округлённое half-up до сотых, в целых числах без
// ошибок float. Без отзывов 0.
func AverageRating(agg repositories.RatingAggregate) float64 {
	if agg.Count <= 0 {
		return 0
	}
	hundredths := (200*agg.Total + agg.Count) / (2 * agg.Count)
	return float64(hundredths) / 100
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *reviewService) SubmitReview(ctx context.Context, db *gorm.DB, p Principal, bookingID string, req *dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error) {
	if !p.IsHomeowner() {
		return nil, apperrors.ErrNotAuthorized
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fieldError("rating", "Rating must be between 1 and 5")
	}

	var (
		stored *models.Review
		rating float64
		name   string
		fx     = &Effects{}
	)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookings.LockByID(tx, bookingID)
		if err != nil {
			return handleRepoError(err)
		}
		if booking.HomeownerID != p.UserID {
			return apperrors.ErrNotAuthorized
		}
		if booking.Status != models.BookingStatusCompleted {
			return apperrors.ErrInvalidStatus(domainReview, "Only completed bookings can be reviewed")
		}

		review := &models.Review{
			BookingID:  booking.ID,
			ReviewerID: p.UserID,
			WorkerID:   booking.WorkerID,
			Rating:     req.Rating,
			Comment:    normalizeComment(req.Comment),
		}
		if err := s.reviews.Upsert(tx, review); err != nil {
			return handleRepoError(err)
		}

		// пересчёт под блокировкой работника, параллельные отзывы сериализуются
		if _, err := s.workers.LockByID(tx, booking.WorkerID); err != nil {
			return handleRepoError(err)
		}
		agg, err := s.reviews.AggregateForWorker(tx, booking.WorkerID)
		if err != nil {
			return handleRepoError(err)
		}
		rating = AverageRating(agg)
		if err := s.workers.UpdateRating(tx, booking.WorkerID, rating); err != nil {
			return handleRepoError(err)
		}

		full, err := s.bookings.FindByID(tx, booking.ID)
		if err != nil {
			return handleRepoError(err)
		}
		stored = review

		name = homeownerName(full)
		notifyReview(fx, full, name, review, toBookingResponse(full))

		event := newBookingEvent(full)
		event.Rating = review.Rating
		fx.Emit(RoutingBookingReviewed, event)

		return s.dispatcher.Journal(tx, fx)
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "review submitted",
		"booking_id", bookingID,
		"rating", req.Rating,
		"average_rating", rating)

	s.dispatcher.Flush(ctx, db, fx)

	resp := toReviewResponse(stored)
	resp.ReviewerName = name
	return &dto.SubmitReviewResponse{Review: resp, AverageRating: rating}, nil
}
