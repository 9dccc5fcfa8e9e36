package repositories

import (
	"errors"

	"homefix_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrReviewNotFound = errors.New("review not found")

// RatingAggregate — сумма и количество оценок по работнику
type RatingAggregate struct {
	Total int64
	Count int64
}

type ReviewRepository interface {
	// Upsert по (booking_id, reviewer_id)
	Upsert(db *gorm.DB, review *models.Review) error
	FindByBookingAndReviewer(db *gorm.DB, bookingID, reviewerID string) (*models.Review, error)
	FindLatestByWorker(db *gorm.DB, workerID string, limit int) ([]models.Review, error)
	AggregateForWorker(db *gorm.DB, workerID string) (RatingAggregate, error)
}

type ReviewRepositoryImpl struct{}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

func (r *ReviewRepositoryImpl) Upsert(db *gorm.DB, review *models.Review) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "booking_id"}, {Name: "reviewer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(review).Error
	if err != nil {
		return err
	}

	// при конфликте в review.ID остаётся свежесгенерированный uuid
	stored, err := r.FindByBookingAndReviewer(db, review.BookingID, review.ReviewerID)
	if err != nil {
		return err
	}
	*review = *stored
	return nil
}

func (r *ReviewRepositoryImpl) FindByBookingAndReviewer(db *gorm.DB, bookingID, reviewerID string) (*models.Review, error) {
	var review models.Review
	err := db.Preload("Reviewer").
		Where("booking_id = ? AND reviewer_id = ?", bookingID, reviewerID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindLatestByWorker(db *gorm.DB, workerID string, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := db.Preload("Reviewer").
		Where("worker_id = ?", workerID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepositoryImpl) AggregateForWorker(db *gorm.DB, workerID string) (RatingAggregate, error) {
	var agg RatingAggregate
	err := db.Model(&models.Review{}).
		Select("COALESCE(SUM(rating), 0) AS total, COUNT(*) AS count").
		Where("worker_id = ?", workerID).
		Scan(&agg).Error
	return agg, err
}
