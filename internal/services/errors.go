package services

import (
	"errors"

	"homefix_backend/internal/repositories"
	"homefix_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	domainBooking      = "booking"
	domainWorker       = "worker"
	domainReview       = "review"
	domainNotification = "notification"
	domainPayment      = "payment"
)

// handleRepoError переводит ошибки репозиториев в caller-facing AppError.
// Уже готовые AppError пробрасываются как есть.
func handleRepoError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrBookingNotFound) ||
		errors.Is(err, repositories.ErrWorkerNotFound) ||
		errors.Is(err, repositories.ErrUserNotFound) ||
		errors.Is(err, repositories.ErrReviewNotFound) ||
		errors.Is(err, repositories.ErrNotificationNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.DatabaseError(err)
}

func fieldError(field, message string) *apperrors.AppError {
	return apperrors.ValidationError(map[string]string{field: message})
}
