package services

import (
	"errors"

	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"
	"homefix_backend/pkg/apperrors"

	"gorm.io/gorm"
)

var errWorkerEngaged = errors.New("worker already engaged")

// AvailabilityCoordinator — единственное место, где бронирование меняет
// доступность работника. Всегда вызывается с tx текущей операции.
type AvailabilityCoordinator struct {
	workers  repositories.WorkerRepository
	bookings repositories.BookingRepository
}

func NewAvailabilityCoordinator(workers repositories.WorkerRepository, bookings repositories.BookingRepository) *AvailabilityCoordinator {
	return &AvailabilityCoordinator{workers: workers, bookings: bookings}
}

// Apply применяет эффект перехода к работнику бронирования
func (a *AvailabilityCoordinator) Apply(tx *gorm.DB, booking *models.Booking, effect AvailabilityEffect) error {
	switch effect {
	case EffectClaim:
		return a.claim(tx, booking.WorkerID)
	case EffectRelease:
		return a.release(tx, booking)
	}
	return nil
}

func (a *AvailabilityCoordinator) claim(tx *gorm.DB, workerID string) error {
	ok, err := a.workers.MarkBusyIfAvailable(tx, workerID)
	if err != nil {
		return handleRepoError(err)
	}
	if !ok {
		return apperrors.ErrConflict(errWorkerEngaged, domainWorker, "Worker is not currently available")
	}
	return nil
}

// release возвращает работника в available, только если он busy и у него
// не осталось других accepted/in_progress. offline не трогаем.
func (a *AvailabilityCoordinator) release(tx *gorm.DB, booking *models.Booking) error {
	others, err := a.bookings.CountActiveForWorker(tx, booking.WorkerID, booking.ID)
	if err != nil {
		return handleRepoError(err)
	}
	if others > 0 {
		return nil
	}

	worker, err := a.workers.LockByID(tx, booking.WorkerID)
	if err != nil {
		return handleRepoError(err)
	}
	if worker.Availability != models.AvailabilityBusy {
		return nil
	}
	return handleRepoError(a.workers.SetAvailability(tx, worker.ID, models.AvailabilityAvailable))
}

// EnsureIdle — прямое переключение доступности разрешено только без работы "в процессе"
func (a *AvailabilityCoordinator) EnsureIdle(tx *gorm.DB, workerID string) error {
	active, err := a.bookings.CountActiveForWorker(tx, workerID, "")
	if err != nil {
		return handleRepoError(err)
	}
	if active > 0 {
		return apperrors.ErrConflict(errWorkerEngaged, domainWorker, "Availability cannot change while a job is in progress")
	}
	return nil
}
