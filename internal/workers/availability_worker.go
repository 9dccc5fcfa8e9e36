package workers

import (
	"context"

	"homefix_backend/internal/logger"
	"homefix_backend/internal/repositories"

	"gorm.io/gorm"
)

// AvailabilityWorker сверяет флаг доступности с активными бронированиями:
// busy без работы -> available, available с accepted/in_progress -> busy
type AvailabilityWorker struct {
	db      *gorm.DB
	workers repositories.WorkerRepository
}

func NewAvailabilityWorker(db *gorm.DB, workers repositories.WorkerRepository) *AvailabilityWorker {
	return &AvailabilityWorker{db: db, workers: workers}
}

func (w *AvailabilityWorker) Name() string { return "availability_sweep" }

func (w *AvailabilityWorker) Run(ctx context.Context) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		released, err := w.workers.ReleaseStaleBusy(tx)
		logger.WorkerLog(w.Name(), "release_stale_busy", released, err)
		if err != nil {
			return err
		}

		engaged, err := w.workers.MarkEngagedBusy(tx)
		logger.WorkerLog(w.Name(), "mark_engaged_busy", engaged, err)
		return err
	})
}
