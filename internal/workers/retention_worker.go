package workers

import (
	"context"
	"time"

	"homefix_backend/internal/logger"
	"homefix_backend/internal/services"

	"gorm.io/gorm"
)

// RetentionWorker удаляет прочитанные уведомления старше retention
type RetentionWorker struct {
	db            *gorm.DB
	notifications services.NotificationService
	retention     time.Duration
}

func NewRetentionWorker(db *gorm.DB, notifications services.NotificationService, retention time.Duration) *RetentionWorker {
	return &RetentionWorker{db: db, notifications: notifications, retention: retention}
}

func (w *RetentionWorker) Name() string { return "notification_purge" }

func (w *RetentionWorker) Run(ctx context.Context) error {
	deleted, err := w.notifications.PurgeRead(ctx, w.db, w.retention)
	logger.WorkerLog(w.Name(), "purge_read", deleted, err)
	return err
}
