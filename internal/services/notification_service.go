package services

import (
	"context"
	"time"

	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"
	"homefix_backend/internal/services/dto"
	"homefix_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	defaultNotificationPage     = 1
	defaultNotificationPageSize = 20
)

type NotificationService interface {
	// Journal
	ListNotifications(ctx context.Context, db *gorm.DB, p Principal, query *dto.ListNotificationsQuery) (*dto.NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, db *gorm.DB, p Principal) (*dto.UnreadCountResponse, error)
	MarkAsRead(ctx context.Context, db *gorm.DB, p Principal, notificationID string) (*dto.NotificationResponse, error)
	MarkAllAsRead(ctx context.Context, db *gorm.DB, p Principal) (int64, error)

	// Settings
	GetSettings(ctx context.Context, db *gorm.DB, p Principal) (*dto.NotificationSettingsResponse, error)
	UpdateSettings(ctx context.Context, db *gorm.DB, p Principal, req *dto.UpdateNotificationSettingsRequest) (*dto.NotificationSettingsResponse, error)

	// Retention
	PurgeRead(ctx context.Context, db *gorm.DB, olderThan time.Duration) (int64, error)
}

type notificationService struct {
	notifications repositories.NotificationRepository
	now           func() time.Time
}

func NewNotificationService(notifications repositories.NotificationRepository, now func() time.Time) NotificationService {
	if now == nil {
		now = time.Now
	}
	return &notificationService{notifications: notifications, now: now}
}

func (s *notificationService) ListNotifications(ctx context.Context, db *gorm.DB, p Principal, query *dto.ListNotificationsQuery) (*dto.NotificationListResponse, error) {
	page := query.Page
	if page < 1 {
		page = defaultNotificationPage
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = defaultNotificationPageSize
	}

	items, total, err := s.notifications.FindUserNotifications(db.WithContext(ctx), p.UserID, repositories.NotificationCriteria{
		UnreadOnly: query.UnreadOnly,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	resp := &dto.NotificationListResponse{
		Notifications: make([]*dto.NotificationResponse, 0, len(items)),
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
	for i := range items {
		resp.Notifications = append(resp.Notifications, toNotificationResponse(&items[i]))
	}
	return resp, nil
}

func (s *notificationService) GetUnreadCount(ctx context.Context, db *gorm.DB, p Principal) (*dto.UnreadCountResponse, error) {
	count, err := s.notifications.GetUnreadCount(db.WithContext(ctx), p.UserID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

// MarkAsRead — только своё уведомление, повторный вызов ничего не меняет
func (s *notificationService) MarkAsRead(ctx context.Context, db *gorm.DB, p Principal, notificationID string) (*dto.NotificationResponse, error) {
	n, err := s.notifications.FindByID(db.WithContext(ctx), notificationID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if n.UserID != p.UserID {
		return nil, apperrors.ErrNotAuthorized
	}
	if n.IsRead {
		return toNotificationResponse(n), nil
	}

	now := s.now().UTC()
	if err := s.notifications.MarkAsRead(db.WithContext(ctx), n.ID, now); err != nil {
		return nil, handleRepoError(err)
	}
	n.IsRead = true
	n.ReadAt = &now
	return toNotificationResponse(n), nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, db *gorm.DB, p Principal) (int64, error) {
	updated, err := s.notifications.MarkAllAsRead(db.WithContext(ctx), p.UserID, s.now().UTC())
	if err != nil {
		return 0, handleRepoError(err)
	}
	return updated, nil
}

func (s *notificationService) GetSettings(ctx context.Context, db *gorm.DB, p Principal) (*dto.NotificationSettingsResponse, error) {
	settings, err := s.notifications.GetSettings(db.WithContext(ctx), p.UserID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return toSettingsResponse(settings), nil
}

func (s *notificationService) UpdateSettings(ctx context.Context, db *gorm.DB, p Principal, req *dto.UpdateNotificationSettingsRequest) (*dto.NotificationSettingsResponse, error) {
	settings, err := s.notifications.GetSettings(db.WithContext(ctx), p.UserID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	if req.EmailNotifications != nil {
		settings.EmailNotifications = *req.EmailNotifications
	}
	if req.PushNotifications != nil {
		settings.PushNotifications = *req.PushNotifications
	}
	if req.SMSNotifications != nil {
		settings.SMSNotifications = *req.SMSNotifications
	}

	if err := s.notifications.SaveSettings(db.WithContext(ctx), settings); err != nil {
		return nil, handleRepoError(err)
	}
	return toSettingsResponse(settings), nil
}

func (s *notificationService) PurgeRead(ctx context.Context, db *gorm.DB, olderThan time.Duration) (int64, error) {
	deleted, err := s.notifications.DeleteReadBefore(db.WithContext(ctx), s.now().UTC().Add(-olderThan))
	if err != nil {
		return 0, handleRepoError(err)
	}
	return deleted, nil
}

func toSettingsResponse(settings *models.NotificationSettings) *dto.NotificationSettingsResponse {
	return &dto.NotificationSettingsResponse{
		EmailNotifications: settings.EmailNotifications,
		PushNotifications:  settings.PushNotifications,
		SMSNotifications:   settings.SMSNotifications,
	}
}
