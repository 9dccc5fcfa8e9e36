package repositories

import (
	"errors"
	"time"

	"homefix_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Search criteria for notifications
type NotificationCriteria struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}

type NotificationRepository interface {
	// Journal operations
	CreateBatch(db *gorm.DB, notifications []*models.Notification) error
	FindByID(db *gorm.DB, id string) (*models.Notification, error)
	FindUserNotifications(db *gorm.DB, userID string, criteria NotificationCriteria) ([]models.Notification, int64, error)
	MarkAsRead(db *gorm.DB, id string, at time.Time) error
	MarkAllAsRead(db *gorm.DB, userID string, at time.Time) (int64, error)
	GetUnreadCount(db *gorm.DB, userID string) (int64, error)
	DeleteReadBefore(db *gorm.DB, before time.Time) (int64, error)

	// Settings
	GetSettings(db *gorm.DB, userID string) (*models.NotificationSettings, error)
	FindSettingsForUsers(db *gorm.DB, userIDs []string) (map[string]*models.NotificationSettings, error)
	SaveSettings(db *gorm.DB, settings *models.NotificationSettings) error
}

type NotificationRepositoryImpl struct{}

func NewNotificationRepository() NotificationRepository {
	return &NotificationRepositoryImpl{}
}

func (r *NotificationRepositoryImpl) CreateBatch(db *gorm.DB, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return db.Create(&notifications).Error
}

func (r *NotificationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := db.First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) FindUserNotifications(db *gorm.DB, userID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	query := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if criteria.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := criteria.Page, criteria.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkAsRead — повторная отметка не меняет read_at
func (r *NotificationRepositoryImpl) MarkAsRead(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(db *gorm.DB, userID string, at time.Time) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) GetUnreadCount(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) DeleteReadBefore(db *gorm.DB, before time.Time) (int64, error) {
	result := db.Where("is_read = ? AND created_at < ?", true, before).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// GetSettings возвращает настройки по умолчанию, если пользователь их не менял
func (r *NotificationRepositoryImpl) GetSettings(db *gorm.DB, userID string) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := db.First(&settings, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DefaultNotificationSettings(userID), nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *NotificationRepositoryImpl) FindSettingsForUsers(db *gorm.DB, userIDs []string) (map[string]*models.NotificationSettings, error) {
	result := make(map[string]*models.NotificationSettings, len(userIDs))
	for _, id := range userIDs {
		result[id] = models.DefaultNotificationSettings(id)
	}
	if len(userIDs) == 0 {
		return result, nil
	}

	var stored []models.NotificationSettings
	if err := db.Where("user_id IN ?", userIDs).Find(&stored).Error; err != nil {
		return nil, err
	}
	for i := range stored {
		result[stored[i].UserID] = &stored[i]
	}
	return result, nil
}

func (r *NotificationRepositoryImpl) SaveSettings(db *gorm.DB, settings *models.NotificationSettings) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email_notifications", "push_notifications", "sms_notifications", "updated_at",
		}),
	}).Create(settings).Error
}
