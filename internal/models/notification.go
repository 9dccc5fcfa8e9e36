package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID  string           `gorm:"type:varchar(36);not null;index"`
	Type    NotificationType `gorm:"type:varchar(16);not null"`
	Title   string           `gorm:"not null"`
	Message string           `gorm:"type:text;not null"`
	Data    datatypes.JSON   // {"booking_id": "...", "rating": 5}
	IsRead  bool             `gorm:"not null;index"`
	ReadAt  *time.Time
}

// NotificationSettings — пользовательские настройки доставки.
// Журнал уведомлений пишется всегда, настройки влияют только на каналы.
type NotificationSettings struct {
	BaseModel
	UserID             string `gorm:"type:varchar(36);uniqueIndex;not null"`
	EmailNotifications bool
	PushNotifications  bool
	SMSNotifications   bool
}

func DefaultNotificationSettings(userID string) *NotificationSettings {
	return &NotificationSettings{
		UserID:             userID,
		EmailNotifications: true,
		PushNotifications:  true,
		SMSNotifications:   false,
	}
}
