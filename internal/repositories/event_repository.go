package repositories

import (
	"time"

	"homefix_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository хранит id уже применённых внешних событий
type EventRepository interface {
	// MarkConsumed возвращает false, если событие уже было обработано
	MarkConsumed(db *gorm.DB, eventID, eventKey, bookingID string) (bool, error)
	IsConsumed(db *gorm.DB, eventID string) (bool, error)
}

type EventRepositoryImpl struct{}

func NewEventRepository() EventRepository {
	return &EventRepositoryImpl{}
}

func (r *EventRepositoryImpl) MarkConsumed(db *gorm.DB, eventID, eventKey, bookingID string) (bool, error) {
	record := models.ConsumedEvent{
		ID:          eventID,
		EventKey:    eventKey,
		BookingID:   bookingID,
		ProcessedAt: time.Now().UTC(),
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *EventRepositoryImpl) IsConsumed(db *gorm.DB, eventID string) (bool, error) {
	var count int64
	err := db.Model(&models.ConsumedEvent{}).Where("id = ?", eventID).Count(&count).Error
	return count > 0, err
}
