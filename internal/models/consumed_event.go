package models

import "time"

// ConsumedEvent — внешнее событие уже применено, повторная доставка ничего не меняет
type ConsumedEvent struct {
	ID          string `gorm:"type:varchar(64);primaryKey"` // payment id or composed key
	EventKey    string `gorm:"type:varchar(64);index"`       // e.g. payment.paid
	BookingID   string `gorm:"type:varchar(36);index"`
	ProcessedAt time.Time
}
