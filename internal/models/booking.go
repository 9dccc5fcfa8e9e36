package models

import (
	"time"

	"homefix_backend/internal/algorithms"
)

type Booking struct {
	BaseModel
	HomeownerID    string          `gorm:"type:varchar(36);index;not null"`
	WorkerID       string          `gorm:"type:varchar(36);index;not null"`
	ServiceType    ServiceCategory `gorm:"type:varchar(32)"`
	Description    string          `gorm:"type:text;not null"`
	BookingDate    time.Time       `gorm:"not null"`
	Address        string
	Latitude       *float64
	Longitude      *float64
	Status         BookingStatus `gorm:"type:varchar(20);index;not null"`
	PaymentStatus  PaymentStatus `gorm:"type:varchar(20);not null"`
	PaymentMethod  PaymentMethod `gorm:"type:varchar(10);not null"`
	EstimatedHours *float64
	EstimatedPrice *float64
	PaymentAmount  *float64
	CompletedAt    *time.Time
	CancelledAt    *time.Time

	// Relations
	Homeowner *User          `gorm:"foreignKey:HomeownerID"`
	Worker    *WorkerProfile `gorm:"foreignKey:WorkerID"`
	Review    *Review        `gorm:"foreignKey:BookingID"`
}

func (b *Booking) HasLocation() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// Location реализует algorithms.Locatable
func (b *Booking) Location() (algorithms.Point, bool) {
	if !b.HasLocation() {
		return algorithms.Point{}, false
	}
	return algorithms.Point{Latitude: *b.Latitude, Longitude: *b.Longitude}, true
}
