package models

type Review struct {
	BaseModel
	BookingID  string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_booking_reviewer"`
	ReviewerID string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_booking_reviewer"`
	WorkerID   string  `gorm:"type:varchar(36);not null;index"`
	Rating     int     `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment    *string `gorm:"type:text"`

	// Relations
	Reviewer *User `gorm:"foreignKey:ReviewerID"`
}
