package models

type User struct {
	BaseModel
	Name         string   `gorm:"not null"`
	Email        string   `gorm:"uniqueIndex;not null"`
	Phone        string
	ProfileImage string
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null"`

	// Relations
	WorkerProfile *WorkerProfile `gorm:"foreignKey:UserID"`
}
