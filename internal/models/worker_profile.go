package models

import (
	"encoding/json"

	"homefix_backend/internal/algorithms"

	"gorm.io/datatypes"
)

type WorkerProfile struct {
	BaseModel
	UserID          string          `gorm:"type:varchar(36);uniqueIndex;not null"`
	ServiceType     ServiceCategory `gorm:"type:varchar(32);index;not null"`
	ExperienceYears int
	HourlyRate      float64
	MinCharge       float64
	Bio             string `gorm:"type:text"`
	Skills          datatypes.JSON
	Availability    Availability `gorm:"type:varchar(16);index;not null"`
	Latitude        *float64
	Longitude       *float64
	Address         string
	City            string `gorm:"index"`
	State           string
	ZipCode         string
	LicenseNumber   string
	Verified        bool
	TotalJobs       int
	AverageRating   float64

	// Relations
	User *User `gorm:"foreignKey:UserID"`
}

// GetSkills возвращает навыки как slice строк
func (w *WorkerProfile) GetSkills() []string {
	var skills []string
	if len(w.Skills) > 0 {
		_ = json.Unmarshal(w.Skills, &skills)
	}
	return skills
}

func (w *WorkerProfile) SetSkills(skills []string) {
	if skills == nil {
		skills = []string{}
	}
	data, _ := json.Marshal(skills)
	w.Skills = datatypes.JSON(data)
}

func (w *WorkerProfile) HasLocation() bool {
	return w.Latitude != nil && w.Longitude != nil
}

// Location реализует algorithms.Locatable
func (w *WorkerProfile) Location() (algorithms.Point, bool) {
	if !w.HasLocation() {
		return algorithms.Point{}, false
	}
	return algorithms.Point{Latitude: *w.Latitude, Longitude: *w.Longitude}, true
}
