package dto

import (
	"time"

	"homefix_backend/internal/models"
)

// ---------------- Requests ----------------

type NearbyWorkersQuery struct {
	Latitude    *float64               `form:"latitude" validate:"required,latitude"`
	Longitude   *float64               `form:"longitude" validate:"required,longitude"`
	Radius      float64                `form:"radius" validate:"omitempty,gt=0,lte=500"`
	ServiceType models.ServiceCategory `form:"service_type" validate:"omitempty,is-service-category"`
	Limit       int                    `form:"limit" validate:"omitempty,min=1,max=100"`
}

type SearchWorkersQuery struct {
	City        string                 `form:"city" validate:"omitempty,max=100"`
	State       string                 `form:"state" validate:"omitempty,max=100"`
	ServiceType models.ServiceCategory `form:"service_type" validate:"omitempty,is-service-category"`
}

// UpdateWorkerProfileRequest — частичное обновление: nil означает "не менять"
type UpdateWorkerProfileRequest struct {
	ServiceType     *models.ServiceCategory `json:"service_type" validate:"omitempty,is-service-category"`
	ExperienceYears *int                    `json:"experience_years" validate:"omitempty,gte=0,lte=80"`
	HourlyRate      *float64                `json:"hourly_rate" validate:"omitempty,gte=0"`
	MinCharge       *float64                `json:"min_charge" validate:"omitempty,gte=0"`
	Bio             *string                 `json:"bio" validate:"omitempty,max=2000"`
	Skills          []string                `json:"skills" validate:"omitempty,max=30,dive,max=50"`
	Address         *string                 `json:"address" validate:"omitempty,max=500"`
	City            *string                 `json:"city" validate:"omitempty,max=100"`
	State           *string                 `json:"state" validate:"omitempty,max=100"`
	ZipCode         *string                 `json:"zip_code" validate:"omitempty,max=20"`
	LicenseNumber   *string                 `json:"license_number" validate:"omitempty,max=100"`
	Availability    *models.Availability    `json:"availability" validate:"omitempty,is-availability"`
}

type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// ---------------- Responses ----------------

type LocationResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	ZipCode   string   `json:"zip_code,omitempty"`
}

type WorkerResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email,omitempty"`
	Phone           string                 `json:"phone,omitempty"`
	ProfileImage    string                 `json:"profile_image,omitempty"`
	ServiceType     models.ServiceCategory `json:"service_type"`
	ExperienceYears int                    `json:"experience_years"`
	HourlyRate      float64                `json:"hourly_rate"`
	MinCharge       float64                `json:"min_charge"`
	Bio             string                 `json:"bio"`
	Skills          []string               `json:"skills"`
	Availability    models.Availability    `json:"availability"`
	Location        LocationResponse       `json:"location"`
	LicenseNumber   string                 `json:"license_number,omitempty"`
	Verified        bool                   `json:"verified"`
	TotalJobs       int                    `json:"total_jobs"`
	AverageRating   float64                `json:"average_rating"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

type NearbyWorkerResponse struct {
	*WorkerResponse
	DistanceKm float64 `json:"distance_km"`
}

type NearbyWorkerListResponse struct {
	Workers []*NearbyWorkerResponse `json:"workers"`
	Count   int                     `json:"count"`
}

type WorkerListResponse struct {
	Workers []*WorkerResponse `json:"workers"`
	Count   int               `json:"count"`
}

type WorkerDetailsResponse struct {
	*WorkerResponse
	Reviews []*ReviewResponse `json:"reviews"`
}
