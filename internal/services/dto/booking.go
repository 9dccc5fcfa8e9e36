package dto

import (
	"time"

	"homefix_backend/internal/models"
)

// ---------------- Requests ----------------

type CreateBookingRequest struct {
	WorkerID       string                 `json:"worker_id" validate:"required"`
	ServiceType    models.ServiceCategory `json:"service_type" validate:"omitempty,is-service-category"`
	Description    string                 `json:"description" validate:"required,max=2000"`
	BookingDate    *time.Time             `json:"booking_date" validate:"required"`
	Address        string                 `json:"address" validate:"omitempty,max=500"`
	Latitude       *float64               `json:"latitude" validate:"omitempty,latitude"`
	Longitude      *float64               `json:"longitude" validate:"omitempty,longitude"`
	EstimatedHours *float64               `json:"estimated_hours"`
	EstimatedPrice *float64               `json:"estimated_price"`
	PaymentStatus  models.PaymentStatus   `json:"payment_status" validate:"omitempty,is-payment-status"`
	PaymentMethod  models.PaymentMethod   `json:"payment_method" validate:"omitempty,is-payment-method"`
	PaymentAmount  *float64               `json:"payment_amount"`
}

type ListBookingsRequest struct {
	Status models.BookingStatus `form:"status" validate:"omitempty,is-booking-status"`
}

type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required,is-booking-status"`
}

type PayBookingRequest struct {
	Method models.PaymentMethod `json:"method" validate:"required,is-settlement-method"`
	Amount *float64             `json:"amount" validate:"omitempty,gte=0"`
}

type SubmitReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

type NearbyRequestsQuery struct {
	Latitude    *float64               `form:"latitude" validate:"required,latitude"`
	Longitude   *float64               `form:"longitude" validate:"required,longitude"`
	Radius      float64                `form:"radius" validate:"omitempty,gt=0,lte=500"`
	ServiceType models.ServiceCategory `form:"service_type" validate:"omitempty,is-service-category"`
}

// ---------------- Responses ----------------

type PartyResponse struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

type BookingWorkerResponse struct {
	PartyResponse
	WorkerID      string                 `json:"worker_id"`
	ServiceType   models.ServiceCategory `json:"service_type"`
	HourlyRate    float64                `json:"hourly_rate"`
	AverageRating float64                `json:"average_rating"`
}

type ReviewResponse struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	ReviewerID   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BookingResponse struct {
	ID             string                 `json:"id"`
	HomeownerID    string                 `json:"homeowner_id"`
	WorkerID       string                 `json:"worker_id"`
	ServiceType    models.ServiceCategory `json:"service_type"`
	Description    string                 `json:"description"`
	BookingDate    time.Time              `json:"booking_date"`
	Address        string                 `json:"address"`
	Latitude       *float64               `json:"latitude"`
	Longitude      *float64               `json:"longitude"`
	Status         models.BookingStatus   `json:"status"`
	PaymentStatus  models.PaymentStatus   `json:"payment_status"`
	PaymentMethod  models.PaymentMethod   `json:"payment_method"`
	EstimatedHours *float64               `json:"estimated_hours"`
	EstimatedPrice *float64               `json:"estimated_price"`
	PaymentAmount  *float64               `json:"payment_amount"`
	CompletedAt    *time.Time             `json:"completed_at"`
	CancelledAt    *time.Time             `json:"cancelled_at"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`

	Homeowner *PartyResponse         `json:"homeowner,omitempty"`
	Worker    *BookingWorkerResponse `json:"worker,omitempty"`
	Review    *ReviewResponse        `json:"review,omitempty"`
}

type BookingListResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
	Count    int                `json:"count"`
}

type NearbyRequestResponse struct {
	*BookingResponse
	DistanceKm float64 `json:"distance_km"`
}

type NearbyRequestListResponse struct {
	Requests []*NearbyRequestResponse `json:"requests"`
	Count    int                      `json:"count"`
}

type SubmitReviewResponse struct {
	Review        *ReviewResponse `json:"review"`
	AverageRating float64         `json:"average_rating"`
}
