package services

import (
	"context"
	"time"
)

// Виды realtime-событий, которые получают живые сессии
const (
	EventNotification         = "notification"
	EventNewBooking           = "new_booking"
	EventBookingCompleted     = "booking_completed"
	EventBookingStatusUpdated = "booking_status_updated"
	EventReviewAdded          = "review_added"
)

// Routing keys доменных событий в брокере
const (
	RoutingBookingCreated       = "booking.created"
	RoutingBookingStatusChanged = "booking.status_changed"
	RoutingBookingPaid          = "booking.paid"
	RoutingBookingReviewed      = "booking.reviewed"
)

// EventPublisher доставляет эфемерное событие всем живым сессиям пользователя.
// Реализации: ws.Hub (in-process), ws.RedisRelay (несколько инстансов).
type EventPublisher interface {
	Publish(ctx context.Context, userID, kind string, payload any) error
}

// EventBus публикует доменные события во внешний брокер
type EventBus interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// Mailer — канал email для платёжных уведомлений
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, any) error { return nil }

type noopBus struct{}

func (noopBus) PublishJSON(context.Context, string, any) error { return nil }

// BookingEvent — тело сообщений booking.*
type BookingEvent struct {
	EventID       string    `json:"event_id"`
	BookingID     string    `json:"booking_id"`
	HomeownerID   string    `json:"homeowner_id"`
	WorkerID      string    `json:"worker_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	PaymentAmount *float64  `json:"payment_amount,omitempty"`
	Rating        int       `json:"rating,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
