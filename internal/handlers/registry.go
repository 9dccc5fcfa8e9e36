package handlers

import (
	"homefix_backend/internal/services"
	"homefix_backend/internal/validator"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	BookingHandler      *BookingHandler
	WorkerHandler       *WorkerHandler
	NotificationHandler *NotificationHandler
	HealthHandler       *HealthHandler
}

func NewAppHandlers(container *services.ServiceContainer, v *validator.Validator, checks map[string]Pinger) *AppHandlers {
	base := NewBaseHandler(v)
	return &AppHandlers{
		BookingHandler: NewBookingHandler(base,
			container.BookingService,
			container.PaymentService,
			container.ReviewService,
		),
		WorkerHandler:       NewWorkerHandler(base, container.WorkerService),
		NotificationHandler: NewNotificationHandler(base, container.NotificationService),
		HealthHandler:       NewHealthHandler(checks),
	}
}
