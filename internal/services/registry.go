package services

import (
	"time"

	"homefix_backend/internal/cache"
	"homefix_backend/internal/config"
	"homefix_backend/internal/repositories"
)

// Repositories — stateless реализации, общие для всех сервисов
type Repositories struct {
	Users         repositories.UserRepository
	Workers       repositories.WorkerRepository
	Bookings      repositories.BookingRepository
	Reviews       repositories.ReviewRepository
	Notifications repositories.NotificationRepository
	Events        repositories.EventRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Users:         repositories.NewUserRepository(),
		Workers:       repositories.NewWorkerRepository(),
		Bookings:      repositories.NewBookingRepository(),
		Reviews:       repositories.NewReviewRepository(),
		Notifications: repositories.NewNotificationRepository(),
		Events:        repositories.NewEventRepository(),
	}
}

// Deps — внешние каналы доставки и хранилища. nil-поля заменяются no-op.
type Deps struct {
	Publisher EventPublisher
	Bus       EventBus
	Mailer    Mailer
	Store     cache.Store
	Now       func() time.Time
}

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	Repositories *Repositories
	Dispatcher   *Dispatcher

	BookingService      BookingService
	PaymentService      PaymentService
	ReviewService       ReviewService
	WorkerService       WorkerService
	NotificationService NotificationService
}

func NewServiceContainer(cfg *config.Config, deps Deps) *ServiceContainer {
	repos := NewRepositories()

	dispatcher := NewDispatcher(DispatcherConfig{
		Notifications: repos.Notifications,
		Users:         repos.Users,
		Publisher:     deps.Publisher,
		Bus:           deps.Bus,
		Mailer:        deps.Mailer,
		PushTimeout:   cfg.Realtime.PushTimeout,
	})
	availability := NewAvailabilityCoordinator(repos.Workers, repos.Bookings)

	return &ServiceContainer{
		Repositories: repos,
		Dispatcher:   dispatcher,

		BookingService: NewBookingService(repos.Bookings, repos.Workers, availability, dispatcher, deps.Now),
		PaymentService: NewPaymentService(repos.Bookings, repos.Workers, repos.Events, availability, dispatcher,
			deps.Store, cfg.Payment, deps.Now),
		ReviewService:       NewReviewService(repos.Bookings, repos.Workers, repos.Reviews, dispatcher),
		WorkerService:       NewWorkerService(repos.Workers, repos.Reviews, availability),
		NotificationService: NewNotificationService(repos.Notifications, deps.Now),
	}
}
