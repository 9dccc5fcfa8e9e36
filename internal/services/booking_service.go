package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"homefix_backend/internal/algorithms"
	"homefix_backend/internal/logger"
	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"
	"homefix_backend/internal/services/dto"
	"homefix_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	defaultAddress        = "Address not provided"
	defaultNearbyRadiusKm = 10.0

	// допуск на расхождение часов клиента и сервера
	bookingDateGrace = 5 * time.Minute
)

var errWorkerUnavailable = errors.New("worker unavailable")

// BookingService — координатор жизненного цикла бронирования
type BookingService interface {
	CreateBooking(ctx context.Context, db *gorm.DB, p Principal, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	ListBookings(ctx context.Context, db *gorm.DB, p Principal, req *dto.ListBookingsRequest) (*dto.BookingListResponse, error)
	GetBooking(ctx context.Context, db *gorm.DB, p Principal, bookingID string) (*dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, p Principal, bookingID string, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error)
	NearbyRequests(ctx context.Context, db *gorm.DB, p Principal, query *dto.NearbyRequestsQuery) (*dto.NearbyRequestListResponse, error)
}

type bookingService struct {
	bookings     repositories.BookingRepository
	workers      repositories.WorkerRepository
	availability *AvailabilityCoordinator
	dispatcher   *Dispatcher
	now          func() time.Time
}

func NewBookingService(
	bookings repositories.BookingRepository,
	workers repositories.WorkerRepository,
	availability *AvailabilityCoordinator,
	dispatcher *Dispatcher,
	now func() time.Time,
) BookingService {
	if now == nil {
		now = time.Now
	}
	return &bookingService{
		bookings:     bookings,
		workers:      workers,
		availability: availability,
		dispatcher:   dispatcher,
		now:          now,
	}
}

// ---------------- Create ----------------

func (s *bookingService) CreateBooking(ctx context.Context, db *gorm.DB, p Principal, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if !p.IsHomeowner() {
		return nil, apperrors.ErrNotAuthorized
	}

	now := s.now().UTC()
	if err := validateCreate(req, now); err != nil {
		return nil, err
	}

	var (
		created *models.Booking
		fx      = &Effects{}
	)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		worker, err := s.workers.LockByID(tx, req.WorkerID)
		if err != nil {
			return handleRepoError(err)
		}
		if worker.Availability != models.AvailabilityAvailable {
			return apperrors.ErrConflict(errWorkerUnavailable, domainWorker, "Worker is not currently available")
		}

		booking := newBooking(p.UserID, worker, req, now)
		if err := s.bookings.Create(tx, booking); err != nil {
			return handleRepoError(err)
		}

		// оплачено при создании: сразу completed, работник остаётся available
		if booking.PaymentStatus == models.PaymentStatusPaid {
			if err := s.workers.IncrementTotalJobs(tx, worker.ID); err != nil {
				return handleRepoError(err)
			}
		}

		created, err = s.bookings.FindByID(tx, booking.ID)
		if err != nil {
			return handleRepoError(err)
		}

		payload := toBookingResponse(created)
		if created.PaymentStatus == models.PaymentStatusPaid {
			notifyPaid(fx, created, payload)
			fx.Emit(RoutingBookingPaid, newBookingEvent(created))
		} else {
			notifyNewBooking(fx, created, payload)
		}
		fx.Emit(RoutingBookingCreated, newBookingEvent(created))

		return s.dispatcher.Journal(tx, fx)
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "booking created",
		"booking_id", created.ID,
		"worker_id", created.WorkerID,
		"status", created.Status,
		"payment_status", created.PaymentStatus)

	s.dispatcher.Flush(ctx, db, fx)
	return toBookingResponse(created), nil
}

func validateCreate(req *dto.CreateBookingRequest, now time.Time) error {
	problems := make(map[string]string)

	if strings.TrimSpace(req.WorkerID) == "" {
		problems["worker_id"] = "This field is required"
	}
	if strings.TrimSpace(req.Description) == "" {
		problems["description"] = "This field is required"
	}
	if req.BookingDate == nil {
		problems["booking_date"] = "This field is required"
	} else if bookingDateInPast(*req.BookingDate, now) {
		problems["booking_date"] = "Booking date cannot be in the past"
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		problems["location"] = "Latitude and longitude must be provided together"
	}

	switch req.PaymentStatus {
	case "", models.PaymentStatusPending:
	case models.PaymentStatusPaid:
		if !req.PaymentMethod.IsSettlement() {
			problems["payment_method"] = "Paid bookings need a payment method (upi, mock or cash)"
		}
	default:
		problems["payment_status"] = "Must be pending_payment or paid"
	}

	if len(problems) > 0 {
		return apperrors.ValidationError(problems)
	}
	return nil
}

// bookingDateInPast сравнивает календарные даты в зоне самой даты
func bookingDateInPast(date, now time.Time) bool {
	ref := now.Add(-bookingDateGrace).In(date.Location())
	y, m, d := date.Date()
	ry, rm, rd := ref.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Before(time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC))
}

func newBooking(homeownerID string, worker *models.WorkerProfile, req *dto.CreateBookingRequest, now time.Time) *models.Booking {
	b := &models.Booking{
		HomeownerID:    homeownerID,
		WorkerID:       worker.ID,
		ServiceType:    req.ServiceType,
		Description:    strings.TrimSpace(req.Description),
		BookingDate:    req.BookingDate.UTC(),
		Address:        strings.TrimSpace(req.Address),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Status:         models.BookingStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
		PaymentMethod:  models.PaymentMethodNone,
		EstimatedHours: nonNegative(req.EstimatedHours),
		EstimatedPrice: nonNegative(req.EstimatedPrice),
	}
	if b.ServiceType == "" {
		b.ServiceType = worker.ServiceType
	}
	if b.Address == "" {
		b.Address = defaultAddress
	}
	if req.PaymentMethod != "" {
		b.PaymentMethod = req.PaymentMethod
	}

	if req.PaymentStatus == models.PaymentStatusPaid {
		b.PaymentStatus = models.PaymentStatusPaid
		b.PaymentAmount = firstAmount(nonNegative(req.PaymentAmount), b.EstimatedPrice)
		b.Status = models.BookingStatusCompleted
		b.CompletedAt = &now
	}
	return b
}

func nonNegative(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	if out < 0 {
		out = 0
	}
	return &out
}

// firstAmount — первая известная сумма или nil, 0 за неизвестное не выдаём
func firstAmount(candidates ...*float64) *float64 {
	for _, c := range candidates {
		if c != nil {
			v := *c
			return &v
		}
	}
	return nil
}

// ---------------- Read ----------------

func (s *bookingService) ListBookings(ctx context.Context, db *gorm.DB, p Principal, req *dto.ListBookingsRequest) (*dto.BookingListResponse, error) {
	filter := repositories.BookingFilter{Status: req.Status}

	switch {
	case p.IsHomeowner():
		filter.HomeownerID = p.UserID
	case p.IsWorker():
		worker, err := s.workers.FindByUserID(db.WithContext(ctx), p.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrWorkerNotFound) {
				return &dto.BookingListResponse{Bookings: []*dto.BookingResponse{}}, nil
			}
			return nil, handleRepoError(err)
		}
		filter.WorkerID = worker.ID
	default:
		return nil, apperrors.ErrNotAuthorized
	}

	bookings, err := s.bookings.List(db.WithContext(ctx), filter)
	if err != nil {
		return nil, handleRepoError(err)
	}

	resp := &dto.BookingListResponse{
		Bookings: make([]*dto.BookingResponse, 0, len(bookings)),
		Count:    len(bookings),
	}
	for i := range bookings {
		resp.Bookings = append(resp.Bookings, toBookingResponse(&bookings[i]))
	}
	return resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, db *gorm.DB, p Principal, bookingID string) (*dto.BookingResponse, error) {
	booking, err := s.bookings.FindByID(db.WithContext(ctx), bookingID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if _, err := s.actorOn(db.WithContext(ctx), p, booking); err != nil {
		return nil, err
	}
	return toBookingResponse(booking), nil
}

// actorOn определяет роль вызывающего на бронировании. Не участник —
// ErrNotAuthorized без подробностей.
func (s *bookingService) actorOn(db *gorm.DB, p Principal, booking *models.Booking) (Actor, error) {
	switch {
	case p.IsHomeowner():
		if booking.HomeownerID == p.UserID {
			return ActorHomeowner, nil
		}
	case p.IsWorker():
		if booking.Worker != nil {
			if booking.Worker.UserID == p.UserID {
				return ActorWorker, nil
			}
			return 0, apperrors.ErrNotAuthorized
		}
		worker, err := s.workers.FindByUserID(db, p.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrWorkerNotFound) {
				return 0, apperrors.ErrNotAuthorized
			}
			return 0, handleRepoError(err)
		}
		if worker.ID == booking.WorkerID {
			return ActorWorker, nil
		}
	}
	return 0, apperrors.ErrNotAuthorized
}

// ---------------- Status ----------------

func (s *bookingService) UpdateStatus(ctx context.Context, db *gorm.DB, p Principal, bookingID string, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	var (
		updated *models.Booking
		fx      = &Effects{}
	)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookings.LockByID(tx, bookingID)
		if err != nil {
			return handleRepoError(err)
		}

		actor, err := s.actorOn(tx, p, booking)
		if err != nil {
			return err
		}

		from := booking.Status
		effect, err := ResolveTransition(actor, from, req.Status)
		if err != nil {
			return err
		}

		if err := s.availability.Apply(tx, booking, effect); err != nil {
			return err
		}

		now := s.now().UTC()
		columns := []string{"status", "updated_at"}
		booking.Status = req.Status
		switch req.Status {
		case models.BookingStatusCompleted:
			booking.CompletedAt = &now
			columns = append(columns, "completed_at")
		case models.BookingStatusCancelled:
			booking.CancelledAt = &now
			columns = append(columns, "cancelled_at")
		}

		if err := s.bookings.UpdateFields(tx, booking, columns...); err != nil {
			return handleRepoError(err)
		}
		if req.Status == models.BookingStatusCompleted {
			if err := s.workers.IncrementTotalJobs(tx, booking.WorkerID); err != nil {
				return handleRepoError(err)
			}
		}

		updated, err = s.bookings.FindByID(tx, booking.ID)
		if err != nil {
			return handleRepoError(err)
		}

		notifyTransition(fx, updated, actor, req.Status, toBookingResponse(updated))
		fx.Emit(RoutingBookingStatusChanged, newBookingEvent(updated))

		logger.CtxInfo(ctx, "booking status changed",
			"booking_id", booking.ID,
			"from", from,
			"to", req.Status)

		return s.dispatcher.Journal(tx, fx)
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Flush(ctx, db, fx)
	return toBookingResponse(updated), nil
}

// ---------------- Nearby requests ----------------

func (s *bookingService) NearbyRequests(ctx context.Context, db *gorm.DB, p Principal, query *dto.NearbyRequestsQuery) (*dto.NearbyRequestListResponse, error) {
	if !p.IsWorker() {
		return nil, apperrors.ErrNotAuthorized
	}
	if query.Latitude == nil || query.Longitude == nil {
		return nil, fieldError("location", "Latitude and longitude are required")
	}

	origin := algorithms.Point{Latitude: *query.Latitude, Longitude: *query.Longitude}
	radius := query.Radius
	if radius <= 0 {
		radius = defaultNearbyRadiusKm
	}

	filter := repositories.NearbyRequestFilter{ServiceType: query.ServiceType}
	if box, ok := algorithms.BoxAround(origin, radius); ok {
		filter.Box = &box
	}

	bookings, err := s.bookings.FindPendingWithLocation(db.WithContext(ctx), filter)
	if err != nil {
		return nil, handleRepoError(err)
	}

	candidates := make([]*models.Booking, len(bookings))
	for i := range bookings {
		candidates[i] = &bookings[i]
	}
	ranked := algorithms.FindNearby(candidates, origin, radius, algorithms.DefaultNearbyLimit)

	resp := &dto.NearbyRequestListResponse{
		Requests: make([]*dto.NearbyRequestResponse, 0, len(ranked)),
		Count:    len(ranked),
	}
	for _, r := range ranked {
		resp.Requests = append(resp.Requests, &dto.NearbyRequestResponse{
			BookingResponse: toBookingResponse(r.Item),
			DistanceKm:      r.DistanceKm,
		})
	}
	return resp, nil
}
