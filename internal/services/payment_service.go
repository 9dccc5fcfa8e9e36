package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"homefix_backend/internal/cache"
	"homefix_backend/internal/config"
	"homefix_backend/internal/logger"
	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"
	"homefix_backend/internal/services/dto"
	"homefix_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	idempotencyTTL = 24 * time.Hour
	// claimTTL — срок незавершённого захвата ключа, если запрос упал
	claimTTL       = 30 * time.Second
	replayPollStep = 50 * time.Millisecond
	replayWait     = 5 * time.Second

	EventKeyPaymentPaid   = "payment.paid"
	EventKeyPaymentFailed = "payment.failed"
)

// PaymentEvent — подтверждение или отказ от внешнего платёжного провайдера
type PaymentEvent struct {
	EventID   string               `json:"event_id"`
	BookingID string               `json:"booking_id"`
	Method    models.PaymentMethod `json:"method"`
	Amount    *float64             `json:"amount,omitempty"`
	Reason    string               `json:"reason,omitempty"`
}

type PaymentService interface {
	// Pay — оплата владельцем бронирования. idempotencyKey может быть пустым.
	Pay(ctx context.Context, db *gorm.DB, p Principal, bookingID, idempotencyKey string, req *dto.PayBookingRequest) (*dto.BookingResponse, error)
	// ConfirmExternalPayment возвращает false, если событие уже применялось
	ConfirmExternalPayment(ctx context.Context, db *gorm.DB, event PaymentEvent) (bool, error)
	RecordPaymentFailure(ctx context.Context, db *gorm.DB, event PaymentEvent) (bool, error)
}

type paymentService struct {
	bookings     repositories.BookingRepository
	workers      repositories.WorkerRepository
	events       repositories.EventRepository
	availability *AvailabilityCoordinator
	dispatcher   *Dispatcher
	store        cache.Store
	cfg          config.PaymentConfig
	now          func() time.Time
}

func NewPaymentService(
	bookings repositories.BookingRepository,
	workers repositories.WorkerRepository,
	events repositories.EventRepository,
	availability *AvailabilityCoordinator,
	dispatcher *Dispatcher,
	store cache.Store,
	cfg config.PaymentConfig,
	now func() time.Time,
) PaymentService {
	if now == nil {
		now = time.Now
	}
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &paymentService{
		bookings:     bookings,
		workers:      workers,
		events:       events,
		availability: availability,
		dispatcher:   dispatcher,
		store:        store,
		cfg:          cfg,
		now:          now,
	}
}

func idempotencyKey(userID, key string) string {
	return "payment:idem:" + userID + ":" + key
}

func failuresKey(bookingID string) string {
	return "payment:failures:" + bookingID
}

// ---------------- Pay ----------------

func (s *paymentService) Pay(ctx context.Context, db *gorm.DB, p Principal, bookingID, key string, req *dto.PayBookingRequest) (*dto.BookingResponse, error) {
	if !p.IsHomeowner() {
		return nil, apperrors.ErrNotAuthorized
	}
	if !req.Method.IsSettlement() {
		return nil, fieldError("method", "Must be one of: upi, mock, cash")
	}
	if req.Amount != nil && *req.Amount < 0 {
		return nil, fieldError("amount", "Must be greater than or equal to 0")
	}

	claimed := false
	if key != "" {
		resp, owned, err := s.claim(ctx, p.UserID, bookingID, key)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			logger.CtxInfo(ctx, "payment replayed from idempotency key", "booking_id", bookingID)
			return resp, nil
		}
		claimed = owned
	}

	resp, err := s.pay(ctx, db, p, bookingID, req)
	if claimed {
		if err != nil {
			s.release(ctx, p.UserID, key)
		} else {
			s.remember(ctx, p.UserID, bookingID, key, resp)
		}
	}
	return resp, err
}

func (s *paymentService) pay(ctx context.Context, db *gorm.DB, p Principal, bookingID string, req *dto.PayBookingRequest) (*dto.BookingResponse, error) {
	if err := s.checkFailures(ctx, bookingID); err != nil {
		return nil, err
	}

	var (
		paid *models.Booking
		fx   = &Effects{}
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookings.LockByID(tx, bookingID)
		if err != nil {
			return handleRepoError(err)
		}
		if booking.HomeownerID != p.UserID {
			return apperrors.ErrNotAuthorized
		}

		paid, err = s.settle(tx, booking, req.Method, req.Amount, fx)
		if err != nil {
			return err
		}
		return s.dispatcher.Journal(tx, fx)
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "booking paid",
		"booking_id", paid.ID,
		"method", paid.PaymentMethod,
		"source", "api")

	s.dispatcher.Flush(ctx, db, fx)
	return toBookingResponse(paid), nil
}

// idempotencyRecord — Response == nil, пока владелец ключа проводит оплату
type idempotencyRecord struct {
	BookingID string               `json:"booking_id"`
	Response  *dto.BookingResponse `json:"response,omitempty"`
}

// claim захватывает ключ через SetNX. Если ключ уже занят, ждёт ответ
// владельца. owned == false при недоступном хранилище: платим без защиты.
func (s *paymentService) claim(ctx context.Context, userID, bookingID, key string) (*dto.BookingResponse, bool, error) {
	raw, err := json.Marshal(idempotencyRecord{BookingID: bookingID})
	if err != nil {
		return nil, false, nil
	}
	storeKey := idempotencyKey(userID, key)

	ok, err := s.store.SetNX(ctx, storeKey, raw, claimTTL)
	if err != nil {
		logger.CtxWarn(ctx, "idempotency claim failed", "error", err.Error())
		return nil, false, nil
	}
	if ok {
		return nil, true, nil
	}

	wait, cancel := context.WithTimeout(ctx, replayWait)
	defer cancel()
	ticker := time.NewTicker(replayPollStep)
	defer ticker.Stop()

	for {
		rec, found := s.lookup(ctx, storeKey)
		switch {
		case !found:
			// владелец ключа упал или отпустил его, пробуем занять снова
			if ok, err := s.store.SetNX(ctx, storeKey, raw, claimTTL); err == nil && ok {
				return nil, true, nil
			}
		case rec.BookingID != bookingID:
			return nil, false, apperrors.ErrIdempotencyKeyReused
		case rec.Response != nil:
			return rec.Response, false, nil
		}

		select {
		case <-wait.Done():
			return nil, false, apperrors.ErrPaymentInProgress
		case <-ticker.C:
		}
	}
}

func (s *paymentService) lookup(ctx context.Context, storeKey string) (*idempotencyRecord, bool) {
	raw, err := s.store.Get(ctx, storeKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.CtxWarn(ctx, "idempotency lookup failed", "error", err.Error())
		}
		return nil, false
	}
	var rec idempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (s *paymentService) remember(ctx context.Context, userID, bookingID, key string, resp *dto.BookingResponse) {
	raw, err := json.Marshal(idempotencyRecord{BookingID: bookingID, Response: resp})
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, idempotencyKey(userID, key), raw, idempotencyTTL); err != nil {
		logger.CtxWarn(ctx, "idempotency store failed", "error", err.Error())
	}
}

// release отпускает ключ после неудачной оплаты, повтор с ним допустим
func (s *paymentService) release(ctx context.Context, userID, key string) {
	if err := s.store.Delete(ctx, idempotencyKey(userID, key)); err != nil {
		logger.CtxWarn(ctx, "idempotency release failed", "error", err.Error())
	}
}

// checkFailures блокирует оплату после серии отказов провайдера в окне
func (s *paymentService) checkFailures(ctx context.Context, bookingID string) error {
	if s.cfg.MaxFailures <= 0 {
		return nil
	}
	raw, err := s.store.Get(ctx, failuresKey(bookingID))
	if err != nil {
		return nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil
	}
	if n >= int64(s.cfg.MaxFailures) {
		return apperrors.ErrTooManyAttempts
	}
	return nil
}

// settle проводит оплату внутри tx: paid + completed, работник освобождается.
// Уже completed без оплаты остаётся completed.
func (s *paymentService) settle(tx *gorm.DB, booking *models.Booking, method models.PaymentMethod, amount *float64, fx *Effects) (*models.Booking, error) {
	if err := CanSettle(booking); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	booking.PaymentStatus = models.PaymentStatusPaid
	booking.PaymentMethod = method
	booking.PaymentAmount = firstAmount(nonNegative(amount), booking.PaymentAmount, booking.EstimatedPrice)
	columns := []string{"payment_status", "payment_method", "payment_amount", "updated_at"}

	completing := booking.Status != models.BookingStatusCompleted
	if completing {
		effect, err := ResolveTransition(ActorSystem, booking.Status, models.BookingStatusCompleted)
		if err != nil {
			return nil, err
		}
		if err := s.availability.Apply(tx, booking, effect); err != nil {
			return nil, err
		}
		booking.Status = models.BookingStatusCompleted
		columns = append(columns, "status")
	}
	if booking.CompletedAt == nil {
		booking.CompletedAt = &now
		columns = append(columns, "completed_at")
	}

	if err := s.bookings.UpdateFields(tx, booking, columns...); err != nil {
		return nil, handleRepoError(err)
	}
	if completing {
		if err := s.workers.IncrementTotalJobs(tx, booking.WorkerID); err != nil {
			return nil, handleRepoError(err)
		}
	}

	paid, err := s.bookings.FindByID(tx, booking.ID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	notifyPaid(fx, paid, toBookingResponse(paid))
	fx.Emit(RoutingBookingPaid, newBookingEvent(paid))
	return paid, nil
}

// ---------------- External events ----------------

func (s *paymentService) ConfirmExternalPayment(ctx context.Context, db *gorm.DB, event PaymentEvent) (bool, error) {
	if event.EventID == "" || event.BookingID == "" {
		return false, fieldError("event_id", "Event id and booking id are required")
	}
	if !event.Method.IsSettlement() {
		return false, fieldError("method", "Must be one of: upi, mock, cash")
	}

	fx := &Effects{}
	applied := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := s.events.MarkConsumed(tx, event.EventID, EventKeyPaymentPaid, event.BookingID)
		if err != nil {
			return handleRepoError(err)
		}
		if !fresh {
			return nil
		}

		booking, err := s.bookings.LockByID(tx, event.BookingID)
		if err != nil {
			return handleRepoError(err)
		}
		if _, err := s.settle(tx, booking, event.Method, event.Amount, fx); err != nil {
			return err
		}
		applied = true
		return s.dispatcher.Journal(tx, fx)
	})
	if err != nil {
		return false, err
	}
	if !applied {
		logger.CtxInfo(ctx, "duplicate payment event skipped", "event_id", event.EventID)
		return false, nil
	}

	logger.CtxInfo(ctx, "booking paid",
		"booking_id", event.BookingID,
		"method", event.Method,
		"source", "broker")

	s.dispatcher.Flush(ctx, db, fx)
	return true, nil
}

func (s *paymentService) RecordPaymentFailure(ctx context.Context, db *gorm.DB, event PaymentEvent) (bool, error) {
	if event.EventID == "" || event.BookingID == "" {
		return false, fieldError("event_id", "Event id and booking id are required")
	}

	fx := &Effects{}
	applied := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := s.events.MarkConsumed(tx, event.EventID, EventKeyPaymentFailed, event.BookingID)
		if err != nil {
			return handleRepoError(err)
		}
		if !fresh {
			return nil
		}

		booking, err := s.bookings.LockByID(tx, event.BookingID)
		if err != nil {
			return handleRepoError(err)
		}
		if err := CanSettle(booking); err != nil {
			return err
		}

		booking.PaymentStatus = models.PaymentStatusFailed
		if err := s.bookings.UpdateFields(tx, booking, "payment_status", "updated_at"); err != nil {
			return handleRepoError(err)
		}

		failed, err := s.bookings.FindByID(tx, booking.ID)
		if err != nil {
			return handleRepoError(err)
		}
		notifyPaymentFailed(fx, failed)
		applied = true
		return s.dispatcher.Journal(tx, fx)
	})
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	if _, err := s.store.Incr(ctx, failuresKey(event.BookingID), s.cfg.FailureWindow); err != nil {
		logger.CtxWarn(ctx, "payment failure counter not updated", "booking_id", event.BookingID, "error", err.Error())
	}
	logger.CtxWarn(ctx, "payment failed",
		"booking_id", event.BookingID,
		"reason", event.Reason)

	s.dispatcher.Flush(ctx, db, fx)
	return true, nil
}
