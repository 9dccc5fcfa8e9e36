package services

import (
	"homefix_backend/internal/models"
	"homefix_backend/pkg/apperrors"
)

// Actor — кто инициирует переход статуса
type Actor int

const (
	ActorHomeowner Actor = iota
	ActorWorker
	// ActorSystem — подтверждение оплаты (эндпоинт оплаты или брокер)
	ActorSystem
)

// AvailabilityEffect — что переход делает с доступностью работника
type AvailabilityEffect int

const (
	EffectNone AvailabilityEffect = iota
	// EffectClaim: available -> busy условным UPDATE, проигрыш = Conflict
	EffectClaim
	// EffectRelease: busy -> available, если у работника нет другой активной работы
	EffectRelease
)

type transitionKey struct {
	from, to models.BookingStatus
}

var workerTransitions = map[transitionKey]AvailabilityEffect{
	{models.BookingStatusPending, models.BookingStatusAccepted}:     EffectClaim,
	{models.BookingStatusPending, models.BookingStatusCancelled}:    EffectNone,
	{models.BookingStatusAccepted, models.BookingStatusInProgress}:  EffectNone,
	{models.BookingStatusAccepted, models.BookingStatusCancelled}:   EffectRelease,
	{models.BookingStatusInProgress, models.BookingStatusCompleted}: EffectRelease,
	{models.BookingStatusInProgress, models.BookingStatusCancelled}: EffectRelease,
}

// ResolveTransition проверяет переход по таблице и роли. Ошибки уже в
// caller-facing виде: Authorization для чужой роли, Conflict для недопустимого
// перехода.
func ResolveTransition(actor Actor, from, to models.BookingStatus) (AvailabilityEffect, error) {
	if !to.IsValid() {
		return EffectNone, fieldError("status", "Unknown booking status")
	}

	switch actor {
	case ActorHomeowner:
		if to != models.BookingStatusCancelled {
			return EffectNone, apperrors.ErrNotAuthorized
		}
		if from.IsTerminal() {
			return EffectNone, apperrors.ErrInvalidStatus(domainBooking, "Booking can no longer be cancelled")
		}
		return releaseIfActive(from), nil

	case ActorWorker:
		effect, ok := workerTransitions[transitionKey{from, to}]
		if !ok {
			return EffectNone, apperrors.ErrInvalidStatus(domainBooking, "Cannot move booking from "+string(from)+" to "+string(to))
		}
		return effect, nil

	case ActorSystem:
		if to != models.BookingStatusCompleted || from.IsTerminal() {
			return EffectNone, apperrors.ErrInvalidStatus(domainBooking, "Cannot move booking from "+string(from)+" to "+string(to))
		}
		return EffectRelease, nil
	}

	return EffectNone, apperrors.ErrNotAuthorized
}

func releaseIfActive(from models.BookingStatus) AvailabilityEffect {
	if from.IsActive() {
		return EffectRelease
	}
	return EffectNone
}

// CanSettle — можно ли проводить оплату для бронирования
func CanSettle(booking *models.Booking) error {
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return apperrors.ErrInvalidStatus(domainPayment, "Booking already marked as paid")
	}
	if booking.Status == models.BookingStatusCancelled {
		return apperrors.ErrInvalidStatus(domainPayment, "Cannot pay for a cancelled booking")
	}
	return nil
}

// ActorFor — роль принципала на конкретном бронировании
func ActorFor(p Principal) Actor {
	if p.IsWorker() {
		return ActorWorker
	}
	return ActorHomeowner
}
