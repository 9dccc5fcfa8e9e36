package services

import (
	"testing"

	"homefix_backend/internal/models"
	"homefix_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerTransitionTable(t *testing.T) {
	cases := []struct {
		from, to models.BookingStatus
		effect   AvailabilityEffect
	}{
		{models.BookingStatusPending, models.BookingStatusAccepted, EffectClaim},
		{models.BookingStatusPending, models.BookingStatusCancelled, EffectNone},
		{models.BookingStatusAccepted, models.BookingStatusInProgress, EffectNone},
		{models.BookingStatusAccepted, models.BookingStatusCancelled, EffectRelease},
		{models.BookingStatusInProgress, models.BookingStatusCompleted, EffectRelease},
		{models.BookingStatusInProgress, models.BookingStatusCancelled, EffectRelease},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			effect, err := ResolveTransition(ActorWorker, tc.from, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.effect, effect)
		})
	}
}

func TestWorkerRejectedTransitionsAreConflicts(t *testing.T) {
	rejected := [][2]models.BookingStatus{
		{models.BookingStatusPending, models.BookingStatusCompleted},
		{models.BookingStatusPending, models.BookingStatusInProgress},
		{models.BookingStatusAccepted, models.BookingStatusCompleted},
		{models.BookingStatusCompleted, models.BookingStatusCancelled},
		{models.BookingStatusCancelled, models.BookingStatusAccepted},
		{models.BookingStatusAccepted, models.BookingStatusAccepted},
	}
	for _, pair := range rejected {
		_, err := ResolveTransition(ActorWorker, pair[0], pair[1])
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok, "%s->%s", pair[0], pair[1])
		assert.Equal(t, 409, appErr.HTTPCode)
	}
}

func TestHomeownerMayOnlyCancel(t *testing.T) {
	for _, to := range []models.BookingStatus{
		models.BookingStatusAccepted, models.BookingStatusInProgress, models.BookingStatusCompleted, models.BookingStatusPending,
	} {
		_, err := ResolveTransition(ActorHomeowner, models.BookingStatusPending, to)
		assert.ErrorIs(t, err, apperrors.ErrNotAuthorized, "to %s", to)
	}

	effect, err := ResolveTransition(ActorHomeowner, models.BookingStatusPending, models.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, EffectNone, effect)

	effect, err = ResolveTransition(ActorHomeowner, models.BookingStatusInProgress, models.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, EffectRelease, effect)

	_, err = ResolveTransition(ActorHomeowner, models.BookingStatusCompleted, models.BookingStatusCancelled)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
}

func TestSystemCompletesFromAnyOpenState(t *testing.T) {
	for _, from := range []models.BookingStatus{
		models.BookingStatusPending, models.BookingStatusAccepted, models.BookingStatusInProgress,
	} {
		effect, err := ResolveTransition(ActorSystem, from, models.BookingStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, EffectRelease, effect)
	}

	_, err := ResolveTransition(ActorSystem, models.BookingStatusCancelled, models.BookingStatusCompleted)
	assert.Error(t, err)
}

func TestUnknownTargetStatusIsValidationError(t *testing.T) {
	_, err := ResolveTransition(ActorWorker, models.BookingStatusPending, "archived")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestCanSettle(t *testing.T) {
	assert.NoError(t, CanSettle(&models.Booking{Status: models.BookingStatusPending, PaymentStatus: models.PaymentStatusPending}))
	assert.NoError(t, CanSettle(&models.Booking{Status: models.BookingStatusAccepted, PaymentStatus: models.PaymentStatusFailed}))
	assert.Error(t, CanSettle(&models.Booking{Status: models.BookingStatusCompleted, PaymentStatus: models.PaymentStatusPaid}))
	assert.Error(t, CanSettle(&models.Booking{Status: models.BookingStatusCancelled, PaymentStatus: models.PaymentStatusPending}))
}
