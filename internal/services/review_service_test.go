package services

import (
	"testing"

	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"
	"homefix_backend/internal/services/dto"
	"homefix_backend/internal/testutil"
	"homefix_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRatingRoundsHalfUp(t *testing.T) {
	cases := []struct {
		total, count int64
		want         float64
	}{
		{0, 0, 0},
		{12, 3, 4.00},
		{5, 1, 5.00},
		{33, 8, 4.13}, // 4.125
		{14, 3, 4.67}, // 4.666..
		{13, 3, 4.33}, // 4.333..
		{7, 2, 3.50},
	}
	for _, tc := range cases {
		got := AverageRating(repositories.RatingAggregate{Total: tc.total, Count: tc.count})
		assert.Equal(t, tc.want, got, "%d/%d", tc.total, tc.count)
	}
}

func TestRatingRecomputedFromAllReviews(t *testing.T) {
	env := newTestEnv(t)
	worker := testutil.CreateWorker(t, env.db, "Walt")

	for i, rating := range []int{5, 3, 4} {
		home := testutil.CreateHomeowner(t, env.db, "Home")
		booking := testutil.CreateBooking(t, env.db, home, worker, models.BookingStatusCompleted)
		resp, err := env.svc.ReviewService.SubmitReview(env.ctx, env.db, homeownerPrincipal(home), booking.ID,
			&dto.SubmitReviewRequest{Rating: rating})
		require.NoError(t, err, i)
		require.NotNil(t, resp.Review)
	}

	assert.Equal(t, 4.00, testutil.ReloadWorker(t, env.db, worker.ID).AverageRating)
}

func TestDoubleReviewUpdatesSingleRow(t *testing.T) {
	env := newTestEnv(t)
	home := testutil.CreateHomeowner(t, env.db, "Hannah")
	worker := testutil.CreateWorker(t, env.db, "Walt")
	booking := testutil.CreateBooking(t, env.db, home, worker, models.BookingStatusCompleted)

	_, err := env.svc.ReviewService.SubmitReview(env.ctx, env.db, homeownerPrincipal(home), booking.ID,
		&dto.SubmitReviewRequest{Rating: 2, Comment: ptr("late")})
	require.NoError(t, err)

	resp, err := env.svc.ReviewService.SubmitReview(env.ctx, env.db, homeownerPrincipal(home), booking.ID,
		&dto.SubmitReviewRequest{Rating: 5, Comment: ptr("   ")})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Review.Rating)
	assert.Nil(t, resp.Review.Comment)
	assert.Equal(t, "Hannah", resp.Review.ReviewerName)
	assert.Equal(t, 5.00, resp.AverageRating)

	var count int64
	require.NoError(t, env.db.Model(&models.Review{}).Where("booking_id = ?", booking.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 5.00, testutil.ReloadWorker(t, env.db, worker.ID).AverageRating)

	env.settle()
	notes := env.notificationsFor(t, worker.UserID)
	require.Len(t, notes, 2)
	assert.Equal(t, "New Review Received", notes[0].Title)
	assert.Contains(t, env.pub.kinds(home.ID), EventReviewAdded)
	assert.Contains(t, env.pub.kinds(worker.UserID), EventReviewAdded)
}

func TestReviewRequiresCompletedOwnedBooking(t *testing.T) {
	env := newTestEnv(t)
	home := testutil.CreateHomeowner(t, env.db, "Hannah")
	stranger := testutil.CreateHomeowner(t, env.db, "Sam")
	worker := testutil.CreateWorker(t, env.db, "Walt")
	pending := testutil.CreateBooking(t, env.db, home, worker, models.BookingStatusPending)
	done := testutil.CreateBooking(t, env.db, home, worker, models.BookingStatusCompleted)

	_, err := env.svc.ReviewService.SubmitReview(env.ctx, env.db, homeownerPrincipal(home), pending.ID,
		&dto.SubmitReviewRequest{Rating: 4})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)

	_, err = env.svc.ReviewService.SubmitReview(env.ctx, env.db, homeownerPrincipal(stranger), done.ID,
		&dto.SubmitReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)

	_, err = env.svc.ReviewService.SubmitReview(env.ctx, env.db, workerPrincipal(worker), done.ID,
		&dto.SubmitReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
}
