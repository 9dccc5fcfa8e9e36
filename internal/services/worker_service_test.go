package services

import (
	"testing"

	"homefix_backend/internal/models"
	"homefix_backend/internal/services/dto"
	"homefix_backend/internal/testutil"
	"homefix_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbyWorkersOnlyAvailableWithinRadius(t *testing.T) {
	env := newTestEnv(t)
	near := testutil.CreateWorker(t, env.db, "Near", testutil.WithLocation(40.7130, -74.0062))
	mid := testutil.CreateWorker(t, env.db, "Mid", testutil.WithLocation(40.7306, -73.9866))
	testutil.CreateWorker(t, env.db, "Busy", testutil.WithLocation(40.7128, -74.0060),
		testutil.WithAvailability(models.AvailabilityBusy))
	testutil.CreateWorker(t, env.db, "Far", testutil.WithLocation(41.5, -74.0))
	testutil.CreateWorker(t, env.db, "Nowhere")
	testutil.CreateWorker(t, env.db, "Sparky", testutil.WithLocation(40.7129, -74.0061),
		testutil.WithService(models.ServiceElectrician))

	resp, err := env.svc.WorkerService.NearbyWorkers(env.ctx, env.db, &dto.NearbyWorkersQuery{
		Latitude:    ptr(40.7128),
		Longitude:   ptr(-74.0060),
		ServiceType: models.ServicePainter,
	})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, near.ID, resp.Workers[0].ID)
	assert.Equal(t, mid.ID, resp.Workers[1].ID)
	assert.Less(t, resp.Workers[0].DistanceKm, resp.Workers[1].DistanceKm)

	all, err := env.svc.WorkerService.NearbyWorkers(env.ctx, env.db, &dto.NearbyWorkersQuery{
		Latitude:  ptr(40.7128),
		Longitude: ptr(-74.0060),
		Limit:     1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, all.Count)
	assert.Equal(t, "Sparky", all.Workers[0].Name)
}

func TestSearchWorkersByCity(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateWorker(t, env.db, "A", testutil.WithCity("Pune", "Maharashtra"))
	b := testutil.CreateWorker(t, env.db, "B", testutil.WithCity("pune", "MH"))
	testutil.CreateWorker(t, env.db, "C", testutil.WithCity("Delhi", "Delhi"))
	require.NoError(t, env.db.Model(&models.WorkerProfile{}).Where("id = ?", b.ID).Update("total_jobs", 7).Error)

	resp, err := env.svc.WorkerService.Search(env.ctx, env.db, &dto.SearchWorkersQuery{City: "PUN"})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, b.ID, resp.Workers[0].ID)
	assert.Equal(t, a.ID, resp.Workers[1].ID)
}

func TestWorkerDetailsIncludesReviews(t *testing.T) {
	env := newTestEnv(t)
	home := testutil.CreateHomeowner(t, env.db, "Hannah")
	worker := testutil.CreateWorker(t, env.db, "Walt")
	booking := testutil.CreateBooking(t, env.db, home, worker, models.BookingStatusCompleted)

	_, err := env.svc.ReviewService.SubmitReview(env.ctx, env.db, homeownerPrincipal(home), booking.ID,
		&dto.SubmitReviewRequest{Rating: 4, Comment: ptr("Tidy work")})
	require.NoError(t, err)

	details, err := env.svc.WorkerService.GetDetails(env.ctx, env.db, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walt", details.Name)
	assert.Equal(t, 4.0, details.AverageRating)
	require.Len(t, details.Reviews, 1)
	assert.Equal(t, "Hannah", details.Reviews[0].ReviewerName)

	_, err = env.svc.WorkerService.GetDetails(env.ctx, env.db, "missing")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestUpdateProfileAvailabilityGuardedByActiveJob(t *testing.T) {
	env := newTestEnv(t)
	home := testutil.CreateHomeowner(t, env.db, "Hannah")
	worker := testutil.CreateWorker(t, env.db, "Walt", testutil.WithAvailability(models.AvailabilityBusy))
	booking := testutil.CreateBooking(t, env.db, home, worker, models.BookingStatusInProgress)

	_, err := env.svc.WorkerService.UpdateProfile(env.ctx, env.db, workerPrincipal(worker), &dto.UpdateWorkerProfileRequest{
		Availability: ptr(models.AvailabilityOffline),
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	// бронирование не отменяется
	assert.Equal(t, models.BookingStatusInProgress, testutil.ReloadBooking(t, env.db, booking.ID).Status)
	assert.Equal(t, models.AvailabilityBusy, testutil.ReloadWorker(t, env.db, worker.ID).Availability)
}

func TestUpdateProfileFields(t *testing.T) {
	env := newTestEnv(t)
	worker := testutil.CreateWorker(t, env.db, "Walt")

	resp, err := env.svc.WorkerService.UpdateProfile(env.ctx, env.db, workerPrincipal(worker), &dto.UpdateWorkerProfileRequest{
		HourlyRate:   ptr(55.0),
		Bio:          ptr("  Fifteen years of interiors  "),
		Skills:       []string{"Walls", " walls", "Ceilings", ""},
		Availability: ptr(models.AvailabilityOffline),
	})
	require.NoError(t, err)
	assert.Equal(t, 55.0, resp.HourlyRate)
	assert.Equal(t, "Fifteen years of interiors", resp.Bio)
	assert.Equal(t, []string{"Walls", "Ceilings"}, resp.Skills)
	assert.Equal(t, models.AvailabilityOffline, resp.Availability)

	_, err = env.svc.WorkerService.UpdateProfile(env.ctx, env.db, workerPrincipal(worker), &dto.UpdateWorkerProfileRequest{
		Availability: ptr(models.AvailabilityBusy),
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestUpdateLocation(t *testing.T) {
	env := newTestEnv(t)
	worker := testutil.CreateWorker(t, env.db, "Walt")

	resp, err := env.svc.WorkerService.UpdateLocation(env.ctx, env.db, workerPrincipal(worker), &dto.UpdateLocationRequest{
		Latitude:  ptr(19.07),
		Longitude: ptr(72.87),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Location.Latitude)
	assert.Equal(t, 19.07, *resp.Location.Latitude)

	stored := testutil.ReloadWorker(t, env.db, worker.ID)
	require.True(t, stored.HasLocation())
	assert.Equal(t, 72.87, *stored.Longitude)
}
