package repositories

import (
	"testing"
	"time"

	"homefix_backend/internal/algorithms"
	"homefix_backend/internal/models"
	"homefix_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkBusyIfAvailableOnlyOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewWorkerRepository()
	worker := testutil.CreateWorker(t, db, "Ravi")

	ok, err := repo.MarkBusyIfAvailable(db, worker.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkBusyIfAvailable(db, worker.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")

	assert.Equal(t, models.AvailabilityBusy, testutil.ReloadWorker(t, db, worker.ID).Availability)
}

func TestAvailabilityReconciliation(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewWorkerRepository()
	home := testutil.CreateHomeowner(t, db, "Hana")

	stale := testutil.CreateWorker(t, db, "Stale", testutil.WithAvailability(models.AvailabilityBusy))
	engaged := testutil.CreateWorker(t, db, "Engaged")
	testutil.CreateBooking(t, db, home, engaged, models.BookingStatusInProgress)
	busyOK := testutil.CreateWorker(t, db, "BusyOK", testutil.WithAvailability(models.AvailabilityBusy))
	testutil.CreateBooking(t, db, home, busyOK, models.BookingStatusAccepted)

	released, err := repo.ReleaseStaleBusy(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	marked, err := repo.MarkEngagedBusy(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	assert.Equal(t, models.AvailabilityAvailable, testutil.ReloadWorker(t, db, stale.ID).Availability)
	assert.Equal(t, models.AvailabilityBusy, testutil.ReloadWorker(t, db, engaged.ID).Availability)
	assert.Equal(t, models.AvailabilityBusy, testutil.ReloadWorker(t, db, busyOK.ID).Availability)
}

func TestFindNearbyCandidatesUsesBoxAndFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewWorkerRepository()

	near := testutil.CreateWorker(t, db, "Near", testutil.WithLocation(12.97, 77.59))
	testutil.CreateWorker(t, db, "Far", testutil.WithLocation(28.61, 77.20))
	testutil.CreateWorker(t, db, "Plumber", testutil.WithLocation(12.97, 77.60), testutil.WithService(models.ServicePlumber))
	testutil.CreateWorker(t, db, "Offline", testutil.WithLocation(12.97, 77.59), testutil.WithAvailability(models.AvailabilityOffline))
	testutil.CreateWorker(t, db, "Nowhere")

	box, ok := algorithms.BoxAround(algorithms.Point{Latitude: 12.97, Longitude: 77.59}, 10)
	require.True(t, ok)

	workers, err := repo.FindNearbyCandidates(db, NearbyWorkerFilter{Box: &box, ServiceType: models.ServicePainter})
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, near.ID, workers[0].ID)
	require.NotNil(t, workers[0].User)
	assert.Equal(t, "Near", workers[0].User.Name)
}

func TestSearchIsCaseInsensitiveAndOrdered(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewWorkerRepository()

	junior := testutil.CreateWorker(t, db, "Junior", testutil.WithCity("Bengaluru", "Karnataka"))
	senior := testutil.CreateWorker(t, db, "Senior", testutil.WithCity("Bengaluru", "Karnataka"))
	require.NoError(t, repo.UpdateFields(db, senior.ID, map[string]interface{}{"total_jobs": 10}))
	testutil.CreateWorker(t, db, "Elsewhere", testutil.WithCity("Pune", "Maharashtra"))

	workers, err := repo.Search(db, WorkerSearchFilter{City: "bengal"})
	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Equal(t, senior.ID, workers[0].ID)
	assert.Equal(t, junior.ID, workers[1].ID)
}

func TestReviewUpsertKeepsSingleRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewReviewRepository()
	home := testutil.CreateHomeowner(t, db, "Hana")
	worker := testutil.CreateWorker(t, db, "Ravi")
	booking := testutil.CreateBooking(t, db, home, worker, models.BookingStatusCompleted)

	first := &models.Review{BookingID: booking.ID, ReviewerID: home.ID, WorkerID: worker.ID, Rating: 2}
	require.NoError(t, repo.Upsert(db, first))

	comment := "much better on the second visit"
	second := &models.Review{BookingID: booking.ID, ReviewerID: home.ID, WorkerID: worker.ID, Rating: 5, Comment: &comment}
	require.NoError(t, repo.Upsert(db, second))

	assert.Equal(t, first.ID, second.ID)
	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	agg, err := repo.AggregateForWorker(db, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, RatingAggregate{Total: 5, Count: 1}, agg)
}

func TestAggregateWithoutReviews(t *testing.T) {
	db := testutil.NewDB(t)
	agg, err := NewReviewRepository().AggregateForWorker(db, "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg.Count)
}

func TestMarkConsumedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEventRepository()

	first, err := repo.MarkConsumed(db, "pay-1", "payment.paid", "b-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkConsumed(db, "pay-1", "payment.paid", "b-1")
	require.NoError(t, err)
	assert.False(t, again)
}

func TestNotificationReadFlow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewNotificationRepository()
	user := testutil.CreateHomeowner(t, db, "Hana")

	batch := []*models.Notification{
		{UserID: user.ID, Type: models.NotificationTypeBooking, Title: "a", Message: "a"},
		{UserID: user.ID, Type: models.NotificationTypeBooking, Title: "b", Message: "b"},
	}
	require.NoError(t, repo.CreateBatch(db, batch))

	readAt := time.Now().UTC()
	require.NoError(t, repo.MarkAsRead(db, batch[0].ID, readAt))

	unread, err := repo.GetUnreadCount(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	list, total, err := repo.FindUserNotifications(db, user.ID, NotificationCriteria{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, batch[1].ID, list[0].ID)

	n, err := repo.MarkAllAsRead(db, user.ID, readAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	purged, err := repo.DeleteReadBefore(db, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}

func TestNotificationSettingsDefaultsAndSave(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewNotificationRepository()

	settings, err := repo.GetSettings(db, "u-1")
	require.NoError(t, err)
	assert.True(t, settings.PushNotifications)
	assert.False(t, settings.SMSNotifications)

	settings.PushNotifications = false
	require.NoError(t, repo.SaveSettings(db, settings))

	updated := models.DefaultNotificationSettings("u-1")
	updated.EmailNotifications = false
	require.NoError(t, repo.SaveSettings(db, updated))

	byUser, err := repo.FindSettingsForUsers(db, []string{"u-1", "u-2"})
	require.NoError(t, err)
	assert.False(t, byUser["u-1"].EmailNotifications)
	assert.True(t, byUser["u-1"].PushNotifications, "second save overwrites all toggles")
	assert.True(t, byUser["u-2"].PushNotifications)
}
