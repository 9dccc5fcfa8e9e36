package workers

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"homefix_backend/internal/logger"
	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"
	"homefix_backend/internal/services"
	"homefix_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAvailabilitySweep(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateHomeowner(t, db, "Hana")

	stale := testutil.CreateWorker(t, db, "Stale", testutil.WithAvailability(models.AvailabilityBusy))
	testutil.CreateBooking(t, db, owner, stale, models.BookingStatusCompleted)

	engaged := testutil.CreateWorker(t, db, "Engaged")
	testutil.CreateBooking(t, db, owner, engaged, models.BookingStatusInProgress)

	working := testutil.CreateWorker(t, db, "Working", testutil.WithAvailability(models.AvailabilityBusy))
	testutil.CreateBooking(t, db, owner, working, models.BookingStatusAccepted)

	offline := testutil.CreateWorker(t, db, "Offline", testutil.WithAvailability(models.AvailabilityOffline))
	testutil.CreateBooking(t, db, owner, offline, models.BookingStatusAccepted)

	job := NewAvailabilityWorker(db, repositories.NewWorkerRepository())
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, models.AvailabilityAvailable, testutil.ReloadWorker(t, db, stale.ID).Availability)
	assert.Equal(t, models.AvailabilityBusy, testutil.ReloadWorker(t, db, engaged.ID).Availability)
	assert.Equal(t, models.AvailabilityBusy, testutil.ReloadWorker(t, db, working.ID).Availability)
	assert.Equal(t, models.AvailabilityOffline, testutil.ReloadWorker(t, db, offline.ID).Availability)
}

func TestRetentionPurgesOnlyRead(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateHomeowner(t, db, "Hana")

	for _, read := range []bool{true, true, false} {
		require.NoError(t, db.Create(&models.Notification{
			UserID:  owner.ID,
			Type:    models.NotificationTypeBooking,
			Title:   "Booking Accepted",
			Message: "Your booking has been accepted.",
			Data:    datatypes.JSON(`{}`),
			IsRead:  read,
		}).Error)
	}

	// часы сервиса сдвинуты вперёд, чтобы записи попали за окно хранения
	later := func() time.Time { return time.Now().Add(40 * 24 * time.Hour) }
	svc := services.NewNotificationService(repositories.NewNotificationRepository(), later)

	job := NewRetentionWorker(db, svc, 30*24*time.Hour)
	require.NoError(t, job.Run(context.Background()))

	var left []models.Notification
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.False(t, left[0].IsRead)
}

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler(context.Background())
	job := &countingJob{err: errors.New("ignored")}
	require.NoError(t, s.Add("@every 1s", job))

	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestSchedulerSpecs(t *testing.T) {
	s := NewScheduler(context.Background())
	assert.NoError(t, s.Add("", &countingJob{}))
	assert.Error(t, s.Add("every tuesday", &countingJob{}))
	assert.Empty(t, s.cron.Entries())
}

type panickyJob struct{}

func (panickyJob) Name() string              { return "panicky" }
func (panickyJob) Run(context.Context) error { panic("boom") }

func TestSchedulerRecoversPanics(t *testing.T) {
	s := NewScheduler(context.Background())
	assert.NotPanics(t, func() { s.run(panickyJob{}) })
}

func TestSchedulerLogsJobError(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Options{Env: "production", Level: "info", Output: &buf})
	t.Cleanup(func() { logger.Init(logger.Options{Env: "test"}) })

	s := NewScheduler(context.Background())
	s.run(&countingJob{err: errors.New("commit failed")})

	out := buf.String()
	assert.Contains(t, out, `"worker":"counting"`)
	assert.Contains(t, out, `"error":"commit failed"`)
	assert.Contains(t, out, `"level":"ERROR"`)
}
