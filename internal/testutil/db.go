// Package testutil поднимает in-memory SQLite с той же схемой, что и прод,
// и создаёт типовые фикстуры.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"homefix_backend/database"
	"homefix_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB — отдельная БД на тест. Одно соединение: иначе у :memory: у каждого
// соединения своя база. Всё внутри транзакции обязано идти через tx.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

var seq int

func nextEmail(prefix string) string {
	seq++
	return fmt.Sprintf("%s%d@example.test", prefix, seq)
}

func CreateHomeowner(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        nextEmail("home"),
		Phone:        "555-0100",
		PasswordHash: "x",
		Role:         models.UserRoleHomeowner,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// WorkerOption меняет профиль до вставки
type WorkerOption func(*models.WorkerProfile)

func WithLocation(lat, lng float64) WorkerOption {
	return func(w *models.WorkerProfile) {
		w.Latitude = &lat
		w.Longitude = &lng
	}
}

func WithAvailability(a models.Availability) WorkerOption {
	return func(w *models.WorkerProfile) { w.Availability = a }
}

func WithService(c models.ServiceCategory) WorkerOption {
	return func(w *models.WorkerProfile) { w.ServiceType = c }
}

func WithCity(city, state string) WorkerOption {
	return func(w *models.WorkerProfile) {
		w.City = city
		w.State = state
	}
}

// CreateWorker создаёт пользователя-работника и его профиль (User подгружен)
func CreateWorker(t *testing.T, db *gorm.DB, name string, opts ...WorkerOption) *models.WorkerProfile {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        nextEmail("worker"),
		Phone:        "555-0200",
		PasswordHash: "x",
		Role:         models.UserRoleWorker,
	}
	require.NoError(t, db.Create(user).Error)

	profile := &models.WorkerProfile{
		UserID:       user.ID,
		ServiceType:  models.ServicePainter,
		HourlyRate:   40,
		MinCharge:    50,
		Availability: models.AvailabilityAvailable,
	}
	profile.SetSkills(nil)
	for _, opt := range opts {
		opt(profile)
	}
	require.NoError(t, db.Create(profile).Error)
	profile.User = user
	return profile
}

// CreateBooking вставляет бронирование напрямую, минуя сервис
func CreateBooking(t *testing.T, db *gorm.DB, homeowner *models.User, worker *models.WorkerProfile, status models.BookingStatus) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		HomeownerID:   homeowner.ID,
		WorkerID:      worker.ID,
		ServiceType:   worker.ServiceType,
		Description:   "Paint the living room",
		BookingDate:   time.Now().UTC().Add(24 * time.Hour),
		Address:       "12 Elm St",
		Status:        status,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: models.PaymentMethodNone,
	}
	if status == models.BookingStatusCompleted {
		now := time.Now().UTC()
		booking.CompletedAt = &now
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

// ReloadWorker читает профиль заново
func ReloadWorker(t *testing.T, db *gorm.DB, id string) *models.WorkerProfile {
	t.Helper()
	var w models.WorkerProfile
	require.NoError(t, db.First(&w, "id = ?", id).Error)
	return &w
}

func ReloadBooking(t *testing.T, db *gorm.DB, id string) *models.Booking {
	t.Helper()
	var b models.Booking
	require.NoError(t, db.First(&b, "id = ?", id).Error)
	return &b
}
