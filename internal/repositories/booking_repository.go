package repositories

import (
	"errors"

	"homefix_backend/internal/algorithms"
	"homefix_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingFilter struct {
	HomeownerID string
	WorkerID    string
	Status      models.BookingStatus
}

type NearbyRequestFilter struct {
	Box         *algorithms.BoundingBox
	ServiceType models.ServiceCategory
}

type BookingRepository interface {
	Create(db *gorm.DB, booking *models.Booking) error
	FindByID(db *gorm.DB, id string) (*models.Booking, error)
	LockByID(db *gorm.DB, id string) (*models.Booking, error)
	List(db *gorm.DB, filter BookingFilter) ([]models.Booking, error)
	FindPendingWithLocation(db *gorm.DB, filter NearbyRequestFilter) ([]models.Booking, error)

	// UpdateFields пишет только перечисленные колонки (в том числе zero values)
	UpdateFields(db *gorm.DB, booking *models.Booking, columns ...string) error
	CountActiveForWorker(db *gorm.DB, workerID, excludeBookingID string) (int64, error)
}

type BookingRepositoryImpl struct{}

func NewBookingRepository() BookingRepository {
	return &BookingRepositoryImpl{}
}

func withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Homeowner").Preload("Worker").Preload("Worker.User").Preload("Review")
}

func (r *BookingRepositoryImpl) Create(db *gorm.DB, booking *models.Booking) error {
	return db.Create(booking).Error
}

func (r *BookingRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Booking, error) {
	var booking models.Booking
	err := withParties(db).First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// LockByID блокирует строку бронирования до конца транзакции
func (r *BookingRepositoryImpl) LockByID(db *gorm.DB, id string) (*models.Booking, error) {
	var booking models.Booking
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepositoryImpl) List(db *gorm.DB, filter BookingFilter) ([]models.Booking, error) {
	query := withParties(db).Model(&models.Booking{})
	if filter.HomeownerID != "" {
		query = query.Where("homeowner_id = ?", filter.HomeownerID)
	}
	if filter.WorkerID != "" {
		query = query.Where("worker_id = ?", filter.WorkerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var bookings []models.Booking
	if err := query.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepositoryImpl) FindPendingWithLocation(db *gorm.DB, filter NearbyRequestFilter) ([]models.Booking, error) {
	query := db.Preload("Homeowner").
		Where("status = ?", models.BookingStatusPending).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL")

	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}
	if box := filter.Box; box != nil {
		query = query.Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
			Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}

	var bookings []models.Booking
	if err := query.Order("created_at ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepositoryImpl) UpdateFields(db *gorm.DB, booking *models.Booking, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	return db.Model(booking).Select(columns).Updates(booking).Error
}

func (r *BookingRepositoryImpl) CountActiveForWorker(db *gorm.DB, workerID, excludeBookingID string) (int64, error) {
	query := db.Model(&models.Booking{}).
		Where("worker_id = ? AND status IN ?", workerID, models.ActiveBookingStatuses)
	if excludeBookingID != "" {
		query = query.Where("id <> ?", excludeBookingID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
