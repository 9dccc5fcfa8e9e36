package repositories

import (
	"errors"
	"strings"

	"homefix_backend/internal/algorithms"
	"homefix_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrWorkerNotFound = errors.New("worker not found")

const searchLimit = 50

// NearbyWorkerFilter — SQL только отсекает по bounding box, расстояние
// считается в algorithms.FindNearby.
type NearbyWorkerFilter struct {
	Box         *algorithms.BoundingBox
	ServiceType models.ServiceCategory
}

type WorkerSearchFilter struct {
	City        string
	State       string
	ServiceType models.ServiceCategory
}

type WorkerRepository interface {
	FindByID(db *gorm.DB, id string) (*models.WorkerProfile, error)
	FindByUserID(db *gorm.DB, userID string) (*models.WorkerProfile, error)
	LockByID(db *gorm.DB, id string) (*models.WorkerProfile, error)

	FindNearbyCandidates(db *gorm.DB, filter NearbyWorkerFilter) ([]models.WorkerProfile, error)
	Search(db *gorm.DB, filter WorkerSearchFilter) ([]models.WorkerProfile, error)

	// Availability
	MarkBusyIfAvailable(db *gorm.DB, id string) (bool, error)
	SetAvailability(db *gorm.DB, id string, availability models.Availability) error
	ReleaseStaleBusy(db *gorm.DB) (int64, error)
	MarkEngagedBusy(db *gorm.DB) (int64, error)

	IncrementTotalJobs(db *gorm.DB, id string) error
	UpdateRating(db *gorm.DB, id string, rating float64) error
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
}

type WorkerRepositoryImpl struct{}

func NewWorkerRepository() WorkerRepository {
	return &WorkerRepositoryImpl{}
}

func (r *WorkerRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.WorkerProfile, error) {
	var worker models.WorkerProfile
	err := db.Preload("User").First(&worker, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	return &worker, nil
}

func (r *WorkerRepositoryImpl) FindByUserID(db *gorm.DB, userID string) (*models.WorkerProfile, error) {
	var worker models.WorkerProfile
	err := db.Preload("User").First(&worker, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	return &worker, nil
}

// LockByID — SELECT ... FOR UPDATE, вызывать только внутри транзакции
func (r *WorkerRepositoryImpl) LockByID(db *gorm.DB, id string) (*models.WorkerProfile, error) {
	var worker models.WorkerProfile
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&worker, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	return &worker, nil
}

func (r *WorkerRepositoryImpl) FindNearbyCandidates(db *gorm.DB, filter NearbyWorkerFilter) ([]models.WorkerProfile, error) {
	query := db.Preload("User").
		Where("availability = ?", models.AvailabilityAvailable).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL")

	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}
	if box := filter.Box; box != nil {
		query = query.Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
			Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}

	var workers []models.WorkerProfile
	if err := query.Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}

func (r *WorkerRepositoryImpl) Search(db *gorm.DB, filter WorkerSearchFilter) ([]models.WorkerProfile, error) {
	query := db.Preload("User").Where("availability = ?", models.AvailabilityAvailable)

	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if state := strings.TrimSpace(filter.State); state != "" {
		query = query.Where("LOWER(state) LIKE ?", "%"+strings.ToLower(state)+"%")
	}
	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}

	var workers []models.WorkerProfile
	err := query.Order("total_jobs DESC").Order("average_rating DESC").
		Limit(searchLimit).Find(&workers).Error
	if err != nil {
		return nil, err
	}
	return workers, nil
}

// MarkBusyIfAvailable — условный UPDATE. false означает, что работника уже
// занял кто-то другой (или он offline).
func (r *WorkerRepositoryImpl) MarkBusyIfAvailable(db *gorm.DB, id string) (bool, error) {
	result := db.Model(&models.WorkerProfile{}).
		Where("id = ? AND availability = ?", id, models.AvailabilityAvailable).
		Update("availability", models.AvailabilityBusy)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *WorkerRepositoryImpl) SetAvailability(db *gorm.DB, id string, availability models.Availability) error {
	return db.Model(&models.WorkerProfile{}).Where("id = ?", id).
		Update("availability", availability).Error
}

func activeBookingExists(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Booking{}).
		Select("1").
		Where("bookings.worker_id = worker_profiles.id AND bookings.status IN ?", models.ActiveBookingStatuses)
}

// ReleaseStaleBusy переводит в available тех, кто busy без активной работы
func (r *WorkerRepositoryImpl) ReleaseStaleBusy(db *gorm.DB) (int64, error) {
	result := db.Model(&models.WorkerProfile{}).
		Where("availability = ?", models.AvailabilityBusy).
		Where("NOT EXISTS (?)", activeBookingExists(db)).
		Update("availability", models.AvailabilityAvailable)
	return result.RowsAffected, result.Error
}

// MarkEngagedBusy — обратная сторона: available, но есть accepted/in_progress
func (r *WorkerRepositoryImpl) MarkEngagedBusy(db *gorm.DB) (int64, error) {
	result := db.Model(&models.WorkerProfile{}).
		Where("availability = ?", models.AvailabilityAvailable).
		Where("EXISTS (?)", activeBookingExists(db)).
		Update("availability", models.AvailabilityBusy)
	return result.RowsAffected, result.Error
}

func (r *WorkerRepositoryImpl) IncrementTotalJobs(db *gorm.DB, id string) error {
	return db.Model(&models.WorkerProfile{}).Where("id = ?", id).
		UpdateColumn("total_jobs", gorm.Expr("total_jobs + ?", 1)).Error
}

func (r *WorkerRepositoryImpl) UpdateRating(db *gorm.DB, id string, rating float64) error {
	return db.Model(&models.WorkerProfile{}).Where("id = ?", id).
		Update("average_rating", rating).Error
}

func (r *WorkerRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return db.Model(&models.WorkerProfile{}).Where("id = ?", id).Updates(fields).Error
}
