package services

import (
	"context"
	"strings"

	"homefix_backend/internal/algorithms"
	"homefix_backend/internal/logger"
	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"
	"homefix_backend/internal/services/dto"
	"homefix_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const workerDetailsReviews = 20

type WorkerService interface {
	NearbyWorkers(ctx context.Context, db *gorm.DB, query *dto.NearbyWorkersQuery) (*dto.NearbyWorkerListResponse, error)
	Search(ctx context.Context, db *gorm.DB, query *dto.SearchWorkersQuery) (*dto.WorkerListResponse, error)
	GetDetails(ctx context.Context, db *gorm.DB, workerID string) (*dto.WorkerDetailsResponse, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, p Principal, req *dto.UpdateWorkerProfileRequest) (*dto.WorkerResponse, error)
	UpdateLocation(ctx context.Context, db *gorm.DB, p Principal, req *dto.UpdateLocationRequest) (*dto.WorkerResponse, error)
}

type workerService struct {
	workers      repositories.WorkerRepository
	reviews      repositories.ReviewRepository
	availability *AvailabilityCoordinator
}

func NewWorkerService(
	workers repositories.WorkerRepository,
	reviews repositories.ReviewRepository,
	availability *AvailabilityCoordinator,
) WorkerService {
	return &workerService{
		workers:      workers,
		reviews:      reviews,
		availability: availability,
	}
}

func (s *workerService) NearbyWorkers(ctx context.Context, db *gorm.DB, query *dto.NearbyWorkersQuery) (*dto.NearbyWorkerListResponse, error) {
	if query.Latitude == nil || query.Longitude == nil {
		return nil, fieldError("location", "Latitude and longitude are required")
	}

	origin := algorithms.Point{Latitude: *query.Latitude, Longitude: *query.Longitude}
	radius := query.Radius
	if radius <= 0 {
		radius = defaultNearbyRadiusKm
	}

	filter := repositories.NearbyWorkerFilter{ServiceType: query.ServiceType}
	if box, ok := algorithms.BoxAround(origin, radius); ok {
		filter.Box = &box
	}

	workers, err := s.workers.FindNearbyCandidates(db.WithContext(ctx), filter)
	if err != nil {
		return nil, handleRepoError(err)
	}

	candidates := make([]*models.WorkerProfile, len(workers))
	for i := range workers {
		candidates[i] = &workers[i]
	}
	ranked := algorithms.FindNearby(candidates, origin, radius, query.Limit)

	resp := &dto.NearbyWorkerListResponse{
		Workers: make([]*dto.NearbyWorkerResponse, 0, len(ranked)),
		Count:   len(ranked),
	}
	for _, r := range ranked {
		resp.Workers = append(resp.Workers, &dto.NearbyWorkerResponse{
			WorkerResponse: toWorkerResponse(r.Item),
			DistanceKm:     r.DistanceKm,
		})
	}
	return resp, nil
}

func (s *workerService) Search(ctx context.Context, db *gorm.DB, query *dto.SearchWorkersQuery) (*dto.WorkerListResponse, error) {
	workers, err := s.workers.Search(db.WithContext(ctx), repositories.WorkerSearchFilter{
		City:        query.City,
		State:       query.State,
		ServiceType: query.ServiceType,
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	resp := &dto.WorkerListResponse{
		Workers: make([]*dto.WorkerResponse, 0, len(workers)),
		Count:   len(workers),
	}
	for i := range workers {
		resp.Workers = append(resp.Workers, toWorkerResponse(&workers[i]))
	}
	return resp, nil
}

func (s *workerService) GetDetails(ctx context.Context, db *gorm.DB, workerID string) (*dto.WorkerDetailsResponse, error) {
	worker, err := s.workers.FindByID(db.WithContext(ctx), workerID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	reviews, err := s.reviews.FindLatestByWorker(db.WithContext(ctx), worker.ID, workerDetailsReviews)
	if err != nil {
		return nil, handleRepoError(err)
	}

	resp := &dto.WorkerDetailsResponse{
		WorkerResponse: toWorkerResponse(worker),
		Reviews:        make([]*dto.ReviewResponse, 0, len(reviews)),
	}
	for i := range reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(&reviews[i]))
	}
	return resp, nil
}

// UpdateProfile — частичное обновление. Смена доступности допустима только
// без работы в процессе; busy выставляют только бронирования.
func (s *workerService) UpdateProfile(ctx context.Context, db *gorm.DB, p Principal, req *dto.UpdateWorkerProfileRequest) (*dto.WorkerResponse, error) {
	if !p.IsWorker() {
		return nil, apperrors.ErrNotAuthorized
	}
	if req.Availability != nil && *req.Availability == models.AvailabilityBusy {
		return nil, fieldError("availability", "Availability can only be set to available or offline")
	}

	var updated *models.WorkerProfile
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.workers.FindByUserID(tx, p.UserID)
		if err != nil {
			return handleRepoError(err)
		}
		worker, err := s.workers.LockByID(tx, current.ID)
		if err != nil {
			return handleRepoError(err)
		}

		fields := profileFields(req)
		if req.Skills != nil {
			worker.SetSkills(cleanSkills(req.Skills))
			fields["skills"] = worker.Skills
		}
		if req.Availability != nil && *req.Availability != worker.Availability {
			if err := s.availability.EnsureIdle(tx, worker.ID); err != nil {
				return err
			}
			fields["availability"] = *req.Availability
		}

		if err := s.workers.UpdateFields(tx, worker.ID, fields); err != nil {
			return handleRepoError(err)
		}

		updated, err = s.workers.FindByID(tx, worker.ID)
		return handleRepoError(err)
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "worker profile updated", "worker_id", updated.ID, "availability", updated.Availability)
	return toWorkerResponse(updated), nil
}

func profileFields(req *dto.UpdateWorkerProfileRequest) map[string]interface{} {
	fields := make(map[string]interface{})
	if req.ServiceType != nil {
		fields["service_type"] = *req.ServiceType
	}
	if req.ExperienceYears != nil {
		fields["experience_years"] = *req.ExperienceYears
	}
	if req.HourlyRate != nil {
		fields["hourly_rate"] = *req.HourlyRate
	}
	if req.MinCharge != nil {
		fields["min_charge"] = *req.MinCharge
	}
	if req.Bio != nil {
		fields["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.Address != nil {
		fields["address"] = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		fields["city"] = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		fields["state"] = strings.TrimSpace(*req.State)
	}
	if req.ZipCode != nil {
		fields["zip_code"] = strings.TrimSpace(*req.ZipCode)
	}
	if req.LicenseNumber != nil {
		fields["license_number"] = strings.TrimSpace(*req.LicenseNumber)
	}
	return fields
}

func cleanSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, skill)
	}
	return out
}

func (s *workerService) UpdateLocation(ctx context.Context, db *gorm.DB, p Principal, req *dto.UpdateLocationRequest) (*dto.WorkerResponse, error) {
	if !p.IsWorker() {
		return nil, apperrors.ErrNotAuthorized
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, fieldError("location", "Latitude and longitude are required")
	}
	point := algorithms.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if !point.IsValid() {
		return nil, fieldError("location", "Coordinates are out of range")
	}

	worker, err := s.workers.FindByUserID(db.WithContext(ctx), p.UserID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	err = s.workers.UpdateFields(db.WithContext(ctx), worker.ID, map[string]interface{}{
		"latitude":  point.Latitude,
		"longitude": point.Longitude,
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	worker.Latitude = &point.Latitude
	worker.Longitude = &point.Longitude
	return toWorkerResponse(worker), nil
}
