package services

import (
	"encoding/json"

	"homefix_backend/internal/models"
	"homefix_backend/internal/services/dto"
)

func toPartyResponse(u *models.User) *dto.PartyResponse {
	if u == nil {
		return nil
	}
	return &dto.PartyResponse{
		UserID:       u.ID,
		Name:         u.Name,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
	}
}

func toReviewResponse(r *models.Review) *dto.ReviewResponse {
	if r == nil {
		return nil
	}
	resp := &dto.ReviewResponse{
		ID:         r.ID,
		BookingID:  r.BookingID,
		ReviewerID: r.ReviewerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Reviewer != nil {
		resp.ReviewerName = r.Reviewer.Name
	}
	return resp
}

func toBookingResponse(b *models.Booking) *dto.BookingResponse {
	resp := &dto.BookingResponse{
		ID:             b.ID,
		HomeownerID:    b.HomeownerID,
		WorkerID:       b.WorkerID,
		ServiceType:    b.ServiceType,
		Description:    b.Description,
		BookingDate:    b.BookingDate,
		Address:        b.Address,
		Latitude:       b.Latitude,
		Longitude:      b.Longitude,
		Status:         b.Status,
		PaymentStatus:  b.PaymentStatus,
		PaymentMethod:  b.PaymentMethod,
		EstimatedHours: b.EstimatedHours,
		EstimatedPrice: b.EstimatedPrice,
		PaymentAmount:  b.PaymentAmount,
		CompletedAt:    b.CompletedAt,
		CancelledAt:    b.CancelledAt,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
		Homeowner:      toPartyResponse(b.Homeowner),
		Review:         toReviewResponse(b.Review),
	}

	if w := b.Worker; w != nil {
		worker := &dto.BookingWorkerResponse{
			WorkerID:      w.ID,
			ServiceType:   w.ServiceType,
			HourlyRate:    w.HourlyRate,
			AverageRating: w.AverageRating,
		}
		if party := toPartyResponse(w.User); party != nil {
			worker.PartyResponse = *party
		}
		resp.Worker = worker
	}
	return resp
}

func toWorkerResponse(w *models.WorkerProfile) *dto.WorkerResponse {
	resp := &dto.WorkerResponse{
		ID:              w.ID,
		UserID:          w.UserID,
		ServiceType:     w.ServiceType,
		ExperienceYears: w.ExperienceYears,
		HourlyRate:      w.HourlyRate,
		MinCharge:       w.MinCharge,
		Bio:             w.Bio,
		Skills:          w.GetSkills(),
		Availability:    w.Availability,
		Location: dto.LocationResponse{
			Latitude:  w.Latitude,
			Longitude: w.Longitude,
			Address:   w.Address,
			City:      w.City,
			State:     w.State,
			ZipCode:   w.ZipCode,
		},
		LicenseNumber: w.LicenseNumber,
		Verified:      w.Verified,
		TotalJobs:     w.TotalJobs,
		AverageRating: w.AverageRating,
		UpdatedAt:     w.UpdatedAt,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if u := w.User; u != nil {
		resp.Name = u.Name
		resp.Email = u.Email
		resp.Phone = u.Phone
		resp.ProfileImage = u.ProfileImage
	}
	return resp
}

func toNotificationResponse(n *models.Notification) *dto.NotificationResponse {
	resp := &dto.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(n.Data, &data); err == nil {
			resp.Data = data
		}
	}
	return resp
}
