package handlers

import (
	"net/http"

	"homefix_backend/internal/auth"
	"homefix_backend/internal/middleware"
	"homefix_backend/internal/models"
	"homefix_backend/internal/services"
	"homefix_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	*BaseHandler
	bookingService services.BookingService
	paymentService services.PaymentService
	reviewService  services.ReviewService
}

func NewBookingHandler(
	base *BaseHandler,
	bookingService services.BookingService,
	paymentService services.PaymentService,
	reviewService services.ReviewService,
) *BookingHandler {
	return &BookingHandler{
		BaseHandler:    base,
		bookingService: bookingService,
		paymentService: paymentService,
		reviewService:  reviewService,
	}
}

// RegisterRoutes: nearby-requests объявлен раньше /:id
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	bookings := r.Group("/bookings")
	bookings.Use(requireAuth)
	{
		bookings.POST("", middleware.RequirePermission(auth.PermBookingCreate), h.CreateBooking)
		bookings.GET("", middleware.RequirePermission(auth.PermBookingRead), h.ListBookings)
		bookings.GET("/nearby-requests", middleware.RequirePermission(auth.PermRequestsNear), h.NearbyRequests)
		bookings.GET("/:id", middleware.RequirePermission(auth.PermBookingRead), h.GetBooking)
		bookings.PUT("/:id/status", middleware.RequirePermission(auth.PermBookingStatus), h.UpdateStatus)
		bookings.POST("/:id/pay", middleware.RequirePermission(auth.PermBookingPay), h.PayBooking)
		bookings.POST("/:id/review", middleware.RequirePermission(auth.PermBookingReview), h.SubmitReview)
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	message := "Booking request sent successfully"
	if booking.Status == models.BookingStatusCompleted {
		message = "Booking created and marked as completed."
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"booking": booking,
	})
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ListBookingsRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	list, err := h.bookingService.ListBookings(c.Request.Context(), h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    list.Count,
		"bookings": list.Bookings,
	})
}

func (h *BookingHandler) NearbyRequests(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var query dto.NearbyRequestsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	list, err := h.bookingService.NearbyRequests(c.Request.Context(), h.GetDB(c), p, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    list.Count,
		"requests": list.Requests,
	})
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), h.GetDB(c), p, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateBookingStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), h.GetDB(c), p, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Booking status updated",
		"booking": booking,
	})
}

func (h *BookingHandler) PayBooking(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.PayBookingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	booking, err := h.paymentService.Pay(c.Request.Context(), h.GetDB(c), p, c.Param("id"), c.GetHeader(idempotencyHeader), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Booking marked as paid and completed",
		"booking": booking,
	})
}

func (h *BookingHandler) SubmitReview(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SubmitReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.reviewService.SubmitReview(c.Request.Context(), h.GetDB(c), p, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Review submitted successfully",
		"review":         result.Review,
		"average_rating": result.AverageRating,
	})
}
