package services

import (
	"fmt"

	"homefix_backend/internal/models"
)

func workerName(b *models.Booking) string {
	if b.Worker != nil && b.Worker.User != nil {
		return b.Worker.User.Name
	}
	return "the worker"
}

func homeownerName(b *models.Booking) string {
	if b.Homeowner != nil {
		return b.Homeowner.Name
	}
	return "A homeowner"
}

func workerUserID(b *models.Booking) string {
	if b.Worker != nil {
		return b.Worker.UserID
	}
	return ""
}

func serviceLabel(b *models.Booking) string {
	if b.ServiceType != "" {
		return string(b.ServiceType)
	}
	return "service"
}

// paymentClause — "of Rs.X" по оплаченной сумме или оценке; без суммы пусто
func paymentClause(b *models.Booking) string {
	switch {
	case b.PaymentAmount != nil:
		return fmt.Sprintf(" of Rs.%.2f", *b.PaymentAmount)
	case b.EstimatedPrice != nil:
		return fmt.Sprintf(" of Rs.%.2f", *b.EstimatedPrice)
	}
	return ""
}

func bookingData(b *models.Booking) map[string]any {
	return map[string]any{"booking_id": b.ID}
}

// notifyNewBooking — запрос создан, ждёт решения работника
func notifyNewBooking(fx *Effects, b *models.Booking, payload any) {
	fx.Notify(workerUserID(b), models.NotificationTypeBooking, "New Booking Request",
		fmt.Sprintf("You have a new service request from %s.", homeownerName(b)), bookingData(b))
	fx.Push(workerUserID(b), EventNewBooking, map[string]any{"booking_id": b.ID, "booking": payload})
}

// notifyPaid — оплата проведена, работа закрыта
func notifyPaid(fx *Effects, b *models.Booking, payload any) {
	fx.Notify(workerUserID(b), models.NotificationTypePayment, "Work Completed",
		fmt.Sprintf("Payment%s received via %s for %s.", paymentClause(b), b.PaymentMethod.Label(), serviceLabel(b)),
		bookingData(b))
	fx.Notify(b.HomeownerID, models.NotificationTypePayment, "Payment Successful",
		fmt.Sprintf("Payment%s to %s confirmed.", paymentClause(b), workerName(b)),
		bookingData(b))

	event := map[string]any{"booking_id": b.ID, "booking": payload}
	fx.Push(workerUserID(b), EventBookingCompleted, event)
	fx.Push(b.HomeownerID, EventBookingCompleted, event)
}

func notifyPaymentFailed(fx *Effects, b *models.Booking) {
	fx.Notify(b.HomeownerID, models.NotificationTypePayment, "Payment Failed",
		fmt.Sprintf("Payment for %s with %s could not be processed. Please try again.", serviceLabel(b), workerName(b)),
		bookingData(b))
}

// notifyTransition — одно уведомление каждому затронутому участнику
func notifyTransition(fx *Effects, b *models.Booking, actor Actor, to models.BookingStatus, payload any) {
	switch to {
	case models.BookingStatusAccepted:
		fx.Notify(b.HomeownerID, models.NotificationTypeBooking, "Booking Accepted",
			fmt.Sprintf("%s accepted your %s request.", workerName(b), serviceLabel(b)), bookingData(b))
	case models.BookingStatusInProgress:
		fx.Notify(b.HomeownerID, models.NotificationTypeBooking, "Job Started",
			fmt.Sprintf("%s has started working on your %s request.", workerName(b), serviceLabel(b)), bookingData(b))
	case models.BookingStatusCompleted:
		fx.Notify(workerUserID(b), models.NotificationTypeBooking, "Work Completed",
			fmt.Sprintf("Booking for %s is marked as completed.", homeownerName(b)), bookingData(b))
		fx.Notify(b.HomeownerID, models.NotificationTypeBooking, "Booking Completed",
			fmt.Sprintf("Work by %s is marked as completed.", workerName(b)), bookingData(b))
		event := map[string]any{"booking_id": b.ID, "booking": payload}
		fx.Push(workerUserID(b), EventBookingCompleted, event)
		fx.Push(b.HomeownerID, EventBookingCompleted, event)
	case models.BookingStatusCancelled:
		if actor == ActorWorker {
			fx.Notify(b.HomeownerID, models.NotificationTypeBooking, "Booking Cancelled",
				fmt.Sprintf("%s cancelled the %s booking.", workerName(b), serviceLabel(b)), bookingData(b))
		} else {
			fx.Notify(workerUserID(b), models.NotificationTypeBooking, "Booking Cancelled",
				fmt.Sprintf("%s cancelled the %s booking.", homeownerName(b), serviceLabel(b)), bookingData(b))
		}
	}

	status := map[string]any{"booking_id": b.ID, "status": to, "booking": payload}
	fx.Push(workerUserID(b), EventBookingStatusUpdated, status)
	fx.Push(b.HomeownerID, EventBookingStatusUpdated, status)
}

func notifyReview(fx *Effects, b *models.Booking, reviewer string, review *models.Review, payload any) {
	fx.Notify(workerUserID(b), models.NotificationTypeBooking, "New Review Received",
		fmt.Sprintf("%s left a %d-star review.", reviewer, review.Rating),
		map[string]any{"booking_id": b.ID, "rating": review.Rating})

	event := map[string]any{
		"booking_id": b.ID,
		"rating":     review.Rating,
		"comment":    review.Comment,
		"booking":    payload,
	}
	fx.Push(workerUserID(b), EventReviewAdded, event)
	fx.Push(b.HomeownerID, EventReviewAdded, event)
}
