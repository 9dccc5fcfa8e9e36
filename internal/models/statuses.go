package models

type UserRole string
type ServiceCategory string
type Availability string
type BookingStatus string
type PaymentStatus string
type PaymentMethod string
type NotificationType string

const (
	UserRoleHomeowner UserRole = "homeowner"
	UserRoleWorker    UserRole = "worker"

	ServicePainter     ServiceCategory = "painter"
	ServiceElectrician ServiceCategory = "electrician"
	ServicePlumber     ServiceCategory = "plumber"
	ServiceCarpenter   ServiceCategory = "carpenter"
	ServiceHandyman    ServiceCategory = "handyman"
	ServiceHVAC        ServiceCategory = "hvac"

	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityOffline   Availability = "offline"

	BookingStatusPending    BookingStatus = "pending"
	BookingStatusAccepted   BookingStatus = "accepted"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"

	PaymentStatusPending PaymentStatus = "pending_payment"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "payment_failed"

	PaymentMethodNone PaymentMethod = "none"
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodMock PaymentMethod = "mock"
	PaymentMethodCash PaymentMethod = "cash"

	NotificationTypeInfo     NotificationType = "info"
	NotificationTypeSecurity NotificationType = "security"
	NotificationTypeBooking  NotificationType = "booking"
	NotificationTypePayment  NotificationType = "payment"
)

var ServiceCategories = []ServiceCategory{
	ServicePainter, ServiceElectrician, ServicePlumber,
	ServiceCarpenter, ServiceHandyman, ServiceHVAC,
}

func (r UserRole) IsValid() bool {
	return r == UserRoleHomeowner || r == UserRoleWorker
}

func (c ServiceCategory) IsValid() bool {
	for _, known := range ServiceCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (a Availability) IsValid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOffline:
		return true
	}
	return false
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// IsActive — работа назначена и выполняется (worker должен быть busy).
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusAccepted || s == BookingStatusInProgress
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// ActiveBookingStatuses удобно передавать в "status IN ?".
var ActiveBookingStatuses = []BookingStatus{BookingStatusAccepted, BookingStatusInProgress}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodNone, PaymentMethodUPI, PaymentMethodMock, PaymentMethodCash:
		return true
	}
	return false
}

// IsSettlement — методом можно реально провести оплату
func (m PaymentMethod) IsSettlement() bool {
	return m == PaymentMethodUPI || m == PaymentMethodMock || m == PaymentMethodCash
}

// Label — название метода в текстах уведомлений
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodMock:
		return "Mock Wallet"
	case PaymentMethodUPI:
		return "UPI"
	case PaymentMethodCash:
		return "CASH"
	}
	return "NONE"
}

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSecurity, NotificationTypeBooking, NotificationTypePayment:
		return true
	}
	return false
}
