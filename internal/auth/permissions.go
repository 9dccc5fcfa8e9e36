package auth

import "homefix_backend/internal/models"

// Действия, которые проверяются на уровне маршрутов. Проверка "участник ли
// пользователь бронирования" делается в сервисах.
const (
	PermBookingCreate = "booking:create"
	PermBookingPay    = "booking:pay"
	PermBookingReview = "booking:review"
	PermBookingRead   = "booking:read"
	PermBookingStatus = "booking:status"
	PermRequestsNear  = "requests:nearby"
	PermWorkerProfile = "worker:profile:self"
	PermWorkersSearch = "workers:search"
)

var Permissions = map[models.UserRole][]string{
	models.UserRoleHomeowner: {
		PermBookingCreate,
		PermBookingPay,
		PermBookingReview,
		PermBookingRead,
		PermBookingStatus,
		PermWorkersSearch,
	},
	models.UserRoleWorker: {
		PermBookingRead,
		PermBookingStatus,
		PermRequestsNear,
		PermWorkerProfile,
		PermWorkersSearch,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
