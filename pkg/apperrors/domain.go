package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабрики
// =========================================================================

// ErrNotFound - "не найдено" (404) для ошибок репозитория.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidStatus - недопустимый переход состояния (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// ErrExternalService - сбой внешнего сервиса (503)
func ErrExternalService(err error, domain string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, "External service unavailable", http.StatusServiceUnavailable)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ
// =========================================================================

// ErrNotAuthorized - единое сообщение без деталей, чтобы не раскрывать
// существование ресурса.
var ErrNotAuthorized = New(
	CodeForbidden,
	"auth",
	"Not authorized",
	http.StatusForbidden,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid token",
	http.StatusUnauthorized,
)

var ErrTooManyAttempts = New(
	CodeLimitExceeded,
	"limits",
	"Too many attempts, try again later",
	http.StatusTooManyRequests,
)

var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Token expired",
	http.StatusUnauthorized,
)

// ErrIdempotencyKeyReused — ключ уже привязан к другому бронированию
var ErrIdempotencyKeyReused = New(
	CodeConflict,
	"payment",
	"Idempotency key was already used for another booking",
	http.StatusUnprocessableEntity,
)

var ErrPaymentInProgress = New(
	CodeConflict,
	"payment",
	"Payment with this idempotency key is still in progress",
	http.StatusConflict,
)
