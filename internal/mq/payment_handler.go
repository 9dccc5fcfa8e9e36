package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"homefix_backend/internal/logger"
	"homefix_backend/internal/services"
	"homefix_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Decision — что сделать с доставкой после обработки
type Decision int

const (
	Ack     Decision = iota
	Requeue          // nack + requeue: временный сбой
	Reject           // nack без requeue: сообщение не разобрать
)

func (d Decision) String() string {
	switch d {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "reject"
	}
}

// PaymentProcessor — часть services.PaymentService, нужная консьюмеру
type PaymentProcessor interface {
	ConfirmExternalPayment(ctx context.Context, db *gorm.DB, event services.PaymentEvent) (bool, error)
	RecordPaymentFailure(ctx context.Context, db *gorm.DB, event services.PaymentEvent) (bool, error)
}

// PaymentHandler применяет события payment.paid / payment.failed
type PaymentHandler struct {
	db       *gorm.DB
	payments PaymentProcessor
}

func NewPaymentHandler(db *gorm.DB, payments PaymentProcessor) *PaymentHandler {
	return &PaymentHandler{db: db, payments: payments}
}

// PaymentBindings — ключи, которые слушает очередь платежей
func PaymentBindings() []string {
	return []string{services.EventKeyPaymentPaid, services.EventKeyPaymentFailed}
}

func (h *PaymentHandler) Handle(ctx context.Context, routingKey string, body []byte) Decision {
	var apply func(context.Context, *gorm.DB, services.PaymentEvent) (bool, error)
	switch routingKey {
	case services.EventKeyPaymentPaid:
		apply = h.payments.ConfirmExternalPayment
	case services.EventKeyPaymentFailed:
		apply = h.payments.RecordPaymentFailure
	default:
		logger.CtxWarn(ctx, "skip unknown routing key", "routing_key", routingKey)
		return Ack
	}

	var event services.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.CtxWithError(ctx, "undecodable payment event", fmt.Errorf("%s: %w", routingKey, err))
		return Reject
	}
	ctx = logger.WithCorrelationID(ctx, event.EventID)

	applied, err := apply(ctx, h.db, event)
	if err != nil {
		return decide(ctx, routingKey, err)
	}
	if !applied {
		logger.CtxDebug(ctx, "payment event already consumed", "routing_key", routingKey)
	}
	return Ack
}

// decide: 5xx повторяем, бизнес-отказы (конфликт, не найдено) подтверждаем,
// иначе сообщение зациклится в очереди
func decide(ctx context.Context, routingKey string, err error) Decision {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Retryable() {
		logger.CtxWithError(ctx, "payment event failed, requeue", err, "routing_key", routingKey)
		return Requeue
	}
	logger.CtxWarn(ctx, "payment event rejected by domain",
		"routing_key", routingKey,
		"code", appErr.Code,
		"error", err.Error())
	return Ack
}
