package mq

import (
	"context"
	"fmt"

	"homefix_backend/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultPrefetch = 8

// ConsumerConfig — очередь, привязанная к exchange внешнего сервиса
type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Bindings []string
	Prefetch int
	Tag      string
}

// Handler разбирает одну доставку
type Handler interface {
	Handle(ctx context.Context, routingKey string, body []byte) Decision
}

type Consumer struct {
	cfg     ConsumerConfig
	handler Handler

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(cfg ConsumerConfig, handler Handler) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = defaultPrefetch
	}
	return &Consumer{cfg: cfg, handler: handler}
}

// Connect объявляет exchange, очередь и биндинги
func (c *Consumer) Connect() error {
	conn, ch, err := open(c.cfg.URL, c.cfg.Exchange)
	if err != nil {
		return err
	}

	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		_ = closeAll(conn, ch)
		return fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}
	for _, key := range c.cfg.Bindings {
		if err := ch.QueueBind(q.Name, key, c.cfg.Exchange, false, nil); err != nil {
			_ = closeAll(conn, ch)
			return fmt.Errorf("bind %s to %s: %w", key, c.cfg.Exchange, err)
		}
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		_ = closeAll(conn, ch)
		return fmt.Errorf("set qos: %w", err)
	}

	c.conn = conn
	c.ch = ch
	return nil
}

// Run блокируется до отмены ctx или закрытия канала
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, c.cfg.Tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}

	logger.Info("broker consumer started", "queue", c.cfg.Queue, "bindings", c.cfg.Bindings)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.settle(d, c.handler.Handle(ctx, d.RoutingKey, d.Body))
		}
	}
}

func (c *Consumer) settle(d amqp.Delivery, decision Decision) {
	var err error
	switch decision {
	case Ack:
		err = d.Ack(false)
	case Requeue:
		err = d.Nack(false, true)
	default:
		err = d.Nack(false, false)
	}
	if err != nil {
		logger.Warn("delivery settle failed",
			"routing_key", d.RoutingKey,
			"decision", decision.String(),
			"error", err.Error())
	}
}

func (c *Consumer) Close() error {
	return closeAll(c.conn, c.ch)
}
