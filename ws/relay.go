package ws

import (
	"context"
	"encoding/json"
	"time"

	"homefix_backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

const RelayChannel = "homefix:realtime"

type relayMessage struct {
	UserID  string          `json:"user_id"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// RedisRelay — fan-out между инстансами: Publish уходит в Redis pub/sub,
// каждый инстанс доставляет своим локальным сессиям.
type RedisRelay struct {
	client *redis.Client
	hub    *Hub
}

func NewRedisRelay(client *redis.Client, hub *Hub) *RedisRelay {
	return &RedisRelay{client: client, hub: hub}
}

func (r *RedisRelay) Publish(ctx context.Context, userID, kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(relayMessage{UserID: userID, Kind: kind, Payload: raw})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, RelayChannel, msg).Err()
}

// Run слушает канал до отмены ctx
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, RelayChannel)
	defer sub.Close()

	logger.Info("realtime relay subscribed", "channel", RelayChannel)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			r.handle(m.Payload)
		}
	}
}

func (r *RedisRelay) handle(raw string) {
	var msg relayMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		logger.Warn("relay message ignored", "error", err.Error())
		return
	}
	envelope, err := json.Marshal(Envelope{Type: msg.Kind, Data: msg.Payload, SentAt: time.Now().UTC()})
	if err != nil {
		return
	}
	r.hub.deliver(msg.UserID, envelope)
}
