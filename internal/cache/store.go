package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss — ключа нет или он истёк
var ErrMiss = errors.New("cache: key not found")

// Store — TTL key/value хранилище с атомарными счётчиками.
// Используется для idempotency-ключей оплаты и счётчика неудачных попыток.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX записывает значение только если ключа нет
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Incr увеличивает счётчик; ttl выставляется при создании ключа
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
}
