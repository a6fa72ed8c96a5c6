// Package snapshot хранит снимки сессий в key-value хранилище.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"garthbid/internal/domain"
	"garthbid/pkg/errcodes"
)

// ErrNotFound совпадает с любой ошибкой отсутствующего ключа.
var ErrNotFound = domain.NewError(domain.KindNotFound, errcodes.SnapshotNotFound, "snapshot not found") //nolint:gochecknoglobals

func notFound(key string) error {
	return domain.Errorf(domain.KindNotFound, errcodes.SnapshotNotFound, "snapshot %s not found", key)
}

// Redis хранит снимки в redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// WithTTL задаёт срок жизни снимка. Ноль хранит бессрочно.
func (r *Redis) WithTTL(ttl time.Duration) *Redis {
	r.ttl = ttl
	return r
}

func (r *Redis) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis.Set: %w", err)
	}

	logger(ctx).Debug("snapshot saved", "key", key, "bytes", len(data))

	return nil
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis.Get: %w", err)
	}

	return data, nil
}

// Memory используется, когда redis не настроен.
type Memory struct {
	cache *cache.Cache
}

func NewMemory() *Memory {
	return &Memory{cache: cache.New(cache.NoExpiration, 0)}
}

func (m *Memory) Save(ctx context.Context, key string, data []byte) error {
	m.cache.Set(key, append([]byte(nil), data...), cache.NoExpiration)

	logger(ctx).Debug("snapshot saved", "key", key, "bytes", len(data))

	return nil
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, notFound(key)
	}

	data, ok := v.([]byte)
	if !ok {
		return nil, domain.Errorf(domain.KindInternal, errcodes.SnapshotCorrupted, "snapshot %s has type %T", key, v)
	}

	return append([]byte(nil), data...), nil
}
