package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
)

// defaultPrefix - префикс ключей ответов в Redis.
const defaultPrefix = "token:reply:"

// ReplyCache хранит закодированные ответы RPC по correlation id, чтобы повторная
// доставка уже обработанного generate_tokens вернула тот же ответ
// (в т.ч. тот же newDeviceLogin), а не результат второго выполнения.
type ReplyCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

var _ rpc.ReplyCache = (*ReplyCache)(nil)

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой - используется "token:reply:".
func NewRedisCache(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*ReplyCache, error) {
	if prefix == "" {
		prefix = defaultPrefix
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &ReplyCache{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (c *ReplyCache) key(id string) string { return c.prefix + id }

// Get возвращает ответ и признак его наличия.
func (c *ReplyCache) Get(ctx context.Context, correlationID string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.key(correlationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return b, true, nil
}

// Set сохраняет ответ с TTL кэша.
func (c *ReplyCache) Set(ctx context.Context, correlationID string, reply []byte) error {
	return c.rdb.Set(ctx, c.key(correlationID), reply, c.ttl).Err()
}

func (c *ReplyCache) Close() error { return c.rdb.Close() }
