package issuer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisTimeout = 5 * time.Second
	defaultRegistryKey  = "guest-wallet:issuer:keys"
	rateLimitKeyPrefix  = "guest-wallet:issuer:rl:"
)

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// ConnectRedis initialises a Redis client and validates connectivity with a ping.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisRegistry keeps records in a single hash keyed by public key.
type RedisRegistry struct {
	client *redis.Client
	key    string
}

// NewRedisRegistry wraps client. An empty key uses the default hash name.
func NewRedisRegistry(client *redis.Client, key string) *RedisRegistry {
	if key == "" {
		key = defaultRegistryKey
	}
	return &RedisRegistry{client: client, key: key}
}

func (r *RedisRegistry) Add(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	added, err := r.client.HSetNX(ctx, r.key, rec.PublicKey, raw).Result()
	if err != nil {
		return fmt.Errorf("registry add: %w", err)
	}
	if !added {
		return ErrDuplicateKey
	}
	return nil
}

func (r *RedisRegistry) Has(ctx context.Context, publicKey string) (bool, error) {
	ok, err := r.client.HExists(ctx, r.key, publicKey).Result()
	if err != nil {
		return false, fmt.Errorf("registry lookup: %w", err)
	}
	return ok, nil
}

func (r *RedisRegistry) List(ctx context.Context) ([]Record, error) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("registry list: %w", err)
	}
	out := make([]Record, 0, len(all))
	for pk, raw := range all {
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("registry record %s: %w", pk, err)
		}
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (r *RedisRegistry) Delete(ctx context.Context, publicKeys []string) (int, error) {
	if len(publicKeys) == 0 {
		return 0, nil
	}
	n, err := r.client.HDel(ctx, r.key, publicKeys...).Result()
	if err != nil {
		return 0, fmt.Errorf("registry delete: %w", err)
	}
	return int(n), nil
}

// RedisLimiter is a fixed-window counter shared by every issuer replica.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: int64(limit), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	key := rateLimitKeyPrefix + clientKey
	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return count.Val() <= l.limit, nil
}
