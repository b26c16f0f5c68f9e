package middleware

import (
	"context"
	"errors"
	"time"

	"gearguard/utils"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ResetRateLimiter throttles the password reset endpoints per client IP.
// A nil storage keeps counters in memory.
func ResetRateLimiter(max int, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "reset:" + c.IP() + ":" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			utils.LogEvent("rate_limit_hit", map[string]interface{}{
				"endpoint":   c.Path(),
				"ip":         c.IP(),
				"user_agent": c.Get("User-Agent"),
			})
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
		},
		Storage: storage,
	})
}

// DefaultRedisPrefix namespaces limiter counters in a shared Redis database.
const DefaultRedisPrefix = "gearguard:limiter:"

type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// RedisStorage implements fiber.Storage for Redis. Every key is stored
// under prefix so Reset never touches data it does not own.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

func NewRedisStorage(opts RedisOptions) *RedisStorage {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Address,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		prefix: prefix,
	}
}

func (r *RedisStorage) key(k string) string {
	return r.prefix + k
}

// Ping checks the connection so startup can fall back to memory storage.
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStorage) Get(key string) ([]byte, error) {
	val, err := r.client.Get(context.Background(), r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if len(key) == 0 || len(val) == 0 {
		return nil
	}
	return r.client.Set(context.Background(), r.key(key), val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(context.Background(), r.key(key)).Err()
}

// Reset removes the limiter's own keys only.
func (r *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
