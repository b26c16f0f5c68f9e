package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/forgot-password", ResetRateLimiter(2, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/forgot-password", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/forgot-password", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRedisStorageKeysArePrefixed(t *testing.T) {
	storage := NewRedisStorage(RedisOptions{Address: "127.0.0.1:0"})
	t.Cleanup(func() { _ = storage.Close() })
	assert.Equal(t, DefaultRedisPrefix+"reset:1.2.3.4:/forgot-password", storage.key("reset:1.2.3.4:/forgot-password"))

	custom := NewRedisStorage(RedisOptions{Address: "127.0.0.1:0", Prefix: "test:"})
	t.Cleanup(func() { _ = custom.Close() })
	assert.Equal(t, "test:k", custom.key("k"))

	require.NoError(t, storage.Set("", []byte("1"), time.Minute), "empty keys are ignored without a round trip")
}
