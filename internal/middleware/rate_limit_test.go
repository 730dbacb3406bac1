package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRateLimitKeysByUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user := c.Get("X-Test-User"); user == "1" {
			c.Locals(LocalUserID, uint(1))
		} else if user == "2" {
			c.Locals(LocalUserID, uint(2))
		}
		return c.Next()
	})
	app.Post("/upload", RateLimit("upload", 2, time.Minute, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.Header.Set("X-Test-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusCreated, send("1"))
	require.Equal(t, fiber.StatusCreated, send("1"))
	require.Equal(t, fiber.StatusTooManyRequests, send("1"))
	require.Equal(t, fiber.StatusCreated, send("2"))
}

func TestRateLimitSharesRedisStorageAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	storage := NewRedisStorage(client, "test:limit:")

	newInstance := func() *fiber.App {
		app := fiber.New()
		app.Post("/login", RateLimit("login", 2, time.Minute, storage), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}
	first, second := newInstance(), newInstance()

	send := func(app *fiber.App) *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		return resp
	}

	require.Equal(t, fiber.StatusOK, send(first).StatusCode)
	require.Equal(t, fiber.StatusOK, send(second).StatusCode)

	limited := send(first)
	require.Equal(t, fiber.StatusTooManyRequests, limited.StatusCode)
	require.NotEmpty(t, limited.Header.Get(fiber.HeaderRetryAfter))
	require.NotEmpty(t, mr.Keys())

	require.NoError(t, storage.Reset())
	require.Empty(t, mr.Keys())
	require.Equal(t, fiber.StatusOK, send(second).StatusCode)
}

func TestRedisStorageMissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	storage := NewRedisStorage(client, "")

	value, err := storage.Get("absent")
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, storage.Set("present", []byte("1"), time.Minute))
	mr.CheckGet(t, "scholartrack:ratelimit:present", "1")
	require.NoError(t, storage.Delete("present"))
	require.False(t, mr.Exists("scholartrack:ratelimit:present"))
}
