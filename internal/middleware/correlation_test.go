package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholartrack-api/internal/observability"
)

func correlationApp() *fiber.App {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		c.Set("X-Context-Correlation", observability.CorrelationID(c.UserContext()))
		c.Set("X-Locals-Correlation", GetCorrelationID(c))
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestCorrelationIDReusesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := correlationApp().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "req-123", resp.Header.Get("X-Correlation-ID"))
	require.Equal(t, "req-123", resp.Header.Get("X-Context-Correlation"))
	require.Equal(t, "req-123", resp.Header.Get("X-Locals-Correlation"))
}

func TestCorrelationIDReplacesUnusableValues(t *testing.T) {
	app := correlationApp()

	for _, incoming := range []string{"", strings.Repeat("x", maxCorrelationIDLength+1), "bad\x7fid"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header.Set("X-Correlation-ID", incoming)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		id := resp.Header.Get("X-Correlation-ID")
		require.Len(t, id, 36, "expected a generated uuid for %q", incoming)
		require.Equal(t, id, resp.Header.Get("X-Context-Correlation"))
	}
}
