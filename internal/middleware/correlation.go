package middleware

import (
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/scholartrack-api/internal/observability"
)

// LocalCorrelationID is the fiber locals key holding the request's correlation id.
const LocalCorrelationID = "correlation_id"

const maxCorrelationIDLength = 128

// CorrelationID reuses a client supplied X-Correlation-ID (or X-Request-ID) when it
// is short and printable, otherwise mints a uuid. The id is echoed on the response
// and attached to the user context so services and event publishers can forward it.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := acceptableCorrelationID(c.Get(observability.CorrelationHeader))
		if id == "" {
			id = acceptableCorrelationID(c.Get(fiber.HeaderXRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(LocalCorrelationID, id)
		c.Set(observability.CorrelationHeader, id)
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))
		return c.Next()
	}
}

// GetCorrelationID returns the correlation id bound to the request, if any.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(LocalCorrelationID).(string); ok {
		return id
	}
	return observability.CorrelationID(c.UserContext())
}

func acceptableCorrelationID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxCorrelationIDLength {
		return ""
	}
	for _, r := range value {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return ""
		}
	}
	return value
}
