package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	// Roles restricts access; empty admits any authenticated user.
	Roles []models.Role
	// AllowAnonymous lets requests without a principal through when Roles is empty.
	AllowAnonymous bool
}

// WithAuth wraps a single handler with authentication/authorization guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(opts.Roles))
	for _, role := range opts.Roles {
		allowed[role] = struct{}{}
	}
	anonymous := opts.AllowAnonymous && len(allowed) == 0

	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(LocalUserID).(uint)
		if userID == 0 {
			if anonymous {
				return handler(c)
			}
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if len(allowed) == 0 {
			return handler(c)
		}

		role, ok := roleFromLocals(c)
		if !ok {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		if _, ok := allowed[role]; !ok {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}

		return handler(c)
	}
}
