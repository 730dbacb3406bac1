package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := roleFromLocals(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireAdministrative admits Admin and StudentAdmin callers.
func RequireAdministrative() fiber.Handler {
	return RequireRole(models.RoleAdmin, models.RoleStudentAdmin)
}

func roleFromLocals(c *fiber.Ctx) (models.Role, bool) {
	switch v := c.Locals(LocalUserRole).(type) {
	case models.Role:
		return v, v != ""
	case string:
		return models.ParseRole(v)
	default:
		return "", false
	}
}
