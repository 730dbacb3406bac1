package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

// Locals keys populated by JWTProtected.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
	LocalTokenID  = "token_id"
	LocalTokenExp = "token_exp"
)

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// UserRevocationChecker reports the instant before which tokens issued to a user
// are no longer accepted. The zero time means none are revoked.
type UserRevocationChecker interface {
	RevokedBefore(ctx context.Context, userID uint) (time.Time, error)
}

// JWTProtected returns a middleware that validates JWT bearer tokens. checker may be nil;
// when it also implements UserRevocationChecker, tokens issued before the user's
// cutoff are rejected so role changes take effect immediately.
func JWTProtected(secret string, checker RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID := extractUserIDFromClaims(claims)
		if userID == nil || *userID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}
		role, ok := models.ParseRole(extractUserRoleFromClaims(claims))
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token role")
		}

		tokenID, _ := claims["jti"].(string)
		if checker != nil && tokenID != "" {
			revoked, err := checker.IsRevoked(c.UserContext(), tokenID)
			if err != nil {
				return utils.SendError(c, fiber.StatusServiceUnavailable, "token status unavailable")
			}
			if revoked {
				return utils.SendError(c, fiber.StatusUnauthorized, "token revoked")
			}
		}

		if users, ok := checker.(UserRevocationChecker); ok {
			cutoff, err := users.RevokedBefore(c.UserContext(), *userID)
			if err != nil {
				return utils.SendError(c, fiber.StatusServiceUnavailable, "token status unavailable")
			}
			if !cutoff.IsZero() {
				issuedAt, err := claims.GetIssuedAt()
				if err != nil || issuedAt == nil || issuedAt.Time.Before(cutoff) {
					return utils.SendError(c, fiber.StatusUnauthorized, "token revoked")
				}
			}
		}

		c.Locals(LocalUserID, *userID)
		c.Locals(LocalUserRole, role)
		c.Locals(LocalTokenID, tokenID)
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			c.Locals(LocalTokenExp, exp.Time)
		}

		return c.Next()
	}
}

// TokenFromContext returns the id and expiry of the token that authenticated the request.
func TokenFromContext(c *fiber.Ctx) (string, time.Time) {
	tokenID, _ := c.Locals(LocalTokenID).(string)
	expiresAt, _ := c.Locals(LocalTokenExp).(time.Time)
	return tokenID, expiresAt
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeUserID(value); err == nil {
				return &normalized
			}
		}
	}

	return nil
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func extractUserRoleFromClaims(claims jwt.MapClaims) string {
	switch v := claims["role"].(type) {
	case string:
		return v
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				return str
			}
		}
	}
	return ""
}
