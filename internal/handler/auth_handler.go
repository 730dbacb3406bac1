package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/middleware"
	"github.com/noah-isme/scholartrack-api/internal/service"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

// AuthHandler issues and revokes bearer tokens.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler builds an auth handler instance.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public routes plus the session routes guarded by protected.
func (h *AuthHandler) Register(router fiber.Router, protected, loginLimit fiber.Handler) {
	router.Post("/register", loginLimit, h.register)
	router.Post("/login", loginLimit, h.login)
	router.Post("/logout", protected, h.logout)
	router.Get("/me", protected, h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.Created(c, session, "account registered")
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "login successful", session)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	tokenID, expiresAt := middleware.TokenFromContext(c)
	if tokenID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "token has no id")
	}

	if err := h.service.Logout(c.UserContext(), tokenID, expiresAt); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(c.UserContext(), principalFromContext(c).UserID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "session retrieved", user)
}
