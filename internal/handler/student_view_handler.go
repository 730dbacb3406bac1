package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholartrack-api/internal/service"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

// StudentViewHandler serves the per-student compliance views.
type StudentViewHandler struct {
	service service.StudentViewService
	logger  zerolog.Logger
}

// NewStudentViewHandler builds a student view handler instance.
func NewStudentViewHandler(service service.StudentViewService, logger zerolog.Logger) *StudentViewHandler {
	return &StudentViewHandler{
		service: service,
		logger:  logger.With().Str("component", "student_view_handler").Logger(),
	}
}

// Register attaches the routes to the requirement set group.
func (h *StudentViewHandler) Register(router fiber.Router, admin fiber.Handler) {
	router.Get("/user/:userId", h.studentView)
	router.Get("/:id/students/:userId/requirements", admin, h.studentRequirements)
}

func (h *StudentViewHandler) studentView(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	views, err := h.service.StudentView(c.UserContext(), principalFromContext(c), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "requirement sets retrieved", views)
}

func (h *StudentViewHandler) studentRequirements(c *fiber.Ctx) error {
	setID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	statuses, err := h.service.StudentRequirements(c.UserContext(), setID, userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student requirements retrieved", statuses)
}
