package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/service"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

// AssignmentHandler manages which students a requirement set applies to.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler builds an assignment handler instance.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches the routes to the requirement set group. Every route is administrative.
func (h *AssignmentHandler) Register(router fiber.Router, admin fiber.Handler) {
	router.Put("/:id/assign-students", admin, h.assign)
	router.Get("/:id/students", admin, h.roster)
	router.Get("/:id/student-ids", admin, h.studentIDs)
}

func (h *AssignmentHandler) assign(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignStudentsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Assign(c.UserContext(), principalFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "students assigned", result)
}

func (h *AssignmentHandler) roster(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.RosterListRequest{Page: page, PageSize: pageSize, Search: c.Query("search")}
	if c.Query("yearLevel") != "" {
		yearLevel, err := parseQueryInt(c, "yearLevel")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		req.YearLevel = &yearLevel
	}

	result, err := h.service.Roster(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, result.Items, "students retrieved", result.Pagination)
}

func (h *AssignmentHandler) studentIDs(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.AssignedStudentIDs(c.UserContext(), id, c.Query("search"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student ids retrieved", result)
}
