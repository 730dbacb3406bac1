package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/service"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

// RequirementSetHandler exposes requirement set CRUD.
type RequirementSetHandler struct {
	service service.RequirementSetService
	logger  zerolog.Logger
}

// NewRequirementSetHandler builds a requirement set handler instance.
func NewRequirementSetHandler(service service.RequirementSetService, logger zerolog.Logger) *RequirementSetHandler {
	return &RequirementSetHandler{
		service: service,
		logger:  logger.With().Str("component", "requirement_set_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Mutations pass through admin.
func (h *RequirementSetHandler) Register(router fiber.Router, admin fiber.Handler) {
	router.Get("", h.list)
	router.Get("/simple", h.listSimple)
	router.Get("/:id", h.get)
	router.Post("", admin, h.create)
	router.Put("/:id", admin, h.update)
	router.Delete("/:id", admin, h.delete)
}

func (h *RequirementSetHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(c.UserContext(), dto.RequirementSetListRequest{
		Page:       page,
		PageSize:   pageSize,
		SearchTerm: c.Query("searchTerm"),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.OK(c, result.Items, "requirement sets retrieved", result.Pagination)
}

func (h *RequirementSetHandler) listSimple(c *fiber.Ctx) error {
	sets, err := h.service.ListSimple(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "requirement sets retrieved", sets)
}

func (h *RequirementSetHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	set, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "requirement set retrieved", set)
}

func (h *RequirementSetHandler) create(c *fiber.Ctx) error {
	var payload dto.RequirementSetRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	set, err := h.service.Create(c.UserContext(), principalFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.Created(c, set, "requirement set created")
}

func (h *RequirementSetHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RequirementSetRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	set, err := h.service.Update(c.UserContext(), principalFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "requirement set updated", set)
}

func (h *RequirementSetHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), principalFromContext(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "requirement set deleted", nil)
}
