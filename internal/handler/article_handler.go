package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/service"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

// ArticleHandler serves site articles. Reads are public.
type ArticleHandler struct {
	service service.ArticleService
	logger  zerolog.Logger
}

// NewArticleHandler builds an article handler instance.
func NewArticleHandler(service service.ArticleService, logger zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		service: service,
		logger:  logger.With().Str("component", "article_handler").Logger(),
	}
}

// Register attaches the routes. Mutations run behind protected and admin.
func (h *ArticleHandler) Register(router fiber.Router, protected, admin fiber.Handler) {
	router.Get("", h.list)
	router.Get("/latest", h.latest)
	router.Get("/:id", h.get)
	router.Post("", protected, admin, h.create)
	router.Put("/:id", protected, admin, h.update)
	router.Delete("/:id", protected, admin, h.delete)
}

func (h *ArticleHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(c.UserContext(), dto.ArticleListRequest{
		Page:       page,
		PageSize:   pageSize,
		SearchTerm: c.Query("searchTerm"),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, result.Items, "articles retrieved", result.Pagination)
}

func (h *ArticleHandler) latest(c *fiber.Ctx) error {
	articles, err := h.service.Latest(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "articles retrieved", articles)
}

func (h *ArticleHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	article, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "article retrieved", article)
}

func (h *ArticleHandler) create(c *fiber.Ctx) error {
	payload, image, err := articleForm(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid form data")
	}

	article, err := h.service.Create(c.UserContext(), principalFromContext(c), payload, image)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.Created(c, article, "article created")
}

func (h *ArticleHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	payload, image, err := articleForm(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid form data")
	}

	article, err := h.service.Update(c.UserContext(), principalFromContext(c), id, payload, image)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "article updated", article)
}

func (h *ArticleHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), principalFromContext(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "article deleted", nil)
}

func articleForm(c *fiber.Ctx) (dto.ArticleRequest, *multipart.FileHeader, error) {
	var payload dto.ArticleRequest
	if err := c.BodyParser(&payload); err != nil {
		return dto.ArticleRequest{}, nil, err
	}
	var image *multipart.FileHeader
	if header, err := c.FormFile("image"); err == nil {
		image = header
	}
	return payload, image, nil
}
