package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholartrack-api/internal/middleware"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/service"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, keys ...string) (int, error) {
	for _, key := range keys {
		value := strings.TrimSpace(c.Query(key))
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, errors.New("invalid " + key)
		}
		return parsed, nil
	}
	return 0, nil
}

func parseQueryUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

// pageParams reads page and pageSize (or page_size); normalisation happens in the services.
func pageParams(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := parseQueryInt(c, "pageSize", "page_size")
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func principalFromContext(c *fiber.Ctx) service.Principal {
	principal := service.Principal{}
	if id, ok := c.Locals(middleware.LocalUserID).(uint); ok {
		principal.UserID = id
	}
	switch role := c.Locals(middleware.LocalUserRole).(type) {
	case models.Role:
		principal.Role = role
	case string:
		if parsed, ok := models.ParseRole(role); ok {
			principal.Role = parsed
		}
	}
	return principal
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// errorStatus maps service errors onto HTTP statuses and client messages.
var errorStatus = []struct {
	target  error
	status  int
	message string
}{
	{service.ErrRequirementSetNotFound, fiber.StatusNotFound, "requirement set not found"},
	{service.ErrRequirementNotFound, fiber.StatusNotFound, "requirement not found"},
	{service.ErrSubmissionNotFound, fiber.StatusNotFound, "submission not found"},
	{service.ErrCommentNotFound, fiber.StatusNotFound, "comment not found"},
	{service.ErrUserNotFound, fiber.StatusNotFound, "user not found"},
	{service.ErrArticleNotFound, fiber.StatusNotFound, "article not found"},
	{service.ErrTitleRequired, fiber.StatusBadRequest, "title is required"},
	{service.ErrFileRequired, fiber.StatusBadRequest, "file is required"},
	{service.ErrInvalidFileFormat, fiber.StatusBadRequest, "Invalid file format"},
	{service.ErrFileTooLarge, fiber.StatusBadRequest, "file exceeds the size limit"},
	{service.ErrEmptyStudentList, fiber.StatusBadRequest, "student list must not be empty"},
	{service.ErrNotAStudent, fiber.StatusBadRequest, "only student accounts can be assigned"},
	{service.ErrEmptyRequirementList, fiber.StatusBadRequest, "at least one requirement is required"},
	{service.ErrInvalidDeadline, fiber.StatusBadRequest, "invalid deadline"},
	{service.ErrInvalidApprovalStatus, fiber.StatusBadRequest, "approval status must be Approved or Rejected"},
	{service.ErrEmptyContent, fiber.StatusBadRequest, "content must not be empty"},
	{service.ErrContentTooLong, fiber.StatusBadRequest, "content must be at most 500 characters"},
	{service.ErrInvalidRole, fiber.StatusBadRequest, "invalid role"},
	{service.ErrInvalidImage, fiber.StatusBadRequest, "image must be a JPEG, PNG or GIF"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "invalid credentials"},
	{service.ErrForbidden, fiber.StatusForbidden, "insufficient permissions"},
	{service.ErrEmailTaken, fiber.StatusConflict, "email already registered"},
	{service.ErrUserHasComments, fiber.StatusConflict, "user has authored comments"},
	{service.ErrUpstreamUpload, fiber.StatusBadGateway, "Cloud upload failed"},
}

// respondError writes the envelope for err. Unknown errors are logged and reported as 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(validationErrors))
	}

	for _, mapping := range errorStatus {
		if errors.Is(err, mapping.target) {
			if mapping.status >= fiber.StatusInternalServerError {
				requestLogger(logger, c).Error().Err(err).Msg(mapping.message)
			}
			return utils.Fail(c, mapping.status, mapping.message, nil)
		}
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
	return utils.Fail(c, fiber.StatusInternalServerError, "internal server error", nil)
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Namespace()] = fieldErr.Tag()
	}
	return details
}
