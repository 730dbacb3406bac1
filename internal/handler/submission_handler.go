package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/service"
	"github.com/noah-isme/scholartrack-api/internal/utils"
)

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. uploadLimit
// throttles uploads per caller; admin guards the review route.
func (h *SubmissionHandler) Register(router fiber.Router, admin, uploadLimit fiber.Handler) {
	router.Post("", uploadLimit, h.upload)
	router.Put("/:id/approval-status", admin, h.updateApprovalStatus)
	router.Delete("/:reqId", h.delete)
}

func (h *SubmissionHandler) upload(c *fiber.Ctx) error {
	var payload dto.SubmissionUploadRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid form data")
	}

	principal := principalFromContext(c)
	if payload.UserID == 0 {
		payload.UserID = principal.UserID
	}

	var file *multipart.FileHeader
	if header, err := c.FormFile("file"); err == nil {
		file = header
	}

	submission, err := h.service.Upload(c.UserContext(), principal, payload, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.Created(c, submission, "submission uploaded")
}

func (h *SubmissionHandler) updateApprovalStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ApprovalStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.UpdateApprovalStatus(c.UserContext(), principalFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "approval status updated", submission)
}

func (h *SubmissionHandler) delete(c *fiber.Ctx) error {
	requirementID, err := parseUintParam(c, "reqId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	userID, err := parseQueryUint(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), principalFromContext(c), requirementID, userID); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission deleted", nil)
}
