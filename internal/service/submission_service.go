package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/observability"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

var allowedSubmissionExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

var allowedSubmissionTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// SubmissionService drives the submission lifecycle: upload, review and removal.
type SubmissionService interface {
	Upload(ctx context.Context, actor Principal, payload dto.SubmissionUploadRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	UpdateApprovalStatus(ctx context.Context, actor Principal, id uint, payload dto.ApprovalStatusUpdateRequest) (dto.SubmissionResponse, error)
	Delete(ctx context.Context, actor Principal, requirementID, userID uint) error
}

type submissionService struct {
	submissions repository.SubmissionRepository
	sets        repository.RequirementSetRepository
	users       repository.UserRepository
	uploader    FileUploader
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	maxSize     int64
	now         func() time.Time
}

// SubmissionServiceDeps groups the collaborators of the submission service.
type SubmissionServiceDeps struct {
	Submissions repository.SubmissionRepository
	Sets        repository.RequirementSetRepository
	Users       repository.UserRepository
	Uploader    FileUploader
	Validator   *validator.Validate
	Activity    ActivityRecorder
	Events      EventPublisher
	MaxSizeMB   int
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(deps SubmissionServiceDeps, logger zerolog.Logger) SubmissionService {
	maxSizeMB := deps.MaxSizeMB
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &submissionService{
		submissions: deps.Submissions,
		sets:        deps.Sets,
		users:       deps.Users,
		uploader:    deps.Uploader,
		validator:   deps.Validator,
		activity:    deps.Activity,
		events:      deps.Events,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/scholartrack-api/internal/service/submission"),
		maxSize:     int64(maxSizeMB) * 1024 * 1024,
		now:         time.Now,
	}
}

func (s *submissionService) Upload(ctx context.Context, actor Principal, payload dto.SubmissionUploadRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.upload")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	span.SetAttributes(
		attribute.Int("submission.user_id", int(payload.UserID)),
		attribute.Int("submission.requirement_id", int(payload.RequirementID)),
	)

	fail := func(reason string, err error) (dto.SubmissionResponse, error) {
		if reason != "" {
			observability.UploadRejected().WithLabelValues(reason).Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.SubmissionResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return fail("validation", err)
	}
	if file == nil {
		return fail("missing", ErrFileRequired)
	}
	if !actor.CanActFor(payload.UserID) {
		return fail("forbidden", ErrForbidden)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedSubmissionExtensions[ext]; !ok {
		return fail("extension", ErrInvalidFileFormat)
	}
	if file.Size > s.maxSize {
		return fail("size", ErrFileTooLarge)
	}

	requirement, err := s.sets.GetRequirement(ctx, payload.RequirementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail("", ErrRequirementNotFound)
		}
		return fail("", err)
	}
	if payload.RequirementSetID != 0 && requirement.RequirementSetID != payload.RequirementSetID {
		return fail("", ErrRequirementNotFound)
	}
	if _, err := s.users.GetByID(ctx, payload.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail("", ErrUserNotFound)
		}
		return fail("", err)
	}

	content, err := readLimited(file, s.maxSize)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return fail("size", err)
		}
		return fail("", err)
	}

	detected := mimetype.Detect(content)
	if !mimetype.EqualsAny(detected.String(), allowedSubmissionTypes...) {
		return fail("content", ErrInvalidFileFormat)
	}
	span.SetAttributes(attribute.String("submission.content_type", detected.String()))

	url, err := s.uploader.Upload(ctx, file.Filename, bytes.NewReader(content))
	if err != nil {
		s.logger.Error().Err(err).Uint("requirement_id", requirement.ID).Msg("file host upload failed")
		return fail("storage", fmt.Errorf("%w: %v", ErrUpstreamUpload, err))
	}

	now := s.now().UTC()
	submission := models.Submission{
		UserID:         payload.UserID,
		RequirementID:  requirement.ID,
		FilePath:       url,
		ContentType:    detected.String(),
		ApprovalStatus: models.ApprovalStatusPending,
		SubmittedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.submissions.Upsert(ctx, &submission); err != nil {
		return fail("", err)
	}

	observability.UploadRequests().WithLabelValues(detected.String()).Inc()
	span.SetStatus(codes.Ok, "stored")

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("user_id", submission.UserID).
		Uint("requirement_id", submission.RequirementID).
		Msg("submission uploaded")

	publishEvent(ctx, s.events, s.logger, SubjectSubmissionUploaded, SubmissionUploadedEvent{
		SubmissionID:     submission.ID,
		UserID:           submission.UserID,
		RequirementID:    submission.RequirementID,
		RequirementSetID: requirement.RequirementSetID,
		FilePath:         submission.FilePath,
		SubmittedAt:      submission.SubmittedAt,
	})

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) UpdateApprovalStatus(ctx context.Context, actor Principal, id uint, payload dto.ApprovalStatusUpdateRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.review")
	defer span.End()
	span.SetAttributes(attribute.Int("submission.id", int(id)))

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, err
	}
	if !actor.IsAdministrative() {
		span.SetStatus(codes.Error, "forbidden")
		return dto.SubmissionResponse{}, ErrForbidden
	}

	status := *payload.ApprovalStatus
	if !status.IsReviewOutcome() {
		span.SetStatus(codes.Error, "invalid status")
		return dto.SubmissionResponse{}, ErrInvalidApprovalStatus
	}

	current, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "not found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return dto.SubmissionResponse{}, err
	}

	updated, err := s.submissions.UpdateStatus(ctx, id, status, s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return dto.SubmissionResponse{}, err
	}

	observability.ApprovalTransitions().WithLabelValues(current.ApprovalStatus.String(), status.String()).Inc()
	span.SetAttributes(attribute.String("submission.approval_status", status.String()))
	span.SetStatus(codes.Ok, "reviewed")

	s.logger.Info().
		Uint("submission_id", id).
		Str("from", current.ApprovalStatus.String()).
		Str("to", status.String()).
		Msg("submission reviewed")

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     ActionSubmissionReviewed,
		EntityType: "submission",
		EntityID:   uintPtr(id),
		Metadata: map[string]interface{}{
			"from": current.ApprovalStatus.String(),
			"to":   status.String(),
		},
	})
	publishEvent(ctx, s.events, s.logger, SubjectSubmissionReviewed, SubmissionReviewedEvent{
		SubmissionID:   updated.ID,
		UserID:         updated.UserID,
		RequirementID:  updated.RequirementID,
		ApprovalStatus: status.String(),
		ReviewerID:     actor.UserID,
		ReviewedAt:     updated.UpdatedAt,
	})

	return dto.NewSubmissionResponse(updated), nil
}

// Delete removes the submission of userID for requirementID. A zero userID
// targets the caller's own submission.
func (s *submissionService) Delete(ctx context.Context, actor Principal, requirementID, userID uint) error {
	if userID == 0 {
		userID = actor.UserID
	}
	if !actor.CanActFor(userID) {
		return ErrForbidden
	}

	deleted, err := s.submissions.DeleteByUserAndRequirement(ctx, userID, requirementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	s.logger.Info().Uint("submission_id", deleted.ID).Uint("user_id", userID).Msg("submission deleted")
	return nil
}

func readLimited(file *multipart.FileHeader, maxSize int64) ([]byte, error) {
	handle, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxSize+1)); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(buf.Len()) > maxSize {
		return nil, ErrFileTooLarge
	}
	return buf.Bytes(), nil
}
