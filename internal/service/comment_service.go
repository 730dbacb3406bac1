package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

// CommentService manages the remark thread attached to each submission.
type CommentService interface {
	List(ctx context.Context, actor Principal, submissionID uint) ([]dto.CommentResponse, error)
	Create(ctx context.Context, actor Principal, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
	Update(ctx context.Context, actor Principal, id uint, payload dto.CommentUpdateRequest) (dto.CommentResponse, error)
	Delete(ctx context.Context, actor Principal, id uint) error
}

type commentService struct {
	comments    repository.CommentRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCommentService constructs the comment service.
func NewCommentService(comments repository.CommentRepository, submissions repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) CommentService {
	return &commentService{
		comments:    comments,
		submissions: submissions,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "comment_service").Logger(),
		now:         time.Now,
	}
}

func (s *commentService) List(ctx context.Context, actor Principal, submissionID uint) ([]dto.CommentResponse, error) {
	if _, err := s.authorizeSubmission(ctx, actor, submissionID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentResponseSlice(comments), nil
}

func (s *commentService) Create(ctx context.Context, actor Principal, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}
	content, err := s.clean(payload.Content)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	if _, err := s.authorizeSubmission(ctx, actor, payload.SubmissionID); err != nil {
		return dto.CommentResponse{}, err
	}

	now := s.now().UTC()
	comment := models.SubmissionComment{
		SubmissionID: payload.SubmissionID,
		UserID:       actor.UserID,
		Content:      content,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.comments.Create(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	s.logger.Info().Uint("comment_id", comment.ID).Uint("submission_id", comment.SubmissionID).Msg("comment created")
	return dto.NewCommentResponse(comment), nil
}

func (s *commentService) Update(ctx context.Context, actor Principal, id uint, payload dto.CommentUpdateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}
	content, err := s.clean(payload.Content)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	comment, err := s.authorizeComment(ctx, actor, id)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	comment.Content = content
	comment.UpdatedAt = s.now().UTC()
	if err := s.comments.UpdateContent(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	s.logger.Info().Uint("comment_id", id).Msg("comment updated")
	return dto.NewCommentResponse(comment), nil
}

func (s *commentService) Delete(ctx context.Context, actor Principal, id uint) error {
	if _, err := s.authorizeComment(ctx, actor, id); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	s.logger.Info().Uint("comment_id", id).Msg("comment deleted")
	return nil
}

func (s *commentService) authorizeSubmission(ctx context.Context, actor Principal, submissionID uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	if !actor.CanActFor(submission.UserID) {
		return models.Submission{}, ErrForbidden
	}
	return submission, nil
}

func (s *commentService) authorizeComment(ctx context.Context, actor Principal, id uint) (models.SubmissionComment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SubmissionComment{}, ErrCommentNotFound
		}
		return models.SubmissionComment{}, err
	}
	if !actor.CanActFor(comment.UserID) {
		return models.SubmissionComment{}, ErrForbidden
	}
	return comment, nil
}

// maxCommentRunes matches the size of the content column.
const maxCommentRunes = 500

// clean turns content into the plain text that is stored: tags are dropped and
// the entities the sanitizer emits are decoded again, so "a < b & c" survives
// unchanged. The length bound applies to that final text.
func (s *commentService) clean(content string) (string, error) {
	text := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(content)))
	if text == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(text) > maxCommentRunes {
		return "", ErrContentTooLong
	}
	return text, nil
}
