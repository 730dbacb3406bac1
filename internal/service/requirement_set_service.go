package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

// RequirementSetService manages requirement sets and their items.
type RequirementSetService interface {
	List(ctx context.Context, req dto.RequirementSetListRequest) (dto.RequirementSetListResponse, error)
	ListSimple(ctx context.Context) ([]dto.RequirementSetSummary, error)
	Get(ctx context.Context, id uint) (dto.RequirementSetResponse, error)
	Create(ctx context.Context, actor Principal, payload dto.RequirementSetRequest) (dto.RequirementSetResponse, error)
	Update(ctx context.Context, actor Principal, id uint, payload dto.RequirementSetRequest) (dto.RequirementSetResponse, error)
	Delete(ctx context.Context, actor Principal, id uint) error
}

type requirementSetService struct {
	repo      repository.RequirementSetRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewRequirementSetService builds a new requirement set service.
func NewRequirementSetService(repo repository.RequirementSetRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) RequirementSetService {
	return &requirementSetService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "requirement_set_service").Logger(),
	}
}

func (s *requirementSetService) List(ctx context.Context, req dto.RequirementSetListRequest) (dto.RequirementSetListResponse, error) {
	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	search := strings.TrimSpace(req.SearchTerm)

	sets, total, err := s.repo.List(ctx, repository.RequirementSetFilter{
		Search:   search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.RequirementSetListResponse{}, err
	}

	return dto.RequirementSetListResponse{
		Items:      dto.NewRequirementSetResponseSlice(sets),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
		Search:     search,
	}, nil
}

func (s *requirementSetService) ListSimple(ctx context.Context) ([]dto.RequirementSetSummary, error) {
	sets, err := s.repo.ListSimple(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewRequirementSetSummarySlice(sets), nil
}

func (s *requirementSetService) Get(ctx context.Context, id uint) (dto.RequirementSetResponse, error) {
	set, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequirementSetResponse{}, ErrRequirementSetNotFound
		}
		return dto.RequirementSetResponse{}, err
	}
	return dto.NewRequirementSetResponse(set), nil
}

func (s *requirementSetService) Create(ctx context.Context, actor Principal, payload dto.RequirementSetRequest) (dto.RequirementSetResponse, error) {
	title, deadline, titles, err := s.normalize(payload)
	if err != nil {
		return dto.RequirementSetResponse{}, err
	}

	set := models.RequirementSet{Title: title, Deadline: deadline}
	for _, requirement := range titles {
		set.Requirements = append(set.Requirements, models.Requirement{Title: requirement})
	}

	if err := s.repo.Create(ctx, &set); err != nil {
		return dto.RequirementSetResponse{}, err
	}

	created, err := s.repo.GetByID(ctx, set.ID)
	if err != nil {
		return dto.RequirementSetResponse{}, err
	}

	s.logger.Info().Uint("requirement_set_id", created.ID).Int("requirements", len(created.Requirements)).Msg("requirement set created")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     ActionRequirementSetCreated,
		EntityType: "requirement_set",
		EntityID:   uintPtr(created.ID),
		Metadata:   map[string]interface{}{"title": created.Title},
	})

	return dto.NewRequirementSetResponse(created), nil
}

func (s *requirementSetService) Update(ctx context.Context, actor Principal, id uint, payload dto.RequirementSetRequest) (dto.RequirementSetResponse, error) {
	title, deadline, titles, err := s.normalize(payload)
	if err != nil {
		return dto.RequirementSetResponse{}, err
	}

	updated, err := s.repo.Replace(ctx, id, title, deadline, titles)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequirementSetResponse{}, ErrRequirementSetNotFound
		}
		return dto.RequirementSetResponse{}, err
	}

	s.logger.Info().Uint("requirement_set_id", id).Msg("requirement set updated")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     ActionRequirementSetUpdated,
		EntityType: "requirement_set",
		EntityID:   uintPtr(id),
		Metadata:   map[string]interface{}{"title": updated.Title, "requirements": len(updated.Requirements)},
	})

	return dto.NewRequirementSetResponse(updated), nil
}

func (s *requirementSetService) Delete(ctx context.Context, actor Principal, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequirementSetNotFound
		}
		return err
	}

	s.logger.Info().Uint("requirement_set_id", id).Msg("requirement set deleted")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     ActionRequirementSetDeleted,
		EntityType: "requirement_set",
		EntityID:   uintPtr(id),
	})
	return nil
}

func (s *requirementSetService) normalize(payload dto.RequirementSetRequest) (string, time.Time, []string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return "", time.Time{}, nil, err
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return "", time.Time{}, nil, ErrTitleRequired
	}

	titles := make([]string, 0, len(payload.Requirements))
	for _, requirement := range payload.Requirements {
		if trimmed := strings.TrimSpace(requirement); trimmed != "" {
			titles = append(titles, trimmed)
		}
	}
	if len(titles) == 0 {
		return "", time.Time{}, nil, ErrEmptyRequirementList
	}

	deadline, err := ParseDeadline(payload.Deadline)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	return title, deadline, titles, nil
}

// ParseDeadline accepts an RFC3339 timestamp or a calendar date, which is read as midnight UTC.
func ParseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDeadline
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, ErrInvalidDeadline
}
