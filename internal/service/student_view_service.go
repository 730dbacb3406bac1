package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

// StudentViewService assembles read models joining sets, requirements, submissions and comments.
type StudentViewService interface {
	StudentView(ctx context.Context, actor Principal, userID uint) ([]dto.StudentRequirementSetView, error)
	StudentRequirements(ctx context.Context, setID, userID uint) ([]dto.StudentRequirementStatus, error)
}

type studentViewService struct {
	sets        repository.RequirementSetRepository
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentViewService constructs the read-model service.
func NewStudentViewService(sets repository.RequirementSetRepository, submissions repository.SubmissionRepository, users repository.UserRepository, logger zerolog.Logger) StudentViewService {
	return &studentViewService{
		sets:        sets,
		submissions: submissions,
		users:       users,
		logger:      logger.With().Str("component", "student_view_service").Logger(),
		now:         time.Now,
	}
}

// StudentView lists every set assigned to userID with per-requirement submission state.
func (s *studentViewService) StudentView(ctx context.Context, actor Principal, userID uint) ([]dto.StudentRequirementSetView, error) {
	if !actor.CanActFor(userID) {
		return nil, ErrForbidden
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	sets, err := s.sets.ListAssignedToUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byRequirement, err := s.submissionsFor(ctx, userID, sets...)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]dto.StudentRequirementSetView, 0, len(sets))
	for _, set := range sets {
		view := dto.StudentRequirementSetView{
			ID:           set.ID,
			Title:        set.Title,
			Deadline:     set.Deadline,
			Overdue:      set.IsPastDeadline(now),
			Requirements: make([]dto.StudentRequirementView, 0, len(set.Requirements)),
		}
		for _, requirement := range set.Requirements {
			item := dto.StudentRequirementView{ID: requirement.ID, Title: requirement.Title}
			if submission, ok := byRequirement[requirement.ID]; ok {
				item.Submission = dto.NewStudentSubmissionView(submission)
			}
			view.Requirements = append(view.Requirements, item)
		}
		views = append(views, view)
	}

	return views, nil
}

// StudentRequirements is the administrator's per-student view of one set.
func (s *studentViewService) StudentRequirements(ctx context.Context, setID, userID uint) ([]dto.StudentRequirementStatus, error) {
	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequirementSetNotFound
		}
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	byRequirement, err := s.submissionsFor(ctx, userID, set)
	if err != nil {
		return nil, err
	}

	statuses := make([]dto.StudentRequirementStatus, 0, len(set.Requirements))
	for _, requirement := range set.Requirements {
		status := dto.StudentRequirementStatus{RequirementID: requirement.ID, Title: requirement.Title}
		if submission, ok := byRequirement[requirement.ID]; ok {
			response := dto.NewSubmissionResponse(submission)
			status.Submission = &response
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *studentViewService) ensureUser(ctx context.Context, userID uint) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *studentViewService) submissionsFor(ctx context.Context, userID uint, sets ...models.RequirementSet) (map[uint]models.Submission, error) {
	var requirementIDs []uint
	for _, set := range sets {
		for _, requirement := range set.Requirements {
			requirementIDs = append(requirementIDs, requirement.ID)
		}
	}

	submissions, err := s.submissions.ListForUser(ctx, userID, requirementIDs)
	if err != nil {
		return nil, err
	}

	byRequirement := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byRequirement[submission.RequirementID] = submission
	}
	return byRequirement, nil
}
