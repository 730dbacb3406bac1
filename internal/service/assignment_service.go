package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

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

// AssignmentService reconciles which students must comply with a requirement set.
type AssignmentService interface {
	Assign(ctx context.Context, actor Principal, setID uint, payload dto.AssignStudentsRequest) (dto.AssignStudentsResponse, error)
	AssignedStudentIDs(ctx context.Context, setID uint, search string) (dto.AssignedStudentIDsResponse, error)
	Roster(ctx context.Context, setID uint, req dto.RosterListRequest) (dto.RosterListResponse, error)
}

type assignmentService struct {
	sets        repository.RequirementSetRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(
	sets repository.RequirementSetRepository,
	assignments repository.AssignmentRepository,
	users repository.UserRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		sets:        sets,
		assignments: assignments,
		users:       users,
		validator:   validate,
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/scholartrack-api/internal/service/assignment"),
		now:         time.Now,
	}
}

// assignableRoles lists the roles that carry student obligations. A StudentAdmin
// is still an enrolled scholar; an Admin is staff only.
var assignableRoles = []models.Role{models.RoleStudent, models.RoleStudentAdmin}

func (s *assignmentService) Assign(ctx context.Context, actor Principal, setID uint, payload dto.AssignStudentsRequest) (dto.AssignStudentsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.Int("assignment.set_id", int(setID)),
		attribute.Int("assignment.requested", len(payload.StudentIDs)),
	)

	if len(payload.StudentIDs) == 0 {
		span.SetStatus(codes.Error, "empty student list")
		return dto.AssignStudentsResponse{}, ErrEmptyStudentList
	}
	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.AssignStudentsResponse{}, err
	}

	if _, err := s.sets.GetByID(ctx, setID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "set not found")
			return dto.AssignStudentsResponse{}, ErrRequirementSetNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "set lookup failed")
		return dto.AssignStudentsResponse{}, err
	}

	target := uniqueIDs(payload.StudentIDs)
	existing, err := s.users.CountExisting(ctx, target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user lookup failed")
		return dto.AssignStudentsResponse{}, err
	}
	if existing != int64(len(target)) {
		span.SetStatus(codes.Error, "unknown student")
		return dto.AssignStudentsResponse{}, ErrUserNotFound
	}
	students, err := s.users.CountExisting(ctx, target, assignableRoles...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user lookup failed")
		return dto.AssignStudentsResponse{}, err
	}
	if students != existing {
		span.SetStatus(codes.Error, "non-student assignee")
		return dto.AssignStudentsResponse{}, ErrNotAStudent
	}

	diff, err := s.assignments.Reconcile(ctx, setID, target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconcile failed")
		return dto.AssignStudentsResponse{}, err
	}

	observability.AssignmentChanges().WithLabelValues("added").Add(float64(len(diff.Added)))
	observability.AssignmentChanges().WithLabelValues("removed").Add(float64(len(diff.Removed)))
	span.SetAttributes(
		attribute.Int("assignment.added", len(diff.Added)),
		attribute.Int("assignment.removed", len(diff.Removed)),
	)
	span.SetStatus(codes.Ok, "reconciled")

	s.logger.Info().
		Uint("requirement_set_id", setID).
		Int("added", len(diff.Added)).
		Int("removed", len(diff.Removed)).
		Msg("students assigned")

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     ActionStudentsAssigned,
		EntityType: "requirement_set",
		EntityID:   uintPtr(setID),
		Metadata: map[string]interface{}{
			"added":   diff.Added,
			"removed": diff.Removed,
		},
	})
	publishEvent(ctx, s.events, s.logger, SubjectRequirementSetAssigned, RequirementSetAssignedEvent{
		RequirementSetID: setID,
		Added:            diff.Added,
		Removed:          diff.Removed,
		AssignedAt:       s.now().UTC(),
	})

	return dto.AssignStudentsResponse{
		RequirementSetID: setID,
		Added:            diff.Added,
		Removed:          diff.Removed,
		Total:            diff.Total,
	}, nil
}

func (s *assignmentService) AssignedStudentIDs(ctx context.Context, setID uint, search string) (dto.AssignedStudentIDsResponse, error) {
	if err := s.ensureSet(ctx, setID); err != nil {
		return dto.AssignedStudentIDsResponse{}, err
	}

	ids, err := s.assignments.ListUserIDs(ctx, setID, strings.TrimSpace(search))
	if err != nil {
		return dto.AssignedStudentIDsResponse{}, err
	}
	if ids == nil {
		ids = []uint{}
	}

	return dto.AssignedStudentIDsResponse{Total: int64(len(ids)), StudentIDs: ids}, nil
}

func (s *assignmentService) Roster(ctx context.Context, setID uint, req dto.RosterListRequest) (dto.RosterListResponse, error) {
	if err := s.ensureSet(ctx, setID); err != nil {
		return dto.RosterListResponse{}, err
	}

	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	users, total, err := s.assignments.Roster(ctx, setID, repository.RosterFilter{
		Search:    req.Search,
		YearLevel: req.YearLevel,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return dto.RosterListResponse{}, err
	}

	return dto.RosterListResponse{
		Items:      dto.NewRosterStudentResponseSlice(users),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *assignmentService) ensureSet(ctx context.Context, setID uint) error {
	if _, err := s.sets.GetByID(ctx, setID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequirementSetNotFound
		}
		return err
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}
