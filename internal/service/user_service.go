package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

// UserService manages accounts, profiles and roles.
type UserService interface {
	List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error)
	Get(ctx context.Context, actor Principal, id uint) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor Principal, id uint, payload dto.UserProfileUpdateRequest, avatar *multipart.FileHeader) (dto.UserResponse, error)
	ChangeRole(ctx context.Context, actor Principal, id uint, payload dto.UserRoleUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor Principal, id uint) error
}

type userService struct {
	users     repository.UserRepository
	uploader  FileUploader
	validator *validator.Validate
	activity  ActivityRecorder
	sessions  SessionRevocation
	logger    zerolog.Logger
	maxSize   int64
	now       func() time.Time
}

// SessionRevocation ends a user's outstanding sessions when their role changes or
// their account is deleted. A nil Store leaves tokens valid until they expire.
type SessionRevocation struct {
	Store UserTokenRevoker
	// TTL is the token lifetime.
	TTL time.Duration
}

// NewUserService constructs the user service.
func NewUserService(users repository.UserRepository, uploader FileUploader, validate *validator.Validate, activity ActivityRecorder, sessions SessionRevocation, maxSizeMB int, logger zerolog.Logger) UserService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &userService{
		users:     users,
		uploader:  uploader,
		validator: validate,
		activity:  activity,
		sessions:  sessions,
		logger:    logger.With().Str("component", "user_service").Logger(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		now:       time.Now,
	}
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error) {
	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	filter := repository.UserFilter{Search: req.Search, Page: page, PageSize: pageSize}

	if strings.TrimSpace(req.Role) != "" {
		role, ok := models.ParseRole(req.Role)
		if !ok {
			return dto.UserListResponse{}, ErrInvalidRole
		}
		filter.Role = &role
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	return dto.UserListResponse{
		Items:      dto.NewUserResponseSlice(users),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *userService) Get(ctx context.Context, actor Principal, id uint) (dto.UserResponse, error) {
	if !actor.CanActFor(id) {
		return dto.UserResponse{}, ErrForbidden
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor Principal, id uint, payload dto.UserProfileUpdateRequest, avatar *multipart.FileHeader) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}
	if !actor.CanActFor(id) {
		return dto.UserResponse{}, ErrForbidden
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	if email := strings.ToLower(strings.TrimSpace(payload.Email)); email != "" && email != user.Email {
		existing, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != user.ID:
			return dto.UserResponse{}, ErrEmailTaken
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return dto.UserResponse{}, err
		}
		user.Email = email
	}

	applyString(&user.FirstName, payload.FirstName)
	applyString(&user.MiddleName, payload.MiddleName)
	applyString(&user.LastName, payload.LastName)
	applyString(&user.University, payload.University)
	applyString(&user.Course, payload.Course)
	if payload.YearLevel != nil {
		user.YearLevel = *payload.YearLevel
	}

	if avatar != nil {
		image, err := prepareImage(avatar, s.maxSize)
		if err != nil {
			return dto.UserResponse{}, err
		}
		url, err := s.uploader.Upload(ctx, image.Name, bytes.NewReader(image.Content))
		if err != nil {
			return dto.UserResponse{}, fmt.Errorf("%w: %v", ErrUpstreamUpload, err)
		}
		user.ProfileImageURL = url
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("profile updated")
	return dto.NewUserResponse(user), nil
}

// ChangeRole requires an Admin caller who re-confirms their own password.
func (s *userService) ChangeRole(ctx context.Context, actor Principal, id uint, payload dto.UserRoleUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}
	if actor.Role != models.RoleAdmin {
		return dto.UserResponse{}, ErrForbidden
	}

	role, ok := models.ParseRole(payload.Role)
	if !ok {
		return dto.UserResponse{}, ErrInvalidRole
	}

	admin, err := s.find(ctx, actor.UserID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if !passwordMatches(admin.PasswordHash, payload.Password) {
		return dto.UserResponse{}, ErrInvalidCredentials
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	previous := user.Role

	if previous != role {
		if err := s.revokeSessions(ctx, id); err != nil {
			return dto.UserResponse{}, err
		}
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	user.Role = role

	s.logger.Info().Uint("user_id", id).Str("from", previous.String()).Str("to", role.String()).Msg("role changed")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     ActionUserRoleChanged,
		EntityType: "user",
		EntityID:   uintPtr(id),
		Metadata:   map[string]interface{}{"from": previous.String(), "to": role.String()},
	})

	return dto.NewUserResponse(user), nil
}

// Delete removes an account. Callers may delete themselves; administrators may
// delete anyone. Users who authored comments are kept to preserve review history.
func (s *userService) Delete(ctx context.Context, actor Principal, id uint) error {
	if actor.UserID != id && actor.Role != models.RoleAdmin {
		return ErrForbidden
	}

	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	authored, err := s.users.CountAuthoredComments(ctx, id)
	if err != nil {
		return err
	}
	if authored > 0 {
		return ErrUserHasComments
	}

	if err := s.revokeSessions(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", id).Msg("user deleted")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     ActionUserDeleted,
		EntityType: "user",
		EntityID:   uintPtr(id),
	})
	return nil
}

// revokeSessions runs before the write it guards, so a failed write costs at most
// a forced re-login.
func (s *userService) revokeSessions(ctx context.Context, id uint) error {
	if s.sessions.Store == nil {
		return nil
	}
	if err := s.sessions.Store.RevokeUser(ctx, id, s.now(), s.sessions.TTL); err != nil {
		s.logger.Error().Err(err).Uint("user_id", id).Msg("failed to revoke sessions")
		return err
	}
	return nil
}

func (s *userService) find(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func applyString(target *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*target = trimmed
	}
}
