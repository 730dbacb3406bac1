package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

// TokenClaims is the JWT payload issued at login.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// AuthService registers accounts and issues or revokes bearer tokens.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users      repository.UserRepository
	revocation TokenRevocationStore
	validator  *validator.Validate
	cfg        AuthConfig
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService constructs the auth service. revocation may be nil, in which
// case logout is a no-op and tokens live until they expire.
func NewAuthService(users repository.UserRepository, revocation TokenRevocationStore, validate *validator.Validate, cfg AuthConfig, logger zerolog.Logger) AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "scholartrack-api"
	}
	return &authService{
		users:      users,
		revocation: revocation,
		validator:  validate,
		cfg:        cfg,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	payload = normalizeRegistration(payload)
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := payload.Email
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		FirstName:    payload.FirstName,
		MiddleName:   payload.MiddleName,
		LastName:     payload.LastName,
		Email:        email,
		PasswordHash: hash,
		University:   payload.University,
		Course:       payload.Course,
		YearLevel:    payload.YearLevel,
		Role:         models.RoleStudent,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("email", maskEmailAddress(user.Email)).Msg("user registered")
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	payload.Email = normalizeEmail(payload.Email)
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Str("email", maskEmailAddress(payload.Email)).Msg("login rejected: unknown email")
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}
	if !passwordMatches(user.PasswordHash, payload.Password) {
		s.logger.Warn().Uint("user_id", user.ID).Msg("login rejected")
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revocation == nil {
		s.logger.Debug().Msg("token revocation disabled")
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if err := s.revocation.Revoke(ctx, tokenID, ttl); err != nil {
		return err
	}
	s.logger.Info().Str("token_id", tokenID).Msg("token revoked")
	return nil
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) issue(user models.User) (dto.AuthResponse, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.cfg.TTL)
	claims := TokenClaims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

// normalizeRegistration trims every text field and lowercases the email so
// validation sees the values that will be stored.
func normalizeRegistration(payload dto.RegisterRequest) dto.RegisterRequest {
	payload.FirstName = strings.TrimSpace(payload.FirstName)
	payload.MiddleName = strings.TrimSpace(payload.MiddleName)
	payload.LastName = strings.TrimSpace(payload.LastName)
	payload.Email = normalizeEmail(payload.Email)
	payload.University = strings.TrimSpace(payload.University)
	payload.Course = strings.TrimSpace(payload.Course)
	return payload
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
