package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

// SeedOptions controls the accounts created by the seeder.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	Students      int
	Domain        string
}

// SeedResult reports what the seeder created.
type SeedResult struct {
	AdminCreated    bool
	StudentsCreated int
}

// SeedService provisions a bootstrap administrator and sample students.
type SeedService interface {
	Seed(ctx context.Context, opts SeedOptions) (SeedResult, error)
}

type seedService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

var (
	seedFirstNames = []string{"Andrea", "Bea", "Carlo", "Dana", "Elijah", "Faye", "Gabriel", "Hana", "Isaac", "Jasmine", "Kyle", "Lara"}
	seedLastNames  = []string{"Aquino", "Bautista", "Castillo", "Dizon", "Estrada", "Flores", "Garcia", "Herrera", "Ilagan", "Jimenez", "Katigbak", "Lopez"}
	seedCourses    = []string{"BS Computer Science", "BS Biology", "BA Economics", "BS Civil Engineering"}
)

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		users:  users,
		logger: logger.With().Str("component", "seed_service").Logger(),
	}
}

// Seed is idempotent: accounts whose email already exists are skipped.
func (s *seedService) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	if strings.TrimSpace(opts.AdminEmail) == "" || opts.AdminPassword == "" {
		return SeedResult{}, errors.New("admin email and password are required")
	}
	domain := strings.TrimSpace(opts.Domain)
	if domain == "" {
		domain = "example.edu"
	}

	var result SeedResult
	created, err := s.ensureUser(ctx, models.User{
		FirstName:  "System",
		LastName:   "Administrator",
		Email:      strings.ToLower(strings.TrimSpace(opts.AdminEmail)),
		Role:       models.RoleAdmin,
		IsVerified: true,
	}, opts.AdminPassword)
	if err != nil {
		return SeedResult{}, err
	}
	result.AdminCreated = created

	for i := 0; i < opts.Students; i++ {
		first := seedFirstNames[i%len(seedFirstNames)]
		last := seedLastNames[(i/len(seedFirstNames)+i)%len(seedLastNames)]
		student := models.User{
			FirstName:  first,
			LastName:   last,
			Email:      fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), i+1, domain),
			University: "State University",
			Course:     seedCourses[i%len(seedCourses)],
			YearLevel:  i%4 + 1,
			Role:       models.RoleStudent,
			IsVerified: true,
		}
		created, err := s.ensureUser(ctx, student, "student123")
		if err != nil {
			return SeedResult{}, err
		}
		if created {
			result.StudentsCreated++
		}
	}

	s.logger.Info().Bool("admin_created", result.AdminCreated).Int("students_created", result.StudentsCreated).Msg("accounts seeded")
	return result, nil
}

func (s *seedService) ensureUser(ctx context.Context, user models.User, password string) (bool, error) {
	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	user.PasswordHash = hash
	if err := s.users.Create(ctx, &user); err != nil {
		return false, err
	}
	return true, nil
}
