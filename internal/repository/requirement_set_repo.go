package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// RequirementSetFilter describes pagination & search options.
type RequirementSetFilter struct {
	Search   string
	Page     int
	PageSize int
}

// RequirementSetRepository defines persistence operations for requirement sets.
type RequirementSetRepository interface {
	List(ctx context.Context, filter RequirementSetFilter) ([]models.RequirementSet, int64, error)
	ListSimple(ctx context.Context) ([]models.RequirementSet, error)
	ListAssignedToUser(ctx context.Context, userID uint) ([]models.RequirementSet, error)
	GetByID(ctx context.Context, id uint) (models.RequirementSet, error)
	GetRequirement(ctx context.Context, id uint) (models.Requirement, error)
	Create(ctx context.Context, set *models.RequirementSet) error
	Replace(ctx context.Context, id uint, title string, deadline time.Time, requirementTitles []string) (models.RequirementSet, error)
	Delete(ctx context.Context, id uint) error
}

type requirementSetRepository struct {
	db *gorm.DB
}

// NewRequirementSetRepository instantiates a GORM-backed repository.
func NewRequirementSetRepository(db *gorm.DB) RequirementSetRepository {
	return &requirementSetRepository{db: db}
}

func preloadRequirements(db *gorm.DB) *gorm.DB {
	return db.Order("requirements.id ASC")
}

func (r *requirementSetRepository) List(ctx context.Context, filter RequirementSetFilter) ([]models.RequirementSet, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RequirementSet{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"requirement_sets.title LIKE ? OR EXISTS (SELECT 1 FROM requirements WHERE requirements.requirement_set_id = requirement_sets.id AND requirements.title LIKE ?)",
			pattern, pattern,
		)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var sets []models.RequirementSet
	if err := query.Preload("Requirements", preloadRequirements).
		Order("requirement_sets.deadline ASC").
		Order("requirement_sets.id ASC").
		Find(&sets).Error; err != nil {
		return nil, 0, err
	}

	return sets, total, nil
}

func (r *requirementSetRepository) ListSimple(ctx context.Context) ([]models.RequirementSet, error) {
	var sets []models.RequirementSet
	if err := r.db.WithContext(ctx).
		Select("id", "title", "deadline").
		Order("deadline ASC").
		Order("id ASC").
		Find(&sets).Error; err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *requirementSetRepository) ListAssignedToUser(ctx context.Context, userID uint) ([]models.RequirementSet, error) {
	var sets []models.RequirementSet
	err := r.db.WithContext(ctx).
		Joins("JOIN user_requirement_sets ON user_requirement_sets.requirement_set_id = requirement_sets.id").
		Where("user_requirement_sets.user_id = ?", userID).
		Preload("Requirements", preloadRequirements).
		Order("requirement_sets.deadline ASC").
		Order("requirement_sets.id ASC").
		Find(&sets).Error
	if err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *requirementSetRepository) GetByID(ctx context.Context, id uint) (models.RequirementSet, error) {
	var set models.RequirementSet
	if err := r.db.WithContext(ctx).
		Preload("Requirements", preloadRequirements).
		First(&set, id).Error; err != nil {
		return models.RequirementSet{}, err
	}
	return set, nil
}

func (r *requirementSetRepository) GetRequirement(ctx context.Context, id uint) (models.Requirement, error) {
	var requirement models.Requirement
	if err := r.db.WithContext(ctx).First(&requirement, id).Error; err != nil {
		return models.Requirement{}, err
	}
	return requirement, nil
}

func (r *requirementSetRepository) Create(ctx context.Context, set *models.RequirementSet) error {
	return r.db.WithContext(ctx).Create(set).Error
}

// Replace updates title and deadline and reconciles requirement rows by title.
// Requirements whose title survives keep their id and submissions.
func (r *requirementSetRepository) Replace(ctx context.Context, id uint, title string, deadline time.Time, requirementTitles []string) (models.RequirementSet, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var set models.RequirementSet
		if err := tx.Preload("Requirements", preloadRequirements).First(&set, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&set).Updates(map[string]interface{}{
			"title":    title,
			"deadline": deadline,
		}).Error; err != nil {
			return err
		}

		remaining := make(map[string][]uint, len(set.Requirements))
		for _, requirement := range set.Requirements {
			remaining[requirement.Title] = append(remaining[requirement.Title], requirement.ID)
		}

		var created []models.Requirement
		for _, wanted := range requirementTitles {
			if ids := remaining[wanted]; len(ids) > 0 {
				remaining[wanted] = ids[1:]
				continue
			}
			created = append(created, models.Requirement{RequirementSetID: set.ID, Title: wanted})
		}

		var stale []uint
		for _, ids := range remaining {
			stale = append(stale, ids...)
		}
		if len(stale) > 0 {
			if err := deleteSubmissionsForRequirements(tx, stale); err != nil {
				return err
			}
			if err := tx.Where("id IN ?", stale).Delete(&models.Requirement{}).Error; err != nil {
				return err
			}
		}

		if len(created) > 0 {
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.RequirementSet{}, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes a set with its requirements, their submissions and comments, and all assignment edges.
func (r *requirementSetRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var requirementIDs []uint
		if err := tx.Model(&models.Requirement{}).Where("requirement_set_id = ?", id).Pluck("id", &requirementIDs).Error; err != nil {
			return err
		}

		if err := deleteSubmissionsForRequirements(tx, requirementIDs); err != nil {
			return err
		}
		if err := tx.Where("requirement_set_id = ?", id).Delete(&models.Requirement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("requirement_set_id = ?", id).Delete(&models.UserRequirementSet{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.RequirementSet{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
