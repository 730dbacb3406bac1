package repository

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// RosterFilter narrows the roster of students assigned to a set.
type RosterFilter struct {
	Search    string
	YearLevel *int
	Page      int
	PageSize  int
}

// AssignmentDiff reports the edges touched by a reconciliation.
type AssignmentDiff struct {
	Added   []uint
	Removed []uint
	Total   int
}

// AssignmentRepository persists user <-> requirement set edges.
type AssignmentRepository interface {
	ListUserIDs(ctx context.Context, setID uint, search string) ([]uint, error)
	Reconcile(ctx context.Context, setID uint, target []uint) (AssignmentDiff, error)
	Roster(ctx context.Context, setID uint, filter RosterFilter) ([]models.User, int64, error)
	IsAssigned(ctx context.Context, setID, userID uint) (bool, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListUserIDs(ctx context.Context, setID uint, search string) ([]uint, error) {
	query := r.db.WithContext(ctx).
		Model(&models.UserRequirementSet{}).
		Where("user_requirement_sets.requirement_set_id = ?", setID)

	if search = strings.TrimSpace(search); search != "" {
		query = query.Joins("JOIN users ON users.id = user_requirement_sets.user_id")
		query = applyNameSearch(query, search)
	}

	var ids []uint
	if err := query.Order("user_requirement_sets.user_id ASC").
		Pluck("user_requirement_sets.user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Reconcile makes the edge set of setID equal to target in one transaction.
func (r *assignmentRepository) Reconcile(ctx context.Context, setID uint, target []uint) (AssignmentDiff, error) {
	var diff AssignmentDiff
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []uint
		if err := tx.Model(&models.UserRequirementSet{}).
			Where("requirement_set_id = ?", setID).
			Pluck("user_id", &current).Error; err != nil {
			return err
		}

		wanted := make(map[uint]struct{}, len(target))
		for _, id := range target {
			wanted[id] = struct{}{}
		}
		existing := make(map[uint]struct{}, len(current))
		for _, id := range current {
			existing[id] = struct{}{}
		}

		toAdd := make([]uint, 0)
		for id := range wanted {
			if _, ok := existing[id]; !ok {
				toAdd = append(toAdd, id)
			}
		}
		toRemove := make([]uint, 0)
		for id := range existing {
			if _, ok := wanted[id]; !ok {
				toRemove = append(toRemove, id)
			}
		}
		sort.Slice(toAdd, func(i, j int) bool { return toAdd[i] < toAdd[j] })
		sort.Slice(toRemove, func(i, j int) bool { return toRemove[i] < toRemove[j] })

		if len(toRemove) > 0 {
			if err := tx.Where("requirement_set_id = ? AND user_id IN ?", setID, toRemove).
				Delete(&models.UserRequirementSet{}).Error; err != nil {
				return err
			}
		}

		if len(toAdd) > 0 {
			edges := make([]models.UserRequirementSet, 0, len(toAdd))
			for _, id := range toAdd {
				edges = append(edges, models.UserRequirementSet{UserID: id, RequirementSetID: setID})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error; err != nil {
				return err
			}
		}

		diff = AssignmentDiff{Added: toAdd, Removed: toRemove, Total: len(wanted)}
		return nil
	})
	if err != nil {
		return AssignmentDiff{}, err
	}
	return diff, nil
}

func (r *assignmentRepository) Roster(ctx context.Context, setID uint, filter RosterFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN user_requirement_sets ON user_requirement_sets.user_id = users.id").
		Where("user_requirement_sets.requirement_set_id = ?", setID)

	if search := strings.TrimSpace(filter.Search); search != "" {
		query = applyNameSearch(query, search)
	}
	if filter.YearLevel != nil {
		query = query.Where("users.year_level = ?", *filter.YearLevel)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var users []models.User
	if err := query.
		Select("users.id", "users.first_name", "users.middle_name", "users.last_name", "users.year_level", "users.profile_image_url").
		Order("users.last_name ASC").
		Order("users.first_name ASC").
		Order("users.id ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *assignmentRepository) IsAssigned(ctx context.Context, setID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserRequirementSet{}).
		Where("requirement_set_id = ? AND user_id = ?", setID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyNameSearch(query *gorm.DB, search string) *gorm.DB {
	pattern := "%" + strings.ToLower(search) + "%"
	return query.Where(
		"LOWER(users.first_name) LIKE ? OR LOWER(users.middle_name) LIKE ? OR LOWER(users.last_name) LIKE ?",
		pattern, pattern, pattern,
	)
}
