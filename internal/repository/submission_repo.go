package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// SubmissionRepository persists the current submission per (user, requirement).
type SubmissionRepository interface {
	Upsert(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByUserAndRequirement(ctx context.Context, userID, requirementID uint) (models.Submission, error)
	ListForUser(ctx context.Context, userID uint, requirementIDs []uint) ([]models.Submission, error)
	UpdateStatus(ctx context.Context, id uint, status models.ApprovalStatus, updatedAt time.Time) (models.Submission, error)
	DeleteByUserAndRequirement(ctx context.Context, userID, requirementID uint) (models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new repository instance.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Upsert writes the submission keyed by (user_id, requirement_id). An existing
// row has its file, status and timestamps overwritten; the last writer wins.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "requirement_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"file_path", "content_type", "approval_status", "submitted_at", "updated_at"}),
	}).Create(submission).Error
	if err != nil {
		return err
	}

	stored, err := r.GetByUserAndRequirement(ctx, submission.UserID, submission.RequirementID)
	if err != nil {
		return err
	}
	*submission = stored
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) GetByUserAndRequirement(ctx context.Context, userID, requirementID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND requirement_id = ?", userID, requirementID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// ListForUser returns the user's submissions for the given requirements with
// comments (and their authors) in creation order.
func (r *submissionRepository) ListForUser(ctx context.Context, userID uint, requirementIDs []uint) ([]models.Submission, error) {
	if len(requirementIDs) == 0 {
		return []models.Submission{}, nil
	}

	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND requirement_id IN ?", userID, requirementIDs).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("submission_comments.created_at ASC").Order("submission_comments.id ASC")
		}).
		Preload("Comments.User").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id uint, status models.ApprovalStatus, updatedAt time.Time) (models.Submission, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"approval_status": status,
			"updated_at":      updatedAt,
		})
	if result.Error != nil {
		return models.Submission{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// DeleteByUserAndRequirement removes the submission and its comments.
func (r *submissionRepository) DeleteByUserAndRequirement(ctx context.Context, userID, requirementID uint) (models.Submission, error) {
	var deleted models.Submission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND requirement_id = ?", userID, requirementID).
			First(&deleted).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id = ?", deleted.ID).Delete(&models.SubmissionComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Submission{}, deleted.ID).Error
	})
	if err != nil {
		return models.Submission{}, err
	}
	return deleted, nil
}

func deleteSubmissionsForRequirements(tx *gorm.DB, requirementIDs []uint) error {
	if len(requirementIDs) == 0 {
		return nil
	}
	submissions := tx.Model(&models.Submission{}).Select("id").Where("requirement_id IN ?", requirementIDs)
	if err := tx.Where("submission_id IN (?)", submissions).Delete(&models.SubmissionComment{}).Error; err != nil {
		return err
	}
	return tx.Where("requirement_id IN ?", requirementIDs).Delete(&models.Submission{}).Error
}

func deleteSubmissionsForUser(tx *gorm.DB, userID uint) error {
	submissions := tx.Model(&models.Submission{}).Select("id").Where("user_id = ?", userID)
	if err := tx.Where("submission_id IN (?)", submissions).Delete(&models.SubmissionComment{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&models.Submission{}).Error
}
