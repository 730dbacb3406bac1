package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// CommentRepository persists submission comments.
type CommentRepository interface {
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.SubmissionComment, error)
	GetByID(ctx context.Context, id uint) (models.SubmissionComment, error)
	Create(ctx context.Context, comment *models.SubmissionComment) error
	UpdateContent(ctx context.Context, comment *models.SubmissionComment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository constructs a comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.SubmissionComment, error) {
	var comments []models.SubmissionComment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (models.SubmissionComment, error) {
	var comment models.SubmissionComment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return models.SubmissionComment{}, err
	}
	return comment, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.SubmissionComment) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(comment).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(comment, comment.ID).Error
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *models.SubmissionComment) error {
	return r.db.WithContext(ctx).
		Model(comment).
		Updates(map[string]interface{}{
			"content":    comment.Content,
			"updated_at": comment.UpdatedAt,
		}).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.SubmissionComment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
