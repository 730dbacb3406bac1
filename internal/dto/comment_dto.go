package dto

import (
	"time"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// CommentCreateRequest posts a remark on a submission.
type CommentCreateRequest struct {
	SubmissionID uint   `json:"submission_id" validate:"required,gt=0"`
	Content      string `json:"content" validate:"max=4000"`
}

// CommentUpdateRequest replaces the content of a remark.
type CommentUpdateRequest struct {
	Content string `json:"content" validate:"max=4000"`
}

// CommentAuthor is the author projection embedded in comment responses.
type CommentAuthor struct {
	UserID          uint   `json:"user_id"`
	FirstName       string `json:"first_name"`
	MiddleName      string `json:"middle_name"`
	LastName        string `json:"last_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// CommentResponse serializes a submission comment.
type CommentResponse struct {
	ID           uint          `json:"id"`
	SubmissionID uint          `json:"submission_id"`
	Content      string        `json:"content"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Author       CommentAuthor `json:"author"`
}

// NewCommentResponse converts a comment and its preloaded author into a DTO.
func NewCommentResponse(model models.SubmissionComment) CommentResponse {
	return CommentResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		Content:      model.Content,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
		Author: CommentAuthor{
			UserID:          model.UserID,
			FirstName:       model.User.FirstName,
			MiddleName:      model.User.MiddleName,
			LastName:        model.User.LastName,
			ProfileImageURL: model.User.ProfileImageURL,
		},
	}
}

// NewCommentResponseSlice converts comments into DTOs.
func NewCommentResponseSlice(comments []models.SubmissionComment) []CommentResponse {
	responses := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, NewCommentResponse(comment))
	}
	return responses
}
