package dto

import (
	"time"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// SubmissionUploadRequest describes the multipart fields accompanying an upload.
type SubmissionUploadRequest struct {
	RequirementSetID uint `form:"setId"`
	RequirementID    uint `form:"reqId" validate:"required,gt=0"`
	UserID           uint `form:"userId" validate:"required,gt=0"`
}

// ApprovalStatusUpdateRequest sets the review outcome of a submission.
type ApprovalStatusUpdateRequest struct {
	ApprovalStatus *models.ApprovalStatus `json:"approval_status" validate:"required"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID             uint                  `json:"id"`
	UserID         uint                  `json:"user_id"`
	RequirementID  uint                  `json:"requirement_id"`
	FilePath       string                `json:"file_path"`
	ContentType    string                `json:"content_type"`
	ApprovalStatus models.ApprovalStatus `json:"approval_status"`
	StatusLabel    string                `json:"status_label"`
	SubmittedAt    time.Time             `json:"submitted_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:             model.ID,
		UserID:         model.UserID,
		RequirementID:  model.RequirementID,
		FilePath:       model.FilePath,
		ContentType:    model.ContentType,
		ApprovalStatus: model.ApprovalStatus,
		StatusLabel:    model.ApprovalStatus.String(),
		SubmittedAt:    model.SubmittedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// StudentRequirementStatus is the admin view of one student's progress on a requirement.
type StudentRequirementStatus struct {
	RequirementID uint                `json:"requirement_id"`
	Title         string              `json:"title"`
	Submission    *SubmissionResponse `json:"submission"`
}
