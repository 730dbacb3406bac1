package dto

import (
	"time"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// StudentRequirementSetView is one assigned set in a student's compliance view.
type StudentRequirementSetView struct {
	ID           uint                     `json:"id"`
	Title        string                   `json:"title"`
	Deadline     time.Time                `json:"deadline"`
	Overdue      bool                     `json:"overdue"`
	Requirements []StudentRequirementView `json:"requirements"`
}

// StudentRequirementView annotates a requirement with the student's submission.
// Submission is nil when nothing was uploaded; clients report that as Missing.
type StudentRequirementView struct {
	ID         uint                   `json:"id"`
	Title      string                 `json:"title"`
	Submission *StudentSubmissionView `json:"submission"`
}

// StudentSubmissionView is the submission state shown to the student.
type StudentSubmissionView struct {
	ID             uint                  `json:"id"`
	ApprovalStatus models.ApprovalStatus `json:"approval_status"`
	StatusLabel    string                `json:"status_label"`
	FilePath       string                `json:"file_path"`
	SubmittedAt    time.Time             `json:"submitted_at"`
	Comments       []StudentCommentView  `json:"comments"`
}

// StudentCommentView is a comment with the author's name only.
type StudentCommentView struct {
	ID        uint              `json:"id"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Author    CommentAuthorName `json:"author"`
}

// CommentAuthorName carries just the author's name parts.
type CommentAuthorName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewStudentSubmissionView converts a submission with preloaded comments.
func NewStudentSubmissionView(model models.Submission) *StudentSubmissionView {
	comments := make([]StudentCommentView, 0, len(model.Comments))
	for _, comment := range model.Comments {
		comments = append(comments, StudentCommentView{
			ID:        comment.ID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
			Author: CommentAuthorName{
				FirstName: comment.User.FirstName,
				LastName:  comment.User.LastName,
			},
		})
	}

	return &StudentSubmissionView{
		ID:             model.ID,
		ApprovalStatus: model.ApprovalStatus,
		StatusLabel:    model.ApprovalStatus.String(),
		FilePath:       model.FilePath,
		SubmittedAt:    model.SubmittedAt,
		Comments:       comments,
	}
}
