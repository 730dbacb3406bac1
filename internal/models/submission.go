package models

import (
	"fmt"
	"time"
)

// ApprovalStatus is the review state of a submission. Missing is never stored;
// it is reported when no submission row exists.
type ApprovalStatus int

const (
	ApprovalStatusMissing ApprovalStatus = iota
	ApprovalStatusPending
	ApprovalStatusApproved
	ApprovalStatusRejected
)

func (s ApprovalStatus) String() string {
	switch s {
	case ApprovalStatusMissing:
		return "Missing"
	case ApprovalStatusPending:
		return "Pending"
	case ApprovalStatusApproved:
		return "Approved"
	case ApprovalStatusRejected:
		return "Rejected"
	default:
		return fmt.Sprintf("ApprovalStatus(%d)", int(s))
	}
}

// IsReviewOutcome reports whether an administrator may set the status directly.
func (s ApprovalStatus) IsReviewOutcome() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// Submission is the current file and review state for one (user, requirement) pair.
type Submission struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	UserID         uint                `gorm:"not null;uniqueIndex:idx_submission_user_requirement" json:"user_id"`
	RequirementID  uint                `gorm:"not null;uniqueIndex:idx_submission_user_requirement;index" json:"requirement_id"`
	FilePath       string              `gorm:"size:512;not null" json:"file_path"`
	ContentType    string              `gorm:"size:128" json:"content_type"`
	ApprovalStatus ApprovalStatus      `gorm:"not null;default:1" json:"approval_status"`
	SubmittedAt    time.Time           `gorm:"not null" json:"submitted_at"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	User           User                `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Requirement    Requirement         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Comments       []SubmissionComment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"comments,omitempty"`
}

// SubmissionComment is a remark attached to a submission.
type SubmissionComment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Content      string    `gorm:"size:500;not null" json:"content"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	User         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
