package models

import "time"

// RequirementSet groups document obligations sharing a single deadline.
type RequirementSet struct {
	ID              uint                 `gorm:"primaryKey" json:"id"`
	Title           string               `gorm:"size:255;not null" json:"title"`
	Deadline        time.Time            `gorm:"not null" json:"deadline"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	Requirements    []Requirement        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"requirements"`
	UserAssignments []UserRequirementSet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsPastDeadline returns true when the reference time is after the deadline.
func (s RequirementSet) IsPastDeadline(reference time.Time) bool {
	return reference.After(s.Deadline)
}

// Requirement is a single named document obligation owned by a set.
type Requirement struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RequirementSetID uint      `gorm:"not null;index" json:"requirement_set_id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserRequirementSet is the assignment edge between a student and a set.
type UserRequirementSet struct {
	UserID           uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RequirementSetID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"requirement_set_id"`
	CreatedAt        time.Time `json:"created_at"`
	User             User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
