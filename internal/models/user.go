package models

import (
	"strings"
	"time"
)

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleStudent      Role = "Student"
	RoleStudentAdmin Role = "StudentAdmin"
	RoleAdmin        Role = "Admin"
)

// ParseRole maps a case-insensitive role name onto the enum.
func ParseRole(value string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "student":
		return RoleStudent, true
	case "studentadmin", "student_admin", "student-admin":
		return RoleStudentAdmin, true
	case "admin":
		return RoleAdmin, true
	default:
		return "", false
	}
}

// IsAdministrative reports whether the role may manage requirement sets and reviews.
func (r Role) IsAdministrative() bool {
	return r == RoleAdmin || r == RoleStudentAdmin
}

func (r Role) String() string {
	return string(r)
}

// User is a scholar or administrator account.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FirstName       string    `gorm:"size:100" json:"first_name"`
	MiddleName      string    `gorm:"size:100" json:"middle_name"`
	LastName        string    `gorm:"size:100;index" json:"last_name"`
	Email           string    `gorm:"size:256;uniqueIndex;not null" json:"email"`
	PasswordHash    string    `gorm:"size:255;not null" json:"-"`
	University      string    `gorm:"size:200" json:"university"`
	Course          string    `gorm:"size:150" json:"course"`
	YearLevel       int       `json:"year_level"`
	Role            Role      `gorm:"size:32;not null;default:Student" json:"role"`
	ProfileImageURL string    `gorm:"size:512" json:"profile_image_url"`
	IsVerified      bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DisplayName joins the non-empty name parts.
func (u User) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
