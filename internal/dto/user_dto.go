package dto

import (
	"time"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// UserListRequest filters the user directory.
type UserListRequest struct {
	Page     int
	PageSize int
	Search   string
	Role     string
}

// UserProfileUpdateRequest edits profile fields. Empty strings leave a field untouched.
type UserProfileUpdateRequest struct {
	FirstName  string `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	MiddleName string `json:"middle_name" form:"middle_name" validate:"omitempty,max=100"`
	LastName   string `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
	Email      string `json:"email" form:"email" validate:"omitempty,email"`
	University string `json:"university" form:"university" validate:"omitempty,max=255"`
	Course     string `json:"course" form:"course" validate:"omitempty,max=255"`
	YearLevel  *int   `json:"year_level" form:"year_level" validate:"omitempty,min=1,max=6"`
}

// UserRoleUpdateRequest changes a user's role; the acting admin re-confirms their password.
type UserRoleUpdateRequest struct {
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the full profile returned to the owner and administrators.
type UserResponse struct {
	ID              uint        `json:"id"`
	FirstName       string      `json:"first_name"`
	MiddleName      string      `json:"middle_name"`
	LastName        string      `json:"last_name"`
	Email           string      `json:"email"`
	University      string      `json:"university"`
	Course          string      `json:"course"`
	YearLevel       int         `json:"year_level"`
	Role            models.Role `json:"role"`
	ProfileImageURL string      `json:"profile_image_url"`
	IsVerified      bool        `json:"is_verified"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// UserListResponse wraps a paginated user list.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:              model.ID,
		FirstName:       model.FirstName,
		MiddleName:      model.MiddleName,
		LastName:        model.LastName,
		Email:           model.Email,
		University:      model.University,
		Course:          model.Course,
		YearLevel:       model.YearLevel,
		Role:            model.Role,
		ProfileImageURL: model.ProfileImageURL,
		IsVerified:      model.IsVerified,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// NewUserResponseSlice converts users into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}
