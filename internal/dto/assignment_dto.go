package dto

import "github.com/noah-isme/scholartrack-api/internal/models"

// AssignStudentsRequest carries the complete desired membership of a set.
type AssignStudentsRequest struct {
	StudentIDs []uint `json:"student_ids" validate:"dive,gt=0"`
}

// AssignStudentsResponse reports what a reconciliation changed.
type AssignStudentsResponse struct {
	RequirementSetID uint   `json:"requirement_set_id"`
	Added            []uint `json:"added"`
	Removed          []uint `json:"removed"`
	Total            int    `json:"total"`
}

// AssignedStudentIDsResponse lists the ids currently assigned to a set.
type AssignedStudentIDsResponse struct {
	Total      int64  `json:"total"`
	StudentIDs []uint `json:"student_ids"`
}

// RosterListRequest filters the assigned-student roster of a set.
type RosterListRequest struct {
	Page      int
	PageSize  int
	Search    string
	YearLevel *int
}

// RosterStudentResponse is the minimal profile projection used in rosters.
type RosterStudentResponse struct {
	ID              uint   `json:"id"`
	FirstName       string `json:"first_name"`
	MiddleName      string `json:"middle_name"`
	LastName        string `json:"last_name"`
	YearLevel       int    `json:"year_level"`
	ProfileImageURL string `json:"profile_image_url"`
}

// RosterListResponse wraps a paginated roster.
type RosterListResponse struct {
	Items      []RosterStudentResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}

// NewRosterStudentResponse converts a user into the roster projection.
func NewRosterStudentResponse(user models.User) RosterStudentResponse {
	return RosterStudentResponse{
		ID:              user.ID,
		FirstName:       user.FirstName,
		MiddleName:      user.MiddleName,
		LastName:        user.LastName,
		YearLevel:       user.YearLevel,
		ProfileImageURL: user.ProfileImageURL,
	}
}

// NewRosterStudentResponseSlice converts users into roster entries.
func NewRosterStudentResponseSlice(users []models.User) []RosterStudentResponse {
	responses := make([]RosterStudentResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewRosterStudentResponse(user))
	}
	return responses
}
