package dto

import (
	"time"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// RequirementSetRequest is the create/replace payload for a requirement set.
type RequirementSetRequest struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Deadline     string   `json:"deadline" validate:"required"`
	Requirements []string `json:"requirements" validate:"dive,max=255"`
}

// RequirementSetListRequest defines pagination and search for requirement sets.
type RequirementSetListRequest struct {
	Page       int
	PageSize   int
	SearchTerm string
}

// RequirementResponse serializes a single requirement item.
type RequirementResponse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// RequirementSetResponse serializes a requirement set with its items.
type RequirementSetResponse struct {
	ID           uint                  `json:"id"`
	Title        string                `json:"title"`
	Deadline     time.Time             `json:"deadline"`
	Requirements []RequirementResponse `json:"requirements"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// RequirementSetListResponse wraps a paginated requirement set list.
type RequirementSetListResponse struct {
	Items      []RequirementSetResponse `json:"items"`
	Pagination PaginationMeta           `json:"pagination"`
	Search     string                   `json:"search,omitempty"`
}

// RequirementSetSummary is the unpaginated id/title/deadline projection.
type RequirementSetSummary struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
}

// NewRequirementSetResponse converts a model into a DTO.
func NewRequirementSetResponse(model models.RequirementSet) RequirementSetResponse {
	requirements := make([]RequirementResponse, 0, len(model.Requirements))
	for _, requirement := range model.Requirements {
		requirements = append(requirements, RequirementResponse{ID: requirement.ID, Title: requirement.Title})
	}

	return RequirementSetResponse{
		ID:           model.ID,
		Title:        model.Title,
		Deadline:     model.Deadline,
		Requirements: requirements,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewRequirementSetResponseSlice converts a slice of models into DTOs.
func NewRequirementSetResponseSlice(sets []models.RequirementSet) []RequirementSetResponse {
	responses := make([]RequirementSetResponse, 0, len(sets))
	for _, set := range sets {
		responses = append(responses, NewRequirementSetResponse(set))
	}
	return responses
}

// NewRequirementSetSummarySlice projects sets onto id/title/deadline.
func NewRequirementSetSummarySlice(sets []models.RequirementSet) []RequirementSetSummary {
	summaries := make([]RequirementSetSummary, 0, len(sets))
	for _, set := range sets {
		summaries = append(summaries, RequirementSetSummary{ID: set.ID, Title: set.Title, Deadline: set.Deadline})
	}
	return summaries
}
