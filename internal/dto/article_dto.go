package dto

import (
	"time"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// ArticleRequest is the multipart form for creating or editing an article.
type ArticleRequest struct {
	Title   string `form:"title" json:"title" validate:"required,max=255"`
	Content string `form:"content" json:"content" validate:"required"`
}

// ArticleListRequest defines pagination and search over articles.
type ArticleListRequest struct {
	Page       int
	PageSize   int
	SearchTerm string
}

// ArticleResponse serializes an article.
type ArticleResponse struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	PictureURL string    `json:"picture_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ArticleListResponse wraps a paginated article list.
type ArticleListResponse struct {
	Items      []ArticleResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewArticleResponse converts an article model into a DTO.
func NewArticleResponse(model models.Article) ArticleResponse {
	return ArticleResponse{
		ID:         model.ID,
		Title:      model.Title,
		Content:    model.Content,
		PictureURL: model.PictureURL,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewArticleResponseSlice converts articles into DTOs.
func NewArticleResponseSlice(articles []models.Article) []ArticleResponse {
	responses := make([]ArticleResponse, 0, len(articles))
	for _, article := range articles {
		responses = append(responses, NewArticleResponse(article))
	}
	return responses
}
