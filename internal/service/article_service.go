package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

const latestArticleCount = 5

// ArticleService manages site articles.
type ArticleService interface {
	List(ctx context.Context, req dto.ArticleListRequest) (dto.ArticleListResponse, error)
	Latest(ctx context.Context) ([]dto.ArticleResponse, error)
	Get(ctx context.Context, id uint) (dto.ArticleResponse, error)
	Create(ctx context.Context, actor Principal, payload dto.ArticleRequest, image *multipart.FileHeader) (dto.ArticleResponse, error)
	Update(ctx context.Context, actor Principal, id uint, payload dto.ArticleRequest, image *multipart.FileHeader) (dto.ArticleResponse, error)
	Delete(ctx context.Context, actor Principal, id uint) error
}

type articleService struct {
	repo      repository.ArticleRepository
	uploader  FileUploader
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	logger    zerolog.Logger
	maxSize   int64
}

// NewArticleService constructs the article service.
func NewArticleService(repo repository.ArticleRepository, uploader FileUploader, validate *validator.Validate, activity ActivityRecorder, maxSizeMB int, logger zerolog.Logger) ArticleService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &articleService{
		repo:      repo,
		uploader:  uploader,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		activity:  activity,
		logger:    logger.With().Str("component", "article_service").Logger(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
	}
}

func (s *articleService) List(ctx context.Context, req dto.ArticleListRequest) (dto.ArticleListResponse, error) {
	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	articles, total, err := s.repo.List(ctx, repository.ArticleFilter{
		Search:   req.SearchTerm,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.ArticleListResponse{}, err
	}

	return dto.ArticleListResponse{
		Items:      dto.NewArticleResponseSlice(articles),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *articleService) Latest(ctx context.Context) ([]dto.ArticleResponse, error) {
	articles, err := s.repo.Latest(ctx, latestArticleCount)
	if err != nil {
		return nil, err
	}
	return dto.NewArticleResponseSlice(articles), nil
}

func (s *articleService) Get(ctx context.Context, id uint) (dto.ArticleResponse, error) {
	article, err := s.find(ctx, id)
	if err != nil {
		return dto.ArticleResponse{}, err
	}
	return dto.NewArticleResponse(article), nil
}

func (s *articleService) Create(ctx context.Context, actor Principal, payload dto.ArticleRequest, image *multipart.FileHeader) (dto.ArticleResponse, error) {
	title, content, err := s.normalize(payload)
	if err != nil {
		return dto.ArticleResponse{}, err
	}

	article := models.Article{Title: title, Content: content}
	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return dto.ArticleResponse{}, err
		}
		article.PictureURL = url
	}

	if err := s.repo.Create(ctx, &article); err != nil {
		return dto.ArticleResponse{}, err
	}

	s.logger.Info().Uint("article_id", article.ID).Msg("article created")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     ActionArticlePublished,
		EntityType: "article",
		EntityID:   uintPtr(article.ID),
		Metadata:   map[string]interface{}{"title": article.Title},
	})
	return dto.NewArticleResponse(article), nil
}

func (s *articleService) Update(ctx context.Context, actor Principal, id uint, payload dto.ArticleRequest, image *multipart.FileHeader) (dto.ArticleResponse, error) {
	title, content, err := s.normalize(payload)
	if err != nil {
		return dto.ArticleResponse{}, err
	}

	article, err := s.find(ctx, id)
	if err != nil {
		return dto.ArticleResponse{}, err
	}

	article.Title = title
	article.Content = content
	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return dto.ArticleResponse{}, err
		}
		article.PictureURL = url
	}

	if err := s.repo.Update(ctx, &article); err != nil {
		return dto.ArticleResponse{}, err
	}

	s.logger.Info().Uint("article_id", article.ID).Uint("editor_id", actor.UserID).Msg("article updated")
	return dto.NewArticleResponse(article), nil
}

func (s *articleService) Delete(ctx context.Context, actor Principal, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}

	s.logger.Info().Uint("article_id", id).Msg("article deleted")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     ActionArticleDeleted,
		EntityType: "article",
		EntityID:   uintPtr(id),
	})
	return nil
}

func (s *articleService) normalize(payload dto.ArticleRequest) (string, string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return "", "", ErrTitleRequired
	}
	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return "", "", ErrEmptyContent
	}
	return title, content, nil
}

func (s *articleService) uploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	image, err := prepareImage(file, s.maxSize)
	if err != nil {
		return "", err
	}
	url, err := s.uploader.Upload(ctx, image.Name, bytes.NewReader(image.Content))
	if err != nil {
		s.logger.Error().Err(err).Msg("article image upload failed")
		return "", fmt.Errorf("%w: %v", ErrUpstreamUpload, err)
	}
	return url, nil
}

func (s *articleService) find(ctx context.Context, id uint) (models.Article, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Article{}, ErrArticleNotFound
		}
		return models.Article{}, err
	}
	return article, nil
}
