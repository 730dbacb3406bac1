package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
)

func TestArticleHandlerPublishing(t *testing.T) {
	env := newTestApp(t)
	admin := env.createUser(t, "Ada", "Admin", models.RoleAdmin)
	student := env.createUser(t, "Sam", "Student", models.RoleStudent)

	fields := map[string]string{"title": "Scholarship renewal", "content": "Submit Form A before June."}

	resp, _ := env.do(t, multipartRequest(t, http.MethodPost, "/api/articles", fields, "", "", nil), nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, multipartRequest(t, http.MethodPost, "/api/articles", fields, "", "", nil), &student)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, multipartRequest(t, http.MethodPost, "/api/articles", fields, "image", "cover.png", pngBytes(t)), &admin)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
	var article dto.ArticleResponse
	decodeData(t, body, &article)
	require.Equal(t, "Scholarship renewal", article.Title)
	require.NotEmpty(t, article.PictureURL)

	resp, body = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/articles/%d", article.ID), nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = env.doJSON(t, http.MethodGet, "/api/articles?page=1&pageSize=5", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var articles []dto.ArticleResponse
	decodeData(t, body, &articles)
	require.Len(t, articles, 1)

	resp, _ = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/articles/%d", article.ID), nil, &admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/articles/%d", article.ID), nil, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "article not found", body.Message)
}
