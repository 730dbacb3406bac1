package handler_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
)

func TestCommentHandlerLifecycle(t *testing.T) {
	env := newTestApp(t)
	admin := env.createUser(t, "Ada", "Admin", models.RoleAdmin)
	student := env.createUser(t, "Sam", "Student", models.RoleStudent)
	other := env.createUser(t, "Olga", "Other", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A")

	req := multipartRequest(t, http.MethodPost, "/api/submissions", uploadFields(set, set.Requirements[0].ID, student.ID), "file", "form-a.pdf", pdfBytes)
	resp, body := env.do(t, req, &student)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
	var submission dto.SubmissionResponse
	decodeData(t, body, &submission)

	resp, body = env.doJSON(t, http.MethodPost, "/api/submission-comments", map[string]interface{}{
		"submission_id": submission.ID,
		"content":       "<b></b>   ",
	}, &admin)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "content must not be empty", body.Message)

	resp, body = env.doJSON(t, http.MethodPost, "/api/submission-comments", map[string]interface{}{
		"submission_id": submission.ID,
		"content":       strings.Repeat("&", 501),
	}, &admin)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "content must be at most 500 characters", body.Message)

	resp, body = env.doJSON(t, http.MethodPost, "/api/submission-comments", map[string]interface{}{
		"submission_id": submission.ID,
		"content":       "Grades < 85 & missing signature",
	}, &admin)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
	var plain dto.CommentResponse
	decodeData(t, body, &plain)
	require.Equal(t, "Grades < 85 & missing signature", plain.Content)
	resp, _ = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/submission-comments/%d", plain.ID), nil, &admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = env.doJSON(t, http.MethodPost, "/api/submission-comments", map[string]interface{}{
		"submission_id": submission.ID,
		"content":       "Not yours",
	}, &other)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body = env.doJSON(t, http.MethodPost, "/api/submission-comments", map[string]interface{}{
		"submission_id": submission.ID,
		"content":       "Please re-scan page 2",
	}, &admin)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
	var comment dto.CommentResponse
	decodeData(t, body, &comment)
	require.Equal(t, admin.ID, comment.Author.UserID)

	resp, body = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/submission-comments/%d", submission.ID), nil, &student)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var comments []dto.CommentResponse
	decodeData(t, body, &comments)
	require.Len(t, comments, 1)
	require.Equal(t, "Ada", comments[0].Author.FirstName)

	path := fmt.Sprintf("/api/submission-comments/%d", comment.ID)
	resp, _ = env.doJSON(t, http.MethodPut, path, map[string]interface{}{"content": "hijack"}, &student)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body = env.doJSON(t, http.MethodPut, path, map[string]interface{}{"content": "Page 2 is fine now"}, &admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body.Message)
	decodeData(t, body, &comment)
	require.Equal(t, "Page 2 is fine now", comment.Content)

	resp, _ = env.doJSON(t, http.MethodDelete, path, nil, &admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = env.doJSON(t, http.MethodDelete, path, nil, &admin)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "comment not found", body.Message)

	resp, _ = env.doJSON(t, http.MethodGet, "/api/submission-comments/9999", nil, &admin)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
