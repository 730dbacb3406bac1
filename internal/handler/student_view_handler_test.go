package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
)

func TestStudentViewContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "student_view.schema.json"))
	require.NoError(t, err)
	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)

	env := newTestApp(t)
	admin := env.createUser(t, "Ada", "Admin", models.RoleAdmin)
	student := env.createUser(t, "Sam", "Student", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A", "Form B")

	resp, _ := env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/requirement-sets/%d/assign-students", set.ID),
		map[string]interface{}{"student_ids": []uint{student.ID}}, &admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := multipartRequest(t, http.MethodPost, "/api/submissions", uploadFields(set, set.Requirements[0].ID, student.ID), "file", "form-a.pdf", pdfBytes)
	resp, body := env.do(t, req, &student)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
	var submission dto.SubmissionResponse
	decodeData(t, body, &submission)

	resp, _ = env.doJSON(t, http.MethodPost, "/api/submission-comments", map[string]interface{}{
		"submission_id": submission.ID,
		"content":       "Signature missing on page 2",
	}, &admin)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	viewReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/requirement-sets/user/%d", student.ID), nil)
	viewReq.Header.Set("Authorization", "Bearer "+tokenFor(t, student))
	viewResp, err := env.app.Test(viewReq, -1)
	require.NoError(t, err)
	defer viewResp.Body.Close()
	require.Equal(t, fiber.StatusOK, viewResp.StatusCode)

	raw, err := io.ReadAll(viewResp.Body)
	require.NoError(t, err)

	var payload interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	require.NoError(t, decoder.Decode(&payload))
	require.NoError(t, schema.Validate(payload))

	var envelope struct {
		Data []dto.StudentRequirementSetView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.Len(t, envelope.Data, 1)
	require.Len(t, envelope.Data[0].Requirements, 2)

	var formA, formB dto.StudentRequirementView
	for _, requirement := range envelope.Data[0].Requirements {
		switch requirement.Title {
		case "Form A":
			formA = requirement
		case "Form B":
			formB = requirement
		}
	}
	require.NotNil(t, formA.Submission)
	require.Equal(t, "Pending", formA.Submission.StatusLabel)
	require.Len(t, formA.Submission.Comments, 1)
	require.Equal(t, "Ada", formA.Submission.Comments[0].Author.FirstName)
	require.Nil(t, formB.Submission)
}

func TestStudentViewAuthorization(t *testing.T) {
	env := newTestApp(t)
	admin := env.createUser(t, "Ada", "Admin", models.RoleAdmin)
	student := env.createUser(t, "Sam", "Student", models.RoleStudent)
	other := env.createUser(t, "Olga", "Other", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A")

	resp, _ := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/requirement-sets/user/%d", student.ID), nil, &other)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/requirement-sets/user/%d", student.ID), nil, &admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.JSONEq(t, `[]`, string(body.Data))

	resp, body = env.doJSON(t, http.MethodGet, "/api/requirement-sets/user/9999", nil, &admin)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "user not found", body.Message)

	path := fmt.Sprintf("/api/requirement-sets/%d/students/%d/requirements", set.ID, student.ID)
	resp, _ = env.doJSON(t, http.MethodGet, path, nil, &student)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body = env.doJSON(t, http.MethodGet, path, nil, &admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var statuses []dto.StudentRequirementStatus
	decodeData(t, body, &statuses)
	require.Len(t, statuses, 1)
	require.Nil(t, statuses[0].Submission)
}
