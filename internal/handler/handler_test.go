package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/config"
	"github.com/noah-isme/scholartrack-api/internal/database"
	"github.com/noah-isme/scholartrack-api/internal/handler"
	"github.com/noah-isme/scholartrack-api/internal/middleware"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/repository"
	"github.com/noah-isme/scholartrack-api/internal/router"
	"github.com/noah-isme/scholartrack-api/internal/service"
)

const handlerTestSecret = "handler-secret"

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type testUploader struct {
	mu    sync.Mutex
	fail  bool
	count int
}

func (u *testUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fail {
		return "", errors.New("file host returned 503")
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	u.count++
	return fmt.Sprintf("https://files.test/%d/%s", u.count, name), nil
}

type testApp struct {
	app      *fiber.App
	db       *gorm.DB
	uploader *testUploader
	redis    *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	revocation := service.NewRedisTokenStore(redisClient, "")

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	uploader := &testUploader{}

	setRepo := repository.NewRequirementSetRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)
	events := service.NewEventPublisher(nil, "", logger)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)

	cfg := config.Config{AppName: "ScholarTrack Test", AppEnv: "test", LoginRatePerMinute: 100, UploadRatePerMinute: 100}
	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		RequirementSetHandler: handler.NewRequirementSetHandler(service.NewRequirementSetService(setRepo, validate, activity, logger), logger),
		AssignmentHandler:     handler.NewAssignmentHandler(service.NewAssignmentService(setRepo, assignmentRepo, userRepo, validate, activity, events, logger), logger),
		StudentViewHandler:    handler.NewStudentViewHandler(service.NewStudentViewService(setRepo, submissionRepo, userRepo, logger), logger),
		SubmissionHandler: handler.NewSubmissionHandler(service.NewSubmissionService(service.SubmissionServiceDeps{
			Submissions: submissionRepo,
			Sets:        setRepo,
			Users:       userRepo,
			Uploader:    uploader,
			Validator:   validate,
			Activity:    activity,
			Events:      events,
			MaxSizeMB:   1,
		}, logger), logger),
		CommentHandler:  handler.NewCommentHandler(service.NewCommentService(commentRepo, submissionRepo, validate, logger), logger),
		UserHandler:     handler.NewUserHandler(service.NewUserService(userRepo, uploader, validate, activity, service.SessionRevocation{Store: revocation, TTL: time.Hour}, 1, logger), logger),
		AuthHandler:     handler.NewAuthHandler(service.NewAuthService(userRepo, revocation, validate, service.AuthConfig{Secret: handlerTestSecret, TTL: time.Hour}, logger), logger),
		ArticleHandler:  handler.NewArticleHandler(service.NewArticleService(repository.NewArticleRepository(db), uploader, validate, activity, 1, logger), logger),
		ActivityHandler: handler.NewActivityHandler(activity, logger),
		JWTMiddleware:   middleware.JWTProtected(handlerTestSecret, revocation),
		HealthChecks: []handler.HealthCheck{{
			Name: "database",
			Check: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		}},
	})

	return &testApp{app: app, db: db, uploader: uploader, redis: mr}
}

func (a *testApp) createUser(t *testing.T, first, last string, role models.Role) models.User {
	t.Helper()
	hash, err := service.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{
		FirstName:    first,
		LastName:     last,
		Email:        strings.ToLower(first+"."+last) + "@example.com",
		PasswordHash: hash,
		YearLevel:    2,
		Role:         role,
	}
	require.NoError(t, a.db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	return tokenIssuedAt(t, user, time.Now())
}

func tokenIssuedAt(t *testing.T, user models.User, issuedAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": user.Role.String(),
		"jti":  uuid.NewString(),
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(time.Hour).Unix(),
	}).SignedString([]byte(handlerTestSecret))
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    json.RawMessage   `json:"meta"`
	Details map[string]string `json:"details"`
}

func (a *testApp) do(t *testing.T, req *http.Request, user *models.User) (*http.Response, envelope) {
	t.Helper()
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, *user))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp, body
}

func (a *testApp) doJSON(t *testing.T, method, path string, payload interface{}, user *models.User) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	return a.do(t, req, user)
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, fileField, fileName string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeData(t *testing.T, body envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body.Data, target))
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
