package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func pngContent(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 40, G: 90, B: 160, A: 255})
	buf := &bytes.Buffer{}
	require.NoError(t, imaging.Encode(buf, img, imaging.PNG))
	return buf.Bytes()
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RequirementSet{},
		&models.Requirement{},
		&models.UserRequirementSet{},
		&models.Submission{},
		&models.SubmissionComment{},
		&models.Article{},
		&models.ActivityLog{},
	))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(len(content))+1024))
	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func createUser(t *testing.T, db *gorm.DB, first, last string, role models.Role) models.User {
	t.Helper()
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	user := models.User{
		FirstName:    first,
		LastName:     last,
		Email:        strings.ToLower(first+"."+last) + "@example.com",
		PasswordHash: hash,
		YearLevel:    1,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

type stubUploader struct {
	mu      sync.Mutex
	uploads int
	names   []string
	last    []byte
	err     error
}

func (s *stubUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.uploads++
	s.names = append(s.names, name)
	s.last = content
	return fmt.Sprintf("https://files.example.com/%d/%s", s.uploads, name), nil
}

type publishedEvent struct {
	Subject string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Subject: subject, Payload: payload})
	return nil
}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	subjects := make([]string, 0, len(p.events))
	for _, event := range p.events {
		subjects = append(subjects, event.Subject)
	}
	return subjects
}

// testEnv wires every service against one sqlite database.
type testEnv struct {
	db          *gorm.DB
	uploader    *stubUploader
	events      *recordingPublisher
	activity    ActivityService
	sets        RequirementSetService
	assignments AssignmentService
	submissions SubmissionService
	comments    CommentService
	views       StudentViewService
	users       UserService
	articles    ArticleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	logger := testLogger()
	validate := testValidator()

	setRepo := repository.NewRequirementSetRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)

	env := &testEnv{
		db:       db,
		uploader: &stubUploader{},
		events:   &recordingPublisher{},
	}
	env.activity = NewActivityService(repository.NewActivityLogRepository(db), logger)
	env.sets = NewRequirementSetService(setRepo, validate, env.activity, logger)
	env.assignments = NewAssignmentService(setRepo, assignmentRepo, userRepo, validate, env.activity, env.events, logger)
	env.submissions = NewSubmissionService(SubmissionServiceDeps{
		Submissions: submissionRepo,
		Sets:        setRepo,
		Users:       userRepo,
		Uploader:    env.uploader,
		Validator:   validate,
		Activity:    env.activity,
		Events:      env.events,
		MaxSizeMB:   1,
	}, logger)
	env.comments = NewCommentService(commentRepo, submissionRepo, validate, logger)
	env.views = NewStudentViewService(setRepo, submissionRepo, userRepo, logger)
	env.users = NewUserService(userRepo, env.uploader, validate, env.activity, SessionRevocation{}, 1, logger)
	env.articles = NewArticleService(articleRepo, env.uploader, validate, env.activity, 1, logger)
	return env
}

func adminPrincipal(user models.User) Principal {
	return Principal{UserID: user.ID, Role: user.Role}
}

var errUploadUnavailable = errors.New("host unavailable")
