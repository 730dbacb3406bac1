package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
)

func approvalPtr(status models.ApprovalStatus) *models.ApprovalStatus {
	return &status
}

func TestSubmissionLifecycleScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := createUser(t, env.db, "Ada", "Admin", models.RoleAdmin)
	s1 := createUser(t, env.db, "Ana", "Abad", models.RoleStudent)
	s2 := createUser(t, env.db, "Ben", "Bautista", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A", "Form B")
	formA := set.Requirements[0]

	_, err := env.assignments.Assign(ctx, adminPrincipal(admin), set.ID, dto.AssignStudentsRequest{StudentIDs: []uint{s1.ID, s2.ID}})
	require.NoError(t, err)

	student := Principal{UserID: s1.ID, Role: models.RoleStudent}
	payload := dto.SubmissionUploadRequest{RequirementSetID: set.ID, RequirementID: formA.ID, UserID: s1.ID}

	first, err := env.submissions.Upload(ctx, student, payload, newTestFileHeader(t, "a.pdf", pdfContent))
	require.NoError(t, err)
	require.Equal(t, models.ApprovalStatusPending, first.ApprovalStatus)
	require.Equal(t, "application/pdf", first.ContentType)
	require.Contains(t, first.FilePath, "a.pdf")

	reviewed, err := env.submissions.UpdateApprovalStatus(ctx, adminPrincipal(admin), first.ID, dto.ApprovalStatusUpdateRequest{ApprovalStatus: approvalPtr(models.ApprovalStatusApproved)})
	require.NoError(t, err)
	require.Equal(t, models.ApprovalStatusApproved, reviewed.ApprovalStatus)

	second, err := env.submissions.Upload(ctx, student, payload, newTestFileHeader(t, "a2.pdf", pdfContent))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, models.ApprovalStatusPending, second.ApprovalStatus)
	require.Contains(t, second.FilePath, "a2.pdf")
	require.NotEqual(t, first.FilePath, second.FilePath)

	var count int64
	require.NoError(t, env.db.Model(&models.Submission{}).Where("user_id = ? AND requirement_id = ?", s1.ID, formA.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	require.Equal(t, []string{
		SubjectRequirementSetAssigned,
		SubjectSubmissionUploaded,
		SubjectSubmissionReviewed,
		SubjectSubmissionUploaded,
	}, env.events.subjects())
}

func TestSubmissionUploadValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := createUser(t, env.db, "Ada", "Admin", models.RoleAdmin)
	s1 := createUser(t, env.db, "Ana", "Abad", models.RoleStudent)
	s2 := createUser(t, env.db, "Ben", "Bautista", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A")
	other := createSet(t, env, admin, "Sem2", "Form Z")
	student := Principal{UserID: s1.ID, Role: models.RoleStudent}
	payload := dto.SubmissionUploadRequest{RequirementSetID: set.ID, RequirementID: set.Requirements[0].ID, UserID: s1.ID}

	_, err := env.submissions.Upload(ctx, student, payload, nil)
	require.ErrorIs(t, err, ErrFileRequired)

	_, err = env.submissions.Upload(ctx, student, payload, newTestFileHeader(t, "notes.docx", pdfContent))
	require.ErrorIs(t, err, ErrInvalidFileFormat)

	_, err = env.submissions.Upload(ctx, student, payload, newTestFileHeader(t, "fake.PDF", []byte("plain text pretending")))
	require.ErrorIs(t, err, ErrInvalidFileFormat)

	_, err = env.submissions.Upload(ctx, Principal{UserID: s2.ID, Role: models.RoleStudent}, payload, newTestFileHeader(t, "a.pdf", pdfContent))
	require.ErrorIs(t, err, ErrForbidden)

	mismatched := payload
	mismatched.RequirementSetID = other.ID
	_, err = env.submissions.Upload(ctx, student, mismatched, newTestFileHeader(t, "a.pdf", pdfContent))
	require.ErrorIs(t, err, ErrRequirementNotFound)

	large := make([]byte, 1024*1024+10)
	copy(large, pdfContent)
	_, err = env.submissions.Upload(ctx, student, payload, newTestFileHeader(t, "big.pdf", large))
	require.ErrorIs(t, err, ErrFileTooLarge)

	require.Zero(t, env.uploader.uploads, "no upload may happen for rejected requests")

	var count int64
	require.NoError(t, env.db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSubmissionUploadUpstreamFailureLeavesNoState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := createUser(t, env.db, "Ada", "Admin", models.RoleAdmin)
	s1 := createUser(t, env.db, "Ana", "Abad", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A")

	env.uploader.err = errUploadUnavailable
	_, err := env.submissions.Upload(ctx, adminPrincipal(admin), dto.SubmissionUploadRequest{
		RequirementID: set.Requirements[0].ID,
		UserID:        s1.ID,
	}, newTestFileHeader(t, "a.pdf", pdfContent))
	require.ErrorIs(t, err, ErrUpstreamUpload)

	var count int64
	require.NoError(t, env.db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSubmissionApprovalStatusRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := createUser(t, env.db, "Ada", "Admin", models.RoleAdmin)
	s1 := createUser(t, env.db, "Ana", "Abad", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A")
	student := Principal{UserID: s1.ID, Role: models.RoleStudent}

	created, err := env.submissions.Upload(ctx, student, dto.SubmissionUploadRequest{
		RequirementID: set.Requirements[0].ID,
		UserID:        s1.ID,
	}, newTestFileHeader(t, "a.pdf", pdfContent))
	require.NoError(t, err)

	_, err = env.submissions.UpdateApprovalStatus(ctx, adminPrincipal(admin), created.ID, dto.ApprovalStatusUpdateRequest{ApprovalStatus: approvalPtr(models.ApprovalStatusMissing)})
	require.ErrorIs(t, err, ErrInvalidApprovalStatus)

	_, err = env.submissions.UpdateApprovalStatus(ctx, adminPrincipal(admin), created.ID, dto.ApprovalStatusUpdateRequest{ApprovalStatus: approvalPtr(models.ApprovalStatusPending)})
	require.ErrorIs(t, err, ErrInvalidApprovalStatus)

	_, err = env.submissions.UpdateApprovalStatus(ctx, student, created.ID, dto.ApprovalStatusUpdateRequest{ApprovalStatus: approvalPtr(models.ApprovalStatusApproved)})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.submissions.UpdateApprovalStatus(ctx, adminPrincipal(admin), created.ID+50, dto.ApprovalStatusUpdateRequest{ApprovalStatus: approvalPtr(models.ApprovalStatusRejected)})
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	studentAdmin := Principal{UserID: admin.ID, Role: models.RoleStudentAdmin}
	rejected, err := env.submissions.UpdateApprovalStatus(ctx, studentAdmin, created.ID, dto.ApprovalStatusUpdateRequest{ApprovalStatus: approvalPtr(models.ApprovalStatusRejected)})
	require.NoError(t, err)
	require.Equal(t, "Rejected", rejected.StatusLabel)
}

func TestSubmissionDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := createUser(t, env.db, "Ada", "Admin", models.RoleAdmin)
	s1 := createUser(t, env.db, "Ana", "Abad", models.RoleStudent)
	s2 := createUser(t, env.db, "Ben", "Bautista", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A")
	requirementID := set.Requirements[0].ID
	student := Principal{UserID: s1.ID, Role: models.RoleStudent}

	_, err := env.submissions.Upload(ctx, student, dto.SubmissionUploadRequest{RequirementID: requirementID, UserID: s1.ID}, newTestFileHeader(t, "a.png", pngContent(t, 10, 10)))
	require.NoError(t, err)

	require.ErrorIs(t, env.submissions.Delete(ctx, Principal{UserID: s2.ID, Role: models.RoleStudent}, requirementID, s1.ID), ErrForbidden)
	require.ErrorIs(t, env.submissions.Delete(ctx, Principal{UserID: s2.ID, Role: models.RoleStudent}, requirementID, 0), ErrSubmissionNotFound)

	require.NoError(t, env.submissions.Delete(ctx, student, requirementID, 0))
	require.ErrorIs(t, env.submissions.Delete(ctx, student, requirementID, 0), ErrSubmissionNotFound)
}
