package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
)

func createSet(t *testing.T, env *testEnv, admin models.User, title string, requirements ...string) dto.RequirementSetResponse {
	t.Helper()
	set, err := env.sets.Create(context.Background(), adminPrincipal(admin), dto.RequirementSetRequest{
		Title:        title,
		Deadline:     "2025-12-01",
		Requirements: requirements,
	})
	require.NoError(t, err)
	return set
}

func TestAssignmentServiceReconcilesToTargetSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := createUser(t, env.db, "Ada", "Admin", models.RoleAdmin)
	s1 := createUser(t, env.db, "Ana", "Abad", models.RoleStudent)
	s2 := createUser(t, env.db, "Ben", "Bautista", models.RoleStudent)
	s3 := createUser(t, env.db, "Cara", "Castro", models.RoleStudent)
	s4 := createUser(t, env.db, "Dan", "Diaz", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A")

	_, err := env.assignments.Assign(ctx, adminPrincipal(admin), set.ID, dto.AssignStudentsRequest{StudentIDs: []uint{s1.ID, s2.ID, s3.ID}})
	require.NoError(t, err)

	_, err = env.submissions.Upload(ctx, Principal{UserID: s1.ID, Role: models.RoleStudent}, dto.SubmissionUploadRequest{
		RequirementSetID: set.ID,
		RequirementID:    set.Requirements[0].ID,
		UserID:           s1.ID,
	}, newTestFileHeader(t, "a.pdf", pdfContent))
	require.NoError(t, err)

	result, err := env.assignments.Assign(ctx, adminPrincipal(admin), set.ID, dto.AssignStudentsRequest{StudentIDs: []uint{s2.ID, s3.ID, s4.ID}})
	require.NoError(t, err)
	require.Equal(t, []uint{s4.ID}, result.Added)
	require.Equal(t, []uint{s1.ID}, result.Removed)

	ids, err := env.assignments.AssignedStudentIDs(ctx, set.ID, "")
	require.NoError(t, err)
	require.Equal(t, int64(3), ids.Total)
	require.ElementsMatch(t, []uint{s2.ID, s3.ID, s4.ID}, ids.StudentIDs)

	var count int64
	require.NoError(t, env.db.Model(&models.Submission{}).Where("user_id = ?", s1.ID).Count(&count).Error)
	require.Equal(t, int64(1), count, "removing an assignment keeps prior submissions")

	again, err := env.assignments.Assign(ctx, adminPrincipal(admin), set.ID, dto.AssignStudentsRequest{StudentIDs: []uint{s4.ID, s3.ID, s2.ID}})
	require.NoError(t, err)
	require.Empty(t, again.Added)
	require.Empty(t, again.Removed)

	require.Contains(t, env.events.subjects(), SubjectRequirementSetAssigned)
}

func TestAssignmentServiceRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := createUser(t, env.db, "Ada", "Admin", models.RoleAdmin)
	student := createUser(t, env.db, "Ana", "Abad", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A")

	_, err := env.assignments.Assign(ctx, adminPrincipal(admin), set.ID, dto.AssignStudentsRequest{})
	require.ErrorIs(t, err, ErrEmptyStudentList)

	_, err = env.assignments.Assign(ctx, adminPrincipal(admin), set.ID+99, dto.AssignStudentsRequest{StudentIDs: []uint{student.ID}})
	require.ErrorIs(t, err, ErrRequirementSetNotFound)

	_, err = env.assignments.Assign(ctx, adminPrincipal(admin), set.ID, dto.AssignStudentsRequest{StudentIDs: []uint{student.ID, 9999}})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.assignments.Assign(ctx, adminPrincipal(admin), set.ID, dto.AssignStudentsRequest{StudentIDs: []uint{student.ID, admin.ID}})
	require.ErrorIs(t, err, ErrNotAStudent)

	ids, err := env.assignments.AssignedStudentIDs(ctx, set.ID, "")
	require.NoError(t, err)
	require.Zero(t, ids.Total, "rejected reconciliations must not change membership")

	officer := createUser(t, env.db, "Oli", "Ocampo", models.RoleStudentAdmin)
	result, err := env.assignments.Assign(ctx, adminPrincipal(admin), set.ID, dto.AssignStudentsRequest{StudentIDs: []uint{student.ID, officer.ID}})
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
}

func TestAssignmentServiceRoster(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := createUser(t, env.db, "Ada", "Admin", models.RoleAdmin)
	zed := createUser(t, env.db, "Zed", "Zamora", models.RoleStudent)
	amy := createUser(t, env.db, "Amy", "Aquino", models.RoleStudent)
	set := createSet(t, env, admin, "Sem1", "Form A")

	_, err := env.assignments.Assign(ctx, adminPrincipal(admin), set.ID, dto.AssignStudentsRequest{StudentIDs: []uint{zed.ID, amy.ID}})
	require.NoError(t, err)

	roster, err := env.assignments.Roster(ctx, set.ID, dto.RosterListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), roster.Pagination.TotalItems)
	require.Equal(t, "Aquino", roster.Items[0].LastName)

	roster, err = env.assignments.Roster(ctx, set.ID, dto.RosterListRequest{Search: "zam"})
	require.NoError(t, err)
	require.Len(t, roster.Items, 1)
	require.Equal(t, zed.ID, roster.Items[0].ID)

	_, err = env.assignments.Roster(ctx, set.ID+1, dto.RosterListRequest{})
	require.ErrorIs(t, err, ErrRequirementSetNotFound)
}
