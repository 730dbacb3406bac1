package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholartrack-api/internal/dto"
	"github.com/noah-isme/scholartrack-api/internal/models"
	"github.com/noah-isme/scholartrack-api/internal/observability"
	"github.com/noah-isme/scholartrack-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(_ context.Context, _ repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func TestActivityServiceRecordRedactsMetadata(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	ctx := observability.WithCorrelationID(context.Background(), "req-77")
	entry, err := svc.Record(ctx, ActivityEntry{
		Actor:      Principal{UserID: 1, Role: models.RoleAdmin},
		Action:     " User.Role_Changed ",
		EntityType: "User",
		EntityID:   uintPtr(5),
		Metadata: map[string]interface{}{
			"email":    "student@example.com",
			"password": "hunter2",
			"to":       "StudentAdmin",
		},
	})
	require.NoError(t, err)
	require.Equal(t, ActionUserRoleChanged, entry.Action)
	require.Equal(t, "user", entry.EntityType)
	require.Equal(t, "Admin", entry.ActorRole)
	require.Equal(t, "***", entry.Metadata["email"])
	require.Equal(t, "***", entry.Metadata["password"])
	require.Equal(t, "StudentAdmin", entry.Metadata["to"])
	require.Equal(t, "req-77", entry.CorrelationID)

	_, err = svc.Record(context.Background(), ActivityEntry{Action: "", EntityType: "user"})
	require.Error(t, err)
	require.Len(t, repo.entries, 1)
}

func TestActivityServiceRecordsAdminMutations(t *testing.T) {
	env := newTestEnv(t)
	admin := createUser(t, env.db, "Ada", "Admin", models.RoleAdmin)
	ctx := context.Background()

	set, err := env.sets.Create(ctx, adminPrincipal(admin), dto.RequirementSetRequest{
		Title:        "Sem1",
		Deadline:     "2031-06-30",
		Requirements: []string{"Form A"},
	})
	require.NoError(t, err)
	require.NoError(t, env.sets.Delete(ctx, adminPrincipal(admin), set.ID))

	result, err := env.activity.List(ctx, dto.ActivityListRequest{EntityType: "requirement_set"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.EqualValues(t, 2, result.Pagination.TotalItems)

	actions := []string{result.Items[0].Action, result.Items[1].Action}
	require.ElementsMatch(t, []string{ActionRequirementSetCreated, ActionRequirementSetDeleted}, actions)
	for _, item := range result.Items {
		require.Equal(t, admin.ID, item.ActorID)
		require.NotNil(t, item.EntityID)
		require.Equal(t, set.ID, *item.EntityID)
	}

	filtered, err := env.activity.List(ctx, dto.ActivityListRequest{Action: ActionRequirementSetDeleted})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
}
