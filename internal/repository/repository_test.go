package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

func seedUser(t *testing.T, db *gorm.DB, first, last string, yearLevel int) models.User {
	t.Helper()
	user := models.User{
		FirstName:    first,
		LastName:     last,
		Email:        strings.ToLower(first+"."+last) + "@example.com",
		PasswordHash: "hash",
		YearLevel:    yearLevel,
		Role:         models.RoleStudent,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedSet(t *testing.T, db *gorm.DB, title string, requirements ...string) models.RequirementSet {
	t.Helper()
	set := models.RequirementSet{Title: title, Deadline: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)}
	for _, requirement := range requirements {
		set.Requirements = append(set.Requirements, models.Requirement{Title: requirement})
	}
	require.NoError(t, db.Create(&set).Error)
	return set
}

func seedSubmission(t *testing.T, db *gorm.DB, userID, requirementID uint) models.Submission {
	t.Helper()
	submission := models.Submission{
		UserID:         userID,
		RequirementID:  requirementID,
		FilePath:       "https://files.example.com/a.pdf",
		ApprovalStatus: models.ApprovalStatusPending,
		SubmittedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}
