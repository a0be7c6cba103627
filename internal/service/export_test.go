package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/account-dashboard/internal/model"
)

func exportFixture() (model.Profile, []model.Activity) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)
	p := model.Profile{
		ID:            "uid-1",
		Name:          `Alice "Al" Smith`,
		Email:         "alice@example.com",
		Role:          model.RoleUser,
		Status:        model.StatusActive,
		PasswordHash:  "$2a$10$secret",
		EmailVerified: true,
		Bio:           "line one,\nline two",
		CreatedAt:     created,
		UpdatedAt:     created,
		LastLoginAt:   &last,
	}
	logs := []model.Activity{
		{Type: model.ActivityLogin, Description: "signed in", Status: model.ActivitySuccess, CreatedAt: last},
		{Type: model.ActivityDataExport, Description: "data export generated", Status: model.ActivitySuccess,
			Metadata: map[string]string{"format": "json"}, CreatedAt: last.Add(time.Minute)},
	}
	return p, logs
}

func TestBuildExportJSON(t *testing.T) {
	p, logs := exportFixture()

	body, err := BuildExportJSON(p, logs)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))

	profile, ok := doc["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "uid-1", profile["id"])
	assert.Equal(t, "alice@example.com", profile["email"])
	assert.Equal(t, "2026-03-05T09:30:00Z", profile["lastLoginAt"])
	// The bcrypt hash must never appear in an export.
	assert.NotContains(t, string(body), "$2a$10$secret")

	activity, ok := doc["activityLogs"].([]any)
	require.True(t, ok)
	require.Len(t, activity, 2)
	first := activity[0].(map[string]any)
	assert.Equal(t, "login", first["type"])
	assert.Equal(t, "2026-03-05T09:30:00Z", first["timestamp"])
}

func TestBuildExportJSONEmptyActivity(t *testing.T) {
	p, _ := exportFixture()

	body, err := BuildExportJSON(p, nil)
	require.NoError(t, err)
	// An empty log set serializes as [], not null.
	assert.Contains(t, string(body), `"activityLogs": []`)
}

func TestBuildExportCSVEmptyActivity(t *testing.T) {
	p, _ := exportFixture()

	body, err := BuildExportCSV(p, nil)
	require.NoError(t, err)
	// A user with no activity gets an empty array cell, never a null.
	assert.True(t, strings.HasSuffix(strings.TrimRight(string(body), "\n"), `,"[]"`))
	assert.NotContains(t, string(body), "null")
}

func TestBuildExportCSV(t *testing.T) {
	p, logs := exportFixture()

	body, err := BuildExportCSV(p, logs)
	require.NoError(t, err)

	lines := strings.SplitN(string(body), "\n", 2)
	require.Len(t, lines, 2)
	assert.Equal(t, `"id","name","email","role","status","emailVerified","has2FA","image","bio","createdAt","updatedAt","lastLoginAt","activityLogs"`, lines[0])
	// Embedded quotes in the name are doubled inside a quoted field.
	assert.Contains(t, lines[1], `"Alice ""Al"" Smith"`)
	assert.Contains(t, lines[1], `"alice@example.com"`)
	// The activity array rides along as one JSON-stringified cell.
	assert.Contains(t, lines[1], `""type"":""login""`)
	assert.NotContains(t, string(body), "$2a$10$secret")
}

func TestExportUserDataUploadsAndSigns(t *testing.T) {
	svc, mock, blobs := newTestService(t)
	hash := mustHash(t, "correct-horse")

	mock.ExpectQuery(profileSelectByID).WithArgs("uid-1").
		WillReturnRows(profileRow("uid-1", "alice@example.com", hash))
	mock.ExpectQuery("SELECT id,user_id,type,description,status,metadata,created_at FROM activity_logs WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?").
		WithArgs("uid-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "description", "status", "metadata", "created_at"}).
			AddRow(1, "uid-1", "login", "signed in", "success", "{}", time.Now()))
	mock.ExpectExec(activityInsert).
		WithArgs("uid-1", "data_export", "data export generated", "success", `{"format":"json"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	url, err := svc.ExportUserData(context.Background(), "uid-1", "json")
	require.NoError(t, err)

	require.Len(t, blobs.uploaded, 1)
	key := blobs.uploaded[0]
	assert.True(t, strings.HasPrefix(key, "users/uid-1/exports/"))
	assert.True(t, strings.HasSuffix(key, ".json"))
	assert.Equal(t, "https://blobs.test/"+key, url)
	assert.NoError(t, mock.ExpectationsWereMet())
}
