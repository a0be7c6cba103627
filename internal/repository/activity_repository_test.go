package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/account-dashboard/internal/model"
)

const activityInsert = "INSERT INTO activity_logs (user_id, type, description, status, metadata, created_at) VALUES (?,?,?,?,?,NOW())"

func TestActivityAppend(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActivityRepo(db)

	mock.ExpectExec(activityInsert).
		WithArgs("uid-1", "login", "signed in", "success", "{}").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), model.Activity{
		UserID:      "uid-1",
		Type:        model.ActivityLogin,
		Description: "signed in",
		Status:      model.ActivitySuccess,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityAppendDefaultsStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActivityRepo(db)

	mock.ExpectExec(activityInsert).
		WithArgs("uid-1", "data_export", "export", "success", `{"format":"json"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), model.Activity{
		UserID:      "uid-1",
		Type:        model.ActivityDataExport,
		Description: "export",
		Metadata:    map[string]string{"format": "json"},
	})
	require.NoError(t, err)
}

func TestActivityListByUserCapsLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActivityRepo(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "description", "status", "metadata", "created_at"}).
		AddRow(2, "uid-1", "login", "signed in", "success", "{}", time.Now()).
		AddRow(1, "uid-1", "registration", "account registered", "success", "{}", time.Now().Add(-time.Hour))

	// A caller asking for more than 100 records still gets at most 100.
	mock.ExpectQuery("SELECT id,user_id,type,description,status,metadata,created_at FROM activity_logs WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?").
		WithArgs("uid-1", 100).
		WillReturnRows(rows)

	logs, err := repo.ListByUser(context.Background(), "uid-1", 5000)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActivityLogin, logs[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityDeleteAllForUserBatches(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActivityRepo(db)

	del := "DELETE FROM activity_logs WHERE user_id=? LIMIT ?"
	// First batch is full, so a second round runs until fewer rows remain.
	mock.ExpectExec(del).WithArgs("uid-1", 2).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(del).WithArgs("uid-1", 2).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteAllForUser(context.Background(), "uid-1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
