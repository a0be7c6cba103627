package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const codeSelect = "SELECT user_id, expires_at, consumed_at FROM action_codes WHERE code_hash=? AND purpose=? LIMIT 1"

func TestActionCodeVerifyLiveCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActionCodeRepo(db)

	mock.ExpectQuery(codeSelect).WithArgs("hash-1", PurposePasswordReset).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "consumed_at"}).
			AddRow("uid-1", time.Now().Add(time.Hour), nil))

	uid, err := repo.Verify(context.Background(), "hash-1", PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
}

func TestActionCodeVerifyExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActionCodeRepo(db)

	mock.ExpectQuery(codeSelect).WithArgs("hash-1", PurposePasswordReset).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "consumed_at"}).
			AddRow("uid-1", time.Now().Add(-time.Minute), nil))

	_, err := repo.Verify(context.Background(), "hash-1", PurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestActionCodeVerifyAlreadyConsumed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActionCodeRepo(db)

	mock.ExpectQuery(codeSelect).WithArgs("hash-1", PurposeVerifyEmail).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "consumed_at"}).
			AddRow("uid-1", time.Now().Add(time.Hour), time.Now().Add(-time.Minute)))

	_, err := repo.Verify(context.Background(), "hash-1", PurposeVerifyEmail)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestActionCodeVerifyUnknown(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActionCodeRepo(db)

	mock.ExpectQuery(codeSelect).WithArgs("hash-x", PurposePasswordReset).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Verify(context.Background(), "hash-x", PurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestActionCodeConsumeTwice(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActionCodeRepo(db)

	update := "UPDATE action_codes SET consumed_at=NOW() WHERE code_hash=? AND consumed_at IS NULL"
	mock.ExpectExec(update).WithArgs("hash-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).WithArgs("hash-1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Consume(context.Background(), "hash-1"))
	// Second redemption finds no live row.
	assert.ErrorIs(t, repo.Consume(context.Background(), "hash-1"), ErrInvalidCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
