package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/account-dashboard/internal/utils"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

const credSelectByEmail = "SELECT user_id,email,password_hash,display_name,email_verified,disabled,created_at FROM credentials WHERE email=? LIMIT 1"

func credRow(t *testing.T, id, email, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"user_id", "email", "password_hash", "display_name", "email_verified", "disabled", "created_at"}).
		AddRow(id, email, hash, "Test User", true, false, time.Now())
}

func TestCredentialCreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepo(db, 4)

	mock.ExpectExec("INSERT INTO credentials (user_id, email, password_hash, display_name) VALUES (?,?,?,?)").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'a@b.c' for key 'credentials.email'"))

	_, err := repo.Create(context.Background(), "a@b.c", "longenough", "A")
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialCreateWeakPassword(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepo(db, 4)

	// No expectations: the strength gate rejects before any store call.
	_, err := repo.Create(context.Background(), "a@b.c", "short", "A")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialSignIn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepo(db, 4)

	mock.ExpectQuery(credSelectByEmail).WithArgs("a@b.c").
		WillReturnRows(credRow(t, "uid-1", "a@b.c", "pw-123456"))

	c, err := repo.SignIn(context.Background(), "a@b.c", "pw-123456")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialSignInWrongPassword(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepo(db, 4)

	mock.ExpectQuery(credSelectByEmail).WithArgs("a@b.c").
		WillReturnRows(credRow(t, "uid-1", "a@b.c", "pw-123456"))

	_, err := repo.SignIn(context.Background(), "a@b.c", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCredentialSignInUnknownEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepo(db, 4)

	mock.ExpectQuery(credSelectByEmail).WithArgs("ghost@b.c").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.SignIn(context.Background(), "ghost@b.c", "pw-123456")
	// Same sentinel as a wrong password: callers cannot tell the cases apart.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCredentialUpdatePasswordNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepo(db, 4)

	mock.ExpectExec("UPDATE credentials SET password_hash=? WHERE user_id=?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "ghost", "longenough")
	assert.ErrorIs(t, err, ErrNotFound)
}
