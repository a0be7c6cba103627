package repository

import (
	"context"
	"database/sql"
	"time"
)

// Action code purposes.
const (
	PurposePasswordReset = "password_reset"
	PurposeVerifyEmail   = "verify_email"
)

// ActionCodeRepo stores single-use out-of-band codes backing password-reset
// and email-verification links. Only the SHA-256 hash of a code is stored,
// mirroring how refresh tokens are handled.
type ActionCodeRepo struct{ DB *sql.DB }

func NewActionCodeRepo(db *sql.DB) *ActionCodeRepo { return &ActionCodeRepo{DB: db} }

// Store inserts a code hash for a user and purpose.
func (r *ActionCodeRepo) Store(ctx context.Context, codeHash, userID, email, purpose string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO action_codes (code_hash, user_id, email, purpose, expires_at) VALUES (?,?,?,?,?)",
		codeHash, userID, email, purpose, exp)
	return err
}

// Verify returns the user ID behind a live code without consuming it.
// Unknown, expired, consumed or wrong-purpose codes all yield
// ErrInvalidCode.
func (r *ActionCodeRepo) Verify(ctx context.Context, codeHash, purpose string) (string, error) {
	var (
		userID    string
		expiresAt time.Time
		consumed  sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, consumed_at FROM action_codes WHERE code_hash=? AND purpose=? LIMIT 1",
		codeHash, purpose).Scan(&userID, &expiresAt, &consumed)
	if err == sql.ErrNoRows {
		return "", ErrInvalidCode
	}
	if err != nil {
		return "", err
	}
	if consumed.Valid || time.Now().UTC().After(expiresAt) {
		return "", ErrInvalidCode
	}
	return userID, nil
}

// Consume marks a code as used so it cannot be redeemed twice.
func (r *ActionCodeRepo) Consume(ctx context.Context, codeHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE action_codes SET consumed_at=NOW() WHERE code_hash=? AND consumed_at IS NULL",
		codeHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInvalidCode
	}
	return nil
}

// DeleteAllForUser drops a user's outstanding codes during an account purge.
func (r *ActionCodeRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM action_codes WHERE user_id=?", userID)
	return err
}
