package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/account-dashboard/internal/model"
	"github.com/iliyamo/account-dashboard/internal/utils"
)

// minPasswordLen is the credential store's strength rule. Enforced here so
// every write path (registration, change, reset, sync) goes through the
// same gate.
const minPasswordLen = 8

// CredentialRepo is the identity-provider adapter: the authoritative
// credential record per account lives in the `credentials` table. It owns
// its own bcrypt hash, independent of the application copy kept on the
// profile row; the shared UUID key is the only link between the two.
type CredentialRepo struct {
	DB   *sql.DB
	Cost int // bcrypt cost for credential-side hashes
}

func NewCredentialRepo(db *sql.DB, cost int) *CredentialRepo {
	return &CredentialRepo{DB: db, Cost: cost}
}

// Create inserts a credential record and returns the assigned user ID.
// Duplicate emails map to ErrEmailExists, short passwords to
// ErrWeakPassword.
func (r *CredentialRepo) Create(ctx context.Context, email, password, displayName string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < minPasswordLen {
		return "", ErrWeakPassword
	}
	hash, err := utils.HashPassword(password, r.Cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO credentials (user_id, email, password_hash, display_name) VALUES (?,?,?,?)",
		id, email, hash, displayName)
	if err != nil {
		if isDuplicate(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a credential by normalized email.
func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (model.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT user_id,email,password_hash,display_name,email_verified,disabled,created_at FROM credentials WHERE email=? LIMIT 1",
		email))
}

// GetByID fetches a credential by user ID.
func (r *CredentialRepo) GetByID(ctx context.Context, id string) (model.Credential, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT user_id,email,password_hash,display_name,email_verified,disabled,created_at FROM credentials WHERE user_id=? LIMIT 1",
		id))
}

func (r *CredentialRepo) scanOne(row *sql.Row) (model.Credential, error) {
	var c model.Credential
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.DisplayName, &c.EmailVerified, &c.Disabled, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// SignIn verifies a password against the credential-side hash. A disabled
// account or a hash mismatch both yield ErrInvalidCredentials; callers must
// not distinguish the two towards the client.
func (r *CredentialRepo) SignIn(ctx context.Context, email, password string) (model.Credential, error) {
	c, err := r.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			return model.Credential{}, ErrInvalidCredentials
		}
		return model.Credential{}, err
	}
	if c.Disabled || !utils.VerifyPassword(c.PasswordHash, password) {
		return model.Credential{}, ErrInvalidCredentials
	}
	return c, nil
}

// UpdatePassword replaces the credential-side hash. Weak passwords are
// rejected before any write so the caller's local store stays untouched.
func (r *CredentialRepo) UpdatePassword(ctx context.Context, id, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}
	hash, err := utils.HashPassword(newPassword, r.Cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE credentials SET password_hash=? WHERE user_id=?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDisplayName updates the display name on the credential record.
func (r *CredentialRepo) UpdateDisplayName(ctx context.Context, id, name string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE credentials SET display_name=? WHERE user_id=?", name, id)
	return err
}

// SetEmailVerified flips the verification flag.
func (r *CredentialRepo) SetEmailVerified(ctx context.Context, id string, verified bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE credentials SET email_verified=? WHERE user_id=?", verified, id)
	return err
}

// SetDisabled enables or disables sign-in for the account.
func (r *CredentialRepo) SetDisabled(ctx context.Context, id string, disabled bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE credentials SET disabled=? WHERE user_id=?", disabled, id)
	return err
}

// Delete removes the credential record. Missing rows are not an error so
// the purge sequence stays idempotent.
func (r *CredentialRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM credentials WHERE user_id=?", id)
	return err
}
