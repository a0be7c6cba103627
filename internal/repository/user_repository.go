package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/account-dashboard/internal/model"
)

// UserRepo is the profile document store: the application-owned `users`
// table, keyed by the same UUID the credential store assigned. It carries
// the application's own bcrypt password copy used for local verification.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const profileCols = "id,name,email,role,status,password_hash,email_verified,has_2fa,image,bio,created_at,updated_at,last_login_at"

// Create inserts a profile row for an existing credential ID.
func (r *UserRepo) Create(ctx context.Context, p model.Profile) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id,name,email,role,status,password_hash,email_verified,has_2fa,image,bio) VALUES (?,?,?,?,?,?,?,?,?,?)",
		p.ID, p.Name, strings.ToLower(strings.TrimSpace(p.Email)), p.Role, p.Status,
		p.PasswordHash, p.EmailVerified, p.Has2FA, p.Image, p.Bio)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// GetByID fetches a profile by user ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a profile by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM users WHERE email=? LIMIT 1", email))
}

func scanProfile(row *sql.Row) (model.Profile, error) {
	var (
		p    model.Profile
		last sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Status, &p.PasswordHash,
		&p.EmailVerified, &p.Has2FA, &p.Image, &p.Bio, &p.CreatedAt, &p.UpdatedAt, &last)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if last.Valid {
		t := last.Time
		p.LastLoginAt = &t
	}
	return p, err
}

// UpdatePasswordHash replaces the application-side bcrypt copy and bumps
// updated_at. Called after the credential store accepted the new password.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=NOW() WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDetails writes the editable profile fields.
func (r *UserRepo) UpdateDetails(ctx context.Context, id, name, bio, image string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, bio=?, image=?, updated_at=NOW() WHERE id=?",
		name, bio, image, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetHas2FA toggles the two-factor flag.
func (r *UserRepo) SetHas2FA(ctx context.Context, id string, enabled bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET has_2fa=?, updated_at=NOW() WHERE id=?", enabled, id)
	return err
}

// SetEmailVerified mirrors the credential-side verification flag.
func (r *UserRepo) SetEmailVerified(ctx context.Context, id string, verified bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email_verified=?, updated_at=NOW() WHERE id=?", verified, id)
	return err
}

// SetRole changes the profile role (admin action).
func (r *UserRepo) SetRole(ctx context.Context, id, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, updated_at=NOW() WHERE id=?", role, id)
	return err
}

// SetStatus changes the profile status (admin action).
func (r *UserRepo) SetStatus(ctx context.Context, id, status string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET status=?, updated_at=NOW() WHERE id=?", status, id)
	return err
}

// TouchLogin stamps last_login_at after a successful sign-in.
func (r *UserRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at=? WHERE id=?", at.UTC(), id)
	return err
}

// List returns a page of profiles ordered by creation time, newest first.
// Used by the admin dashboard.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+profileCols+" FROM users ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		var (
			p    model.Profile
			last sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Status, &p.PasswordHash,
			&p.EmailVerified, &p.Has2FA, &p.Image, &p.Bio, &p.CreatedAt, &p.UpdatedAt, &last); err != nil {
			return nil, err
		}
		if last.Valid {
			t := last.Time
			p.LastLoginAt = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the profile row. Missing rows are not an error so the
// purge sequence stays idempotent.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}
