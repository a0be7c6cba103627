package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/account-dashboard/internal/model"
)

// DeletionRepo persists account deletion requests, one row per user.
type DeletionRepo struct{ DB *sql.DB }

func NewDeletionRepo(db *sql.DB) *DeletionRepo { return &DeletionRepo{DB: db} }

// Create records a pending deletion request. A second request for the same
// user maps to ErrConflict.
func (r *DeletionRepo) Create(ctx context.Context, userID, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO deletion_requests (user_id, email, status, requested_at) VALUES (?,?,?,NOW())",
		userID, email, model.DeletionPending)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// Get fetches the deletion request for a user.
func (r *DeletionRepo) Get(ctx context.Context, userID string) (model.DeletionRequest, error) {
	var (
		d    model.DeletionRequest
		done sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id,email,status,requested_at,completed_at FROM deletion_requests WHERE user_id=? LIMIT 1",
		userID).Scan(&d.UserID, &d.Email, &d.Status, &d.RequestedAt, &done)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	if done.Valid {
		t := done.Time
		d.CompletedAt = &t
	}
	return d, err
}

// ListPending returns all requests still waiting for a purge, oldest first.
func (r *DeletionRepo) ListPending(ctx context.Context) ([]model.DeletionRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT user_id,email,status,requested_at,completed_at FROM deletion_requests WHERE status=? ORDER BY requested_at",
		model.DeletionPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DeletionRequest
	for rows.Next() {
		var (
			d    model.DeletionRequest
			done sql.NullTime
		)
		if err := rows.Scan(&d.UserID, &d.Email, &d.Status, &d.RequestedAt, &done); err != nil {
			return nil, err
		}
		if done.Valid {
			t := done.Time
			d.CompletedAt = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkCompleted flips a request to completed. Returns ErrNotFound when the
// row is gone, which the purge treats as non-fatal.
func (r *DeletionRepo) MarkCompleted(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE deletion_requests SET status=?, completed_at=NOW() WHERE user_id=?",
		model.DeletionCompleted, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the request row.
func (r *DeletionRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM deletion_requests WHERE user_id=?", userID)
	return err
}
