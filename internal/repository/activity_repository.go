package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/account-dashboard/internal/model"
)

// ActivityRepo is the append-only audit log writer over `activity_logs`.
// Rows are never updated; the only delete path is the bulk per-user purge.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// Append inserts one activity record with a server-assigned timestamp.
// Callers across the codebase treat a failure here as non-fatal.
func (r *ActivityRepo) Append(ctx context.Context, a model.Activity) error {
	meta := "{}"
	if len(a.Metadata) > 0 {
		b, err := json.Marshal(a.Metadata)
		if err != nil {
			return err
		}
		meta = string(b)
	}
	if a.Status == "" {
		a.Status = model.ActivitySuccess
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO activity_logs (user_id, type, description, status, metadata, created_at) VALUES (?,?,?,?,?,NOW())",
		a.UserID, string(a.Type), a.Description, a.Status, meta)
	return err
}

// ListByUser returns up to limit newest records for a user.
func (r *ActivityRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,type,description,status,metadata,created_at FROM activity_logs WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Activity
	for rows.Next() {
		var (
			a    model.Activity
			typ  string
			meta string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &typ, &a.Description, &a.Status, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = model.ActivityType(typ)
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &a.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountByUser returns the number of records for a user.
func (r *ActivityRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM activity_logs WHERE user_id=?", userID).Scan(&n)
	return n, err
}

// DeleteAllForUser removes records in batches of up to batchSize rows until
// none remain. Batching keeps each statement's lock footprint small during
// an account purge.
func (r *ActivityRepo) DeleteAllForUser(ctx context.Context, userID string, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	var total int64
	for {
		res, err := r.DB.ExecContext(ctx,
			"DELETE FROM activity_logs WHERE user_id=? LIMIT ?", userID, batchSize)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(batchSize) {
			return total, nil
		}
	}
}
