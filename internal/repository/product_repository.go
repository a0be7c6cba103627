package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/account-dashboard/internal/model"
)

// ProductRepo provides catalog persistence over the `products` table.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productCols = "id,sku,name,description,price_cents,stock,status,created_by,created_at,updated_at"

// Create inserts a product and fills in its assigned ID. A duplicate SKU
// maps to ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (sku,name,description,price_cents,stock,status,created_by) VALUES (?,?,?,?,?,?,?)",
		strings.TrimSpace(p.SKU), p.Name, p.Description, p.PriceCents, p.Stock, p.Status, p.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	var p model.Product
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.Status,
			&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	return p, err
}

// List returns a page of products, optionally filtered by a name/sku search
// term and status. Ordered newest first.
func (r *ProductRepo) List(ctx context.Context, q, status string, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := "SELECT " + productCols + " FROM products"
	var (
		where []string
		args  []any
	)
	if q = strings.TrimSpace(q); q != "" {
		where = append(where, "(name LIKE ? OR sku LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	if status != "" {
		where = append(where, "status=?")
		args = append(args, status)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Stock,
			&p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update writes the editable fields of a product.
func (r *ProductRepo) Update(ctx context.Context, p model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET name=?, description=?, price_cents=?, stock=?, status=?, updated_at=NOW() WHERE id=?",
		p.Name, p.Description, p.PriceCents, p.Stock, p.Status, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product row.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
