package model

import "time"

// Product statuses.
const (
	ProductActive   = "active"
	ProductArchived = "archived"
)

// Product is a catalog row in the `products` table. Catalog writes are
// restricted to admins; reads are open to any authenticated user.
type Product struct {
	ID          uint64    `json:"id"`          // products.id
	SKU         string    `json:"sku"`         // products.sku (unique)
	Name        string    `json:"name"`        // products.name
	Description string    `json:"description"` // products.description
	PriceCents  uint32    `json:"price_cents"` // products.price_cents
	Stock       int32     `json:"stock"`       // products.stock
	Status      string    `json:"status"`      // products.status: active|archived
	CreatedBy   string    `json:"created_by"`  // products.created_by (user UUID)
	CreatedAt   time.Time `json:"created_at"`  // products.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // products.updated_at
}
