package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/account-dashboard/internal/model"
	"github.com/iliyamo/account-dashboard/internal/repository"
)

// ProductHandler serves the product catalog. Reads are open to any
// authenticated user (and cached); writes are admin-only.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(products *repository.ProductRepo) *ProductHandler {
	if products == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Products: products}
}

type productReq struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  uint32 `json:"price_cents"`
	Stock       int32  `json:"stock"`
	Status      string `json:"status"`
}

// List handles GET /v1/products?q=&status=&limit=&offset=.
func (h *ProductHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	status := c.QueryParam("status")
	if status != "" && status != model.ProductActive && status != model.ProductArchived {
		return fail(c, http.StatusBadRequest, "unknown status")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Products.List(ctx, c.QueryParam("q"), status, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": items})
}

// Get handles GET /v1/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": p})
}

// Create handles POST /v1/admin/products.
func (h *ProductHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	if req.SKU == "" || req.Name == "" {
		return fail(c, http.StatusBadRequest, "sku and name required")
	}
	if req.Status == "" {
		req.Status = model.ProductActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Status:      req.Status,
		CreatedBy:   uid,
	}
	if err := h.Products.Create(ctx, &p); err != nil {
		if err == repository.ErrConflict {
			return fail(c, http.StatusConflict, "sku already exists")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "product": p})
}

// Update handles PUT /v1/admin/products/:id.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fail(c, http.StatusBadRequest, "name required")
	}
	if req.Status == "" {
		req.Status = model.ProductActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	p.Name = req.Name
	p.Description = req.Description
	p.PriceCents = req.PriceCents
	p.Stock = req.Stock
	p.Status = req.Status
	if err := h.Products.Update(ctx, p); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": p})
}

// Delete handles DELETE /v1/admin/products/:id.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
