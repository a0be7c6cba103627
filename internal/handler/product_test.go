package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/account-dashboard/internal/repository"
)

func TestProductGetResponseUsesSnakeCaseKeys(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewProductHandler(repository.NewProductRepo(db))

	mock.ExpectQuery("SELECT id,sku,name,description,price_cents,stock,status,created_by,created_at,updated_at FROM products WHERE id=? LIMIT 1").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "name", "description", "price_cents",
			"stock", "status", "created_by", "created_at", "updated_at"}).
			AddRow(7, "SKU-7", "Widget", "", 1299, 10, "active", "uid-1", time.Now(), time.Now()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/products/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Get(c))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	product := body["product"].(map[string]any)
	assert.Equal(t, "SKU-7", product["sku"])
	assert.Equal(t, float64(1299), product["price_cents"])
	assert.Equal(t, "uid-1", product["created_by"])
	assert.NotContains(t, product, "PriceCents")
	assert.NoError(t, mock.ExpectationsWereMet())
}
