package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/account-dashboard/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, decorate func(*http.Request)) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthBearerHeader(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "uid-1", "user", 5)
	require.NoError(t, err)

	rec, c := runJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uid-1", c.Get("user_id"))
	assert.Equal(t, "user", c.Get("role"))
}

func TestJWTAuthSessionCookieFallback(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "uid-2", "admin", 5)
	require.NoError(t, err)

	rec, c := runJWT(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok.Token})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uid-2", c.Get("user_id"))
	assert.Equal(t, "admin", c.Get("role"))
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec, _ := runJWT(t, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", "uid-1", "user", 5)
	require.NoError(t, err)

	rec, _ := runJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := RequireRole("admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	cases := []struct {
		name string
		role any
		want int
	}{
		{"allowed", "admin", http.StatusOK},
		{"denied", "user", http.StatusForbidden},
		{"missing", nil, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != nil {
				c.Set("role", tc.role)
			}
			require.NoError(t, handler(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
