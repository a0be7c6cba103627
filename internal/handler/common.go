package handler // handler defines http handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/account-dashboard/internal/repository"
)

// getUserID extracts the authenticated user's UUID from echo.Context.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid user_id in context")
}

// getRole extracts the authenticated user's role from echo.Context.
func getRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// fail writes the uniform failure envelope.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// respondError maps normalized repository errors onto user-safe responses.
// Anything unrecognized becomes a generic 500; raw store errors never reach
// the client.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, "email already in use")
	case errors.Is(err, repository.ErrWeakPassword):
		return fail(c, http.StatusBadRequest, "password is too weak")
	case errors.Is(err, repository.ErrInvalidCode):
		return fail(c, http.StatusBadRequest, "invalid or expired code")
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "conflict")
	default:
		return fail(c, http.StatusInternalServerError, "something went wrong")
	}
}
