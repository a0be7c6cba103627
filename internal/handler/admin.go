package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/account-dashboard/internal/model"
	"github.com/iliyamo/account-dashboard/internal/service"
)

// AdminHandler exposes user administration and the pending-deletion
// processor. Routes are mounted behind RequireRole("admin"); the service
// layer re-checks the role on the destructive path anyway.
type AdminHandler struct {
	Accounts *service.AccountService
}

func NewAdminHandler(accounts *service.AccountService) *AdminHandler {
	return &AdminHandler{Accounts: accounts}
}

// ListUsers handles GET /v1/admin/users?limit=&offset=.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profiles, err := h.Accounts.Profiles.List(ctx, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	users := make([]echo.Map, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, echo.Map{
			"id":             p.ID,
			"name":           p.Name,
			"email":          p.Email,
			"role":           p.Role,
			"status":         p.Status,
			"email_verified": p.EmailVerified,
			"created_at":     p.CreatedAt,
			"last_login_at":  p.LastLoginAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "users": users})
}

// SetUserRole handles PATCH /v1/admin/users/:id/role.
func (h *AdminHandler) SetUserRole(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	switch req.Role {
	case model.RoleAdmin, model.RoleModerator, model.RoleUser:
	default:
		return fail(c, http.StatusBadRequest, "unknown role")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Accounts.Profiles.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	if err := h.Accounts.Profiles.SetRole(ctx, id, req.Role); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// SetUserStatus handles PATCH /v1/admin/users/:id/status. Disabling a
// profile also disables provider-side sign-in so both stores agree.
func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	switch req.Status {
	case model.StatusActive, model.StatusDisabled, model.StatusPending:
	default:
		return fail(c, http.StatusBadRequest, "unknown status")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Accounts.Profiles.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	if err := h.Accounts.Profiles.SetStatus(ctx, id, req.Status); err != nil {
		return respondError(c, err)
	}
	if err := h.Accounts.Credentials.SetDisabled(ctx, id, req.Status == model.StatusDisabled); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UserActivity handles GET /v1/admin/users/:id/activity.
func (h *AdminHandler) UserActivity(c echo.Context) error {
	id := c.Param("id")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	logs, err := h.Accounts.Activity.ListByUser(ctx, id, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "activity": logs})
}

// ProcessPendingDeletions handles POST /v1/admin/deletions/process: purge
// every account with a pending deletion request.
func (h *AdminHandler) ProcessPendingDeletions(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Minute)
	defer cancel()

	processed, failed, err := h.Accounts.ProcessPendingDeletions(ctx, uid, getRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"processed": processed,
		"errors":    failed,
	})
}
