package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/account-dashboard/internal/repository"
	"github.com/iliyamo/account-dashboard/internal/service"
)

// AccountHandler exposes profile and lifecycle endpoints for the signed-in
// user: password management, email verification, data export and account
// deletion.
type AccountHandler struct {
	Accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{Accounts: accounts}
}

// GetProfile handles GET /v1/account/profile.
func (h *AccountHandler) GetProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Accounts.Profiles.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"profile": echo.Map{
			"id":             p.ID,
			"name":           p.Name,
			"email":          p.Email,
			"role":           p.Role,
			"status":         p.Status,
			"email_verified": p.EmailVerified,
			"has_2fa":        p.Has2FA,
			"image":          p.Image,
			"bio":            p.Bio,
			"created_at":     p.CreatedAt,
			"last_login_at":  p.LastLoginAt,
		},
	})
}

// UpdateProfile handles PUT /v1/account/profile. The optional image is sent
// base64-encoded; it lands in blob storage under the user's prefix.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req struct {
		Name      string `json:"name"`
		Bio       string `json:"bio"`
		Image     string `json:"image"`      // base64 payload, optional
		ImageType string `json:"image_type"` // image/jpeg or image/png
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	var image []byte
	if req.Image != "" {
		image, err = base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			return fail(c, http.StatusBadRequest, "image must be base64")
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	p, err := h.Accounts.UpdateProfile(ctx, uid, req.Name, req.Bio, image, req.ImageType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "image": p.Image})
}

// UpdateSettings handles PATCH /v1/account/settings.
func (h *AccountHandler) UpdateSettings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req struct {
		Has2FA *bool `json:"has_2fa"`
	}
	if err := c.Bind(&req); err != nil || req.Has2FA == nil {
		return fail(c, http.StatusBadRequest, "has_2fa required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.SetTwoFactor(ctx, uid, *req.Has2FA); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpdatePassword handles POST /v1/account/password. Confirmation mismatch
// is a validation error: no backend call is made.
func (h *AccountHandler) UpdatePassword(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
		Confirm string `json:"confirm_password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Current == "" || req.New == "" {
		return fail(c, http.StatusBadRequest, "current and new password required")
	}
	if req.New != req.Confirm {
		return fail(c, http.StatusBadRequest, "passwords do not match")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Accounts.ChangePassword(ctx, uid, req.Current, req.New); err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			return fail(c, http.StatusBadRequest, "current password incorrect")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// RequestPasswordReset handles POST /v1/auth/forgot-password. Always
// answers success so account existence cannot be probed.
func (h *AccountHandler) RequestPasswordReset(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return fail(c, http.StatusBadRequest, "email required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	_ = h.Accounts.RequestPasswordReset(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ResetPassword handles POST /v1/auth/reset-password.
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var req struct {
		OOBCode  string `json:"oobCode"`
		Password string `json:"password"`
		Confirm  string `json:"confirm_password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.OOBCode == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "oobCode and password required")
	}
	if req.Confirm != "" && req.Password != req.Confirm {
		return fail(c, http.StatusBadRequest, "passwords do not match")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Accounts.ResetPassword(ctx, req.OOBCode, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// SyncPassword handles POST /v1/auth/sync-password: the exported
// reconciliation path for diverged password stores.
func (h *AccountHandler) SyncPassword(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Accounts.SyncPassword(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// RequestEmailVerification handles POST /v1/account/verify-email.
func (h *AccountHandler) RequestEmailVerification(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Accounts.RequestEmailVerification(ctx, uid); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ConfirmEmailVerification handles POST /v1/auth/verify-email.
func (h *AccountHandler) ConfirmEmailVerification(c echo.Context) error {
	var req struct {
		OOBCode string `json:"oobCode"`
	}
	if err := c.Bind(&req); err != nil || req.OOBCode == "" {
		return fail(c, http.StatusBadRequest, "oobCode required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Accounts.ConfirmEmailVerification(ctx, req.OOBCode); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Activity handles GET /v1/account/activity?limit=N.
func (h *AccountHandler) Activity(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	logs, err := h.Accounts.Activity.ListByUser(ctx, uid, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "activity": logs})
}

// Export handles POST /v1/account/export {format: json|csv}. The response
// carries a time-limited download URL.
func (h *AccountHandler) Export(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req struct {
		Format string `json:"format"`
	}
	_ = c.Bind(&req)
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != "csv" {
		format = "json"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	url, err := h.Accounts.ExportUserData(ctx, uid, format)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "url": url, "format": format})
}

// RequestDeletion handles POST /v1/account/delete {immediate}. Deferred
// requests are queued for the admin-run processor; immediate ones purge
// synchronously and the session is gone with the account.
func (h *AccountHandler) RequestDeletion(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req struct {
		Immediate bool `json:"immediate"`
	}
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	if err := h.Accounts.RequestDeletion(ctx, uid, req.Immediate); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "immediate": req.Immediate})
}
