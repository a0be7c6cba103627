package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/account-dashboard/internal/config"
	"github.com/iliyamo/account-dashboard/internal/middleware"
	"github.com/iliyamo/account-dashboard/internal/model"
	"github.com/iliyamo/account-dashboard/internal/repository"
	"github.com/iliyamo/account-dashboard/internal/service"
	"github.com/iliyamo/account-dashboard/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Accounts *service.AccountService
	Tokens   *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, accounts *service.AccountService, tokens *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: accounts, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	EmailVerified bool   `json:"email_verified"`
}
type authResp struct {
	Success bool      `json:"success"`
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(p model.Profile) userPart {
	return userPart{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role,
		Status: p.Status, EmailVerified: p.EmailVerified}
}

// issueSession mints an access/refresh pair, persists the refresh hash and
// sets the session cookie the dashboard relies on.
func (h *AuthHandler) issueSession(ctx context.Context, c echo.Context, p model.Profile) (tokenPart, tokenPart, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p.ID, p.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, p.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    access.Token,
		Path:     "/",
		Expires:  access.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.Env == "prod",
	})
	return tokenPart{Token: access.Token, Expires: access.Exp},
		tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, nil // raw refresh back to client
}

// Register: create credential + profile and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "name/email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	p, err := h.Accounts.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	access, refresh, err := h.issueSession(ctx, c, p)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue session failed")
	}
	return c.JSON(http.StatusCreated, authResp{Success: true, User: toUserPart(p), Access: access, Refresh: refresh})
}

// Login: verify against both password stores and return a new pair. Every
// failure mode is reported with the same generic message.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	p, err := h.Accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		// Collapse everything into the generic message so a wrong password
		// and an unknown email are indistinguishable.
		return fail(c, http.StatusUnauthorized, "invalid email or password")
	}
	access, refresh, err := h.issueSession(ctx, c, p)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue session failed")
	}
	return c.JSON(http.StatusOK, authResp{Success: true, User: toUserPart(p), Access: access, Refresh: refresh})
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}
	raw := strings.TrimSpace(req.RefreshToken)
	hash := utils.HashRefreshRaw(raw)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	p, err := h.Accounts.Profiles.GetByID(ctx, userID)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh")
	}
	access, refresh, err := h.issueSession(ctx, c, p)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue session failed")
	}
	return c.JSON(http.StatusOK, authResp{Success: true, User: toUserPart(p), Access: access, Refresh: refresh})
}

// Logout: revoke the presented refresh token, clear the session cookie and
// audit the sign-out. Requires an authenticated session.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req refreshReq
	_ = c.Bind(&req) // body is optional; cookie-only sessions send none

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash := ""
	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		hash = utils.HashRefreshRaw(raw)
	}
	h.Accounts.Logout(ctx, uid, hash)

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me: simple protected endpoint returning the session identity.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}
