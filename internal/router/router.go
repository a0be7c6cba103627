package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework handles routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/account-dashboard/internal/config"     // app configuration
	"github.com/iliyamo/account-dashboard/internal/handler"    // handlers implementing business logic
	"github.com/iliyamo/account-dashboard/internal/middleware" // JWT authentication and role enforcement
	"github.com/iliyamo/account-dashboard/internal/model"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth    *handler.AuthHandler
	OAuth   *handler.OAuthHandler
	Account *handler.AccountHandler
	Admin   *handler.AdminHandler
	Product *handler.ProductHandler
}

// Register wires all application routes. Unauthenticated lifecycle
// endpoints live under /v1/auth and are rate limited; everything else
// requires a valid access token (bearer header or session cookie), and the
// /v1/admin group additionally requires the admin role.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Public auth endpoints. These are the abuse targets, so the token
	// bucket sits directly on the group.
	auth := e.Group("/v1/auth", rl)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/forgot-password", h.Account.RequestPasswordReset)
	auth.POST("/reset-password", h.Account.ResetPassword)
	auth.POST("/sync-password", h.Account.SyncPassword)
	auth.POST("/verify-email", h.Account.ConfirmEmailVerification)
	if h.OAuth != nil && h.OAuth.Enabled() {
		auth.GET("/google", h.OAuth.Start)
		auth.GET("/google/callback", h.OAuth.Callback)
	}

	// Authenticated endpoints. Any known role passes; finer checks happen
	// per group below.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	v1.Use(middleware.RequireRole(model.RoleAdmin, model.RoleModerator, model.RoleUser))

	v1.POST("/logout", h.Auth.Logout)
	v1.GET("/me", h.Auth.Me)

	account := v1.Group("/account")
	account.GET("/profile", h.Account.GetProfile)
	account.PUT("/profile", h.Account.UpdateProfile)
	account.PATCH("/settings", h.Account.UpdateSettings)
	account.POST("/password", h.Account.UpdatePassword)
	account.POST("/verify-email", h.Account.RequestEmailVerification)
	account.GET("/activity", h.Account.Activity)
	account.POST("/export", h.Account.Export)
	account.POST("/delete", h.Account.RequestDeletion)

	// Catalog reads are cached; any authenticated role may browse.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	v1.GET("/products", h.Product.List, cache)
	v1.GET("/products/:id", h.Product.Get, cache)

	// Admin-only surface: user administration, catalog writes and the
	// pending-deletion processor.
	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", h.Admin.ListUsers)
	admin.PATCH("/users/:id/role", h.Admin.SetUserRole)
	admin.PATCH("/users/:id/status", h.Admin.SetUserStatus)
	admin.GET("/users/:id/activity", h.Admin.UserActivity)
	admin.POST("/deletions/process", h.Admin.ProcessPendingDeletions)
	admin.POST("/products", h.Product.Create)
	admin.PUT("/products/:id", h.Product.Update)
	admin.DELETE("/products/:id", h.Product.Delete)
}
