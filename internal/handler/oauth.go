package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/iliyamo/account-dashboard/internal/config"
	"github.com/iliyamo/account-dashboard/internal/model"
	"github.com/iliyamo/account-dashboard/internal/repository"
	"github.com/iliyamo/account-dashboard/internal/service"
	"github.com/iliyamo/account-dashboard/internal/utils"
)

const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// OAuthHandler implements Google sign-in. The callback exchanges the code,
// reads the userinfo claims and signs the user in, creating the credential
// and profile records on first contact. OAuth accounts get a random local
// password so the dual-store invariants hold for them too.
type OAuthHandler struct {
	Cfg      config.Config
	Accounts *service.AccountService
	Auth     *AuthHandler
	oauth    *oauth2.Config
}

func NewOAuthHandler(cfg config.Config, accounts *service.AccountService, auth *AuthHandler) *OAuthHandler {
	return &OAuthHandler{
		Cfg:      cfg,
		Accounts: accounts,
		Auth:     auth,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
	}
}

// Enabled reports whether OAuth routes should be mounted.
func (h *OAuthHandler) Enabled() bool { return h.Cfg.GoogleClientID != "" }

type googleClaims struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Verified bool   `json:"email_verified"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}

// Start handles GET /v1/auth/google: redirect to the consent screen with a
// state nonce bound to a short-lived cookie.
func (h *OAuthHandler) Start(c echo.Context) error {
	state, err := utils.NewActionCode(10)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "something went wrong")
	}
	c.SetCookie(&http.Cookie{
		Name:     "oauth_state",
		Value:    state.Raw,
		Path:     "/",
		Expires:  state.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state.Raw))
}

// Callback handles GET /v1/auth/google/callback.
func (h *OAuthHandler) Callback(c echo.Context) error {
	stateCookie, err := c.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return fail(c, http.StatusBadRequest, "state mismatch")
	}
	code := c.QueryParam("code")
	if code == "" {
		return fail(c, http.StatusBadRequest, "code required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	tok, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		log.Printf("oauth: code exchange failed: %v", err)
		return fail(c, http.StatusUnauthorized, "sign-in failed")
	}
	claims, err := h.fetchClaims(ctx, tok)
	if err != nil {
		log.Printf("oauth: userinfo fetch failed: %v", err)
		return fail(c, http.StatusUnauthorized, "sign-in failed")
	}
	if claims.Email == "" {
		return fail(c, http.StatusUnauthorized, "sign-in failed")
	}

	p, err := h.findOrCreate(ctx, claims)
	if err != nil {
		return respondError(c, err)
	}

	access, refresh, err := h.Auth.issueSession(ctx, c, p)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue session failed")
	}
	return c.JSON(http.StatusOK, authResp{Success: true, User: toUserPart(p), Access: access, Refresh: refresh})
}

func (h *OAuthHandler) fetchClaims(ctx context.Context, tok *oauth2.Token) (googleClaims, error) {
	var claims googleClaims
	client := h.oauth.Client(ctx, tok)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return claims, err
	}
	defer resp.Body.Close()
	err = json.NewDecoder(resp.Body).Decode(&claims)
	return claims, err
}

// findOrCreate resolves the Google identity to a local account, registering
// one with a random password on first sign-in.
func (h *OAuthHandler) findOrCreate(ctx context.Context, claims googleClaims) (model.Profile, error) {
	cred, err := h.Accounts.Credentials.GetByEmail(ctx, claims.Email)
	if err == nil {
		p, err := h.Accounts.Profiles.GetByID(ctx, cred.ID)
		if err != nil {
			return model.Profile{}, err
		}
		now := time.Now().UTC()
		if err := h.Accounts.Profiles.TouchLogin(ctx, p.ID, now); err != nil {
			log.Printf("oauth: touch last_login_at for %s failed: %v", p.ID, err)
		}
		return p, nil
	}
	if err != repository.ErrNotFound {
		return model.Profile{}, err
	}

	// First contact: a throwaway random password keeps both stores in
	// their usual shape; the user can reset it later.
	pw, err := utils.NewActionCode(1)
	if err != nil {
		return model.Profile{}, err
	}
	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	p, err := h.Accounts.Register(ctx, name, claims.Email, pw.Raw)
	if err != nil {
		return model.Profile{}, err
	}
	if claims.Verified {
		if err := h.Accounts.Credentials.SetEmailVerified(ctx, p.ID, true); err != nil {
			log.Printf("oauth: credential verified flag for %s failed: %v", p.ID, err)
		}
		if err := h.Accounts.Profiles.SetEmailVerified(ctx, p.ID, true); err != nil {
			log.Printf("oauth: profile verified flag for %s failed: %v", p.ID, err)
		}
	}
	return p, nil
}
