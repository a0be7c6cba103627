package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/account-dashboard/internal/config"
	"github.com/iliyamo/account-dashboard/internal/model"
	"github.com/iliyamo/account-dashboard/internal/repository"
	"github.com/iliyamo/account-dashboard/internal/storage"
	"github.com/iliyamo/account-dashboard/internal/utils"
)

// AccountService sequences every lifecycle operation across the credential
// store, the profile store, the activity log and blob storage. There is no
// transaction spanning the stores; each operation fixes an order so that a
// failure leaves the least surprising partial state, and login carries the
// one runtime reconciliation path for diverged password hashes.
type AccountService struct {
	Cfg         config.Config
	Credentials *repository.CredentialRepo
	Profiles    *repository.UserRepo
	Activity    *repository.ActivityRepo
	Deletions   *repository.DeletionRepo
	Codes       *repository.ActionCodeRepo
	Tokens      *repository.TokenRepo
	Blobs       storage.BlobStore
}

func NewAccountService(cfg config.Config, cred *repository.CredentialRepo, users *repository.UserRepo,
	activity *repository.ActivityRepo, deletions *repository.DeletionRepo,
	codes *repository.ActionCodeRepo, tokens *repository.TokenRepo, blobs storage.BlobStore) *AccountService {
	return &AccountService{
		Cfg:         cfg,
		Credentials: cred,
		Profiles:    users,
		Activity:    activity,
		Deletions:   deletions,
		Codes:       codes,
		Tokens:      tokens,
		Blobs:       blobs,
	}
}

// logActivity appends an audit record. Activity logging is best-effort
// everywhere: a failure is logged and never blocks or rolls back the
// operation that triggered it.
func (s *AccountService) logActivity(ctx context.Context, userID string, typ model.ActivityType, desc, status string, meta map[string]string) {
	err := s.Activity.Append(ctx, model.Activity{
		UserID:      userID,
		Type:        typ,
		Description: desc,
		Status:      status,
		Metadata:    meta,
	})
	if err != nil {
		log.Printf("activity: append %s for user %s failed: %v", typ, userID, err)
	}
}

// Register creates the credential record first, then the profile document
// with an application-side bcrypt copy of the password, then audits. If the
// profile write fails after the credential was created the system is left
// with an orphaned credential and no profile; the caller gets a generic
// error and no rollback is attempted.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (model.Profile, error) {
	id, err := s.Credentials.Create(ctx, email, password, name)
	if err != nil {
		return model.Profile{}, err // ErrEmailExists / ErrWeakPassword surface as-is
	}

	hash, err := utils.HashPassword(password, s.Cfg.BcryptCost)
	if err != nil {
		log.Printf("register: hashing for profile of %s failed, credential %s is orphaned: %v", email, id, err)
		return model.Profile{}, err
	}
	p := model.Profile{
		ID:           id,
		Name:         name,
		Email:        email,
		Role:         model.RoleUser,
		Status:       model.StatusActive,
		PasswordHash: hash,
	}
	if err := s.Profiles.Create(ctx, p); err != nil {
		log.Printf("register: profile write for %s failed, credential %s is orphaned: %v", email, id, err)
		return model.Profile{}, err
	}

	s.logActivity(ctx, id, model.ActivityRegistration, "account registered", model.ActivitySuccess, nil)

	created, err := s.Profiles.GetByID(ctx, id)
	if err != nil {
		return p, nil // row exists; reread is cosmetic
	}
	return created, nil
}

// Login authenticates against the PROFILE's bcrypt hash first, then
// establishes the provider-side session via the credential store. Every
// failure mode collapses into ErrInvalidCredentials so that a wrong
// password is indistinguishable from an unknown email.
//
// When the local hash matches but the credential-side sign-in rejects the
// password, the two stores have diverged (one side was updated without the
// other). The sync fallback rewrites the credential hash from the verified
// password and retries the sign-in exactly once.
func (s *AccountService) Login(ctx context.Context, email, password string) (model.Profile, error) {
	cred, err := s.Credentials.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return model.Profile{}, repository.ErrInvalidCredentials
		}
		return model.Profile{}, err
	}

	p, err := s.Profiles.GetByID(ctx, cred.ID)
	if err != nil {
		if err == repository.ErrNotFound {
			return model.Profile{}, repository.ErrInvalidCredentials
		}
		return model.Profile{}, err
	}
	if p.PasswordHash == "" || !utils.VerifyPassword(p.PasswordHash, password) {
		s.logActivity(ctx, cred.ID, model.ActivityLogin, "failed login attempt", model.ActivityFailure, nil)
		return model.Profile{}, repository.ErrInvalidCredentials
	}
	if p.Status == model.StatusDisabled {
		return model.Profile{}, repository.ErrInvalidCredentials
	}

	if _, err := s.Credentials.SignIn(ctx, email, password); err != nil {
		if err != repository.ErrInvalidCredentials {
			return model.Profile{}, err
		}
		// Local hash verified but credential store disagrees: resync and
		// retry once.
		log.Printf("login: password stores diverged for %s, resyncing credential hash", cred.ID)
		if err := s.Credentials.UpdatePassword(ctx, cred.ID, password); err != nil {
			return model.Profile{}, repository.ErrInvalidCredentials
		}
		if _, err := s.Credentials.SignIn(ctx, email, password); err != nil {
			return model.Profile{}, repository.ErrInvalidCredentials
		}
	}

	now := time.Now().UTC()
	if err := s.Profiles.TouchLogin(ctx, p.ID, now); err != nil {
		log.Printf("login: touch last_login_at for %s failed: %v", p.ID, err)
	}
	p.LastLoginAt = &now

	s.logActivity(ctx, p.ID, model.ActivityLogin, "signed in", model.ActivitySuccess, nil)
	return p, nil
}

// SyncPassword verifies a password against the profile hash and, when it
// matches, rewrites the credential-side hash to agree. This is the exported
// form of login's reconciliation path for callers that hit a divergence
// out-of-band.
func (s *AccountService) SyncPassword(ctx context.Context, email, password string) error {
	p, err := s.Profiles.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return repository.ErrInvalidCredentials
		}
		return err
	}
	if p.PasswordHash == "" || !utils.VerifyPassword(p.PasswordHash, password) {
		return repository.ErrInvalidCredentials
	}
	return s.Credentials.UpdatePassword(ctx, p.ID, password)
}

// ChangePassword verifies the current password against the profile hash,
// then updates the credential store BEFORE the profile copy. If the
// credential store rejects the password (weak password), the local store is
// untouched and consistent; if the local write fails after the credential
// update, the stores diverge until login resyncs them.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	p, err := s.Profiles.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if p.PasswordHash == "" || !utils.VerifyPassword(p.PasswordHash, current) {
		return repository.ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword, s.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Credentials.UpdatePassword(ctx, userID, newPassword); err != nil {
		return err // ErrWeakPassword surfaces; local hash untouched
	}
	if err := s.Profiles.UpdatePasswordHash(ctx, userID, hash); err != nil {
		log.Printf("change-password: profile hash write for %s failed after credential update, stores diverged: %v", userID, err)
		return err
	}

	s.logActivity(ctx, userID, model.ActivityPasswordChange, "password changed", model.ActivitySuccess, nil)
	return nil
}

// RequestPasswordReset issues a reset link for the email. It NEVER reports
// whether the account exists: an unknown email silently succeeds, and the
// best-effort audit write is swallowed on failure. Mail delivery is outside
// this service; the link is logged for the operator.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	cred, err := s.Credentials.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil // enumeration resistance: pretend success
		}
		log.Printf("reset-request: credential lookup failed: %v", err)
		return nil
	}

	code, err := utils.NewActionCode(s.Cfg.ActionCodeTTLMin)
	if err != nil {
		log.Printf("reset-request: code generation failed: %v", err)
		return nil
	}
	if err := s.Codes.Store(ctx, utils.HashRefreshRaw(code.Raw), cred.ID, cred.Email,
		repository.PurposePasswordReset, code.Exp); err != nil {
		log.Printf("reset-request: code store failed: %v", err)
		return nil
	}

	link := s.Cfg.AppBaseURL + "/reset-password?oobCode=" + code.Raw
	log.Printf("reset-request: issued reset link for %s: %s", cred.ID, link)

	s.logActivity(ctx, cred.ID, model.ActivityPasswordResetRequested, "password reset requested", model.ActivityPending, nil)
	return nil
}

// ResetPassword redeems a reset code: verify, confirm the new password with
// the credential store, then synchronize the profile's hash and consume the
// code. The credential store is again updated first for the same reason as
// ChangePassword.
func (s *AccountService) ResetPassword(ctx context.Context, oobCode, newPassword string) error {
	codeHash := utils.HashRefreshRaw(oobCode)
	userID, err := s.Codes.Verify(ctx, codeHash, repository.PurposePasswordReset)
	if err != nil {
		return err // ErrInvalidCode
	}

	if err := s.Credentials.UpdatePassword(ctx, userID, newPassword); err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword, s.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Profiles.UpdatePasswordHash(ctx, userID, hash); err != nil {
		log.Printf("reset: profile hash write for %s failed after credential update, stores diverged: %v", userID, err)
		return err
	}
	if err := s.Codes.Consume(ctx, codeHash); err != nil {
		log.Printf("reset: consuming code for %s failed: %v", userID, err)
	}
	// All sessions die with the old password.
	if err := s.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		log.Printf("reset: revoking refresh tokens for %s failed: %v", userID, err)
	}

	s.logActivity(ctx, userID, model.ActivityPasswordResetCompleted, "password reset completed", model.ActivitySuccess, nil)
	return nil
}

// RequestEmailVerification issues a verification link for the user. Like
// password reset, delivery is out of scope and the link is logged.
func (s *AccountService) RequestEmailVerification(ctx context.Context, userID string) error {
	cred, err := s.Credentials.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if cred.EmailVerified {
		return nil
	}
	code, err := utils.NewActionCode(s.Cfg.ActionCodeTTLMin)
	if err != nil {
		return err
	}
	if err := s.Codes.Store(ctx, utils.HashRefreshRaw(code.Raw), cred.ID, cred.Email,
		repository.PurposeVerifyEmail, code.Exp); err != nil {
		return err
	}
	link := s.Cfg.AppBaseURL + "/verify-email?oobCode=" + code.Raw
	log.Printf("verify-request: issued verification link for %s: %s", cred.ID, link)
	return nil
}

// ConfirmEmailVerification redeems a verification code and flips the
// verified flag on both stores.
func (s *AccountService) ConfirmEmailVerification(ctx context.Context, oobCode string) error {
	codeHash := utils.HashRefreshRaw(oobCode)
	userID, err := s.Codes.Verify(ctx, codeHash, repository.PurposeVerifyEmail)
	if err != nil {
		return err
	}
	if err := s.Credentials.SetEmailVerified(ctx, userID, true); err != nil {
		return err
	}
	if err := s.Profiles.SetEmailVerified(ctx, userID, true); err != nil {
		log.Printf("verify: profile flag write for %s failed after credential update: %v", userID, err)
		return err
	}
	if err := s.Codes.Consume(ctx, codeHash); err != nil {
		log.Printf("verify: consuming code for %s failed: %v", userID, err)
	}

	s.logActivity(ctx, userID, model.ActivityEmailVerification, "email verified", model.ActivitySuccess, nil)
	return nil
}

// UpdateProfile writes the editable profile fields. When image bytes are
// supplied they are uploaded to blob storage under the user's prefix and
// the stored URL points at the new object.
func (s *AccountService) UpdateProfile(ctx context.Context, userID, name, bio string, image []byte, imageType string) (model.Profile, error) {
	p, err := s.Profiles.GetByID(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	imageURL := p.Image
	if len(image) > 0 {
		ext := "jpg"
		if imageType == "image/png" {
			ext = "png"
		}
		key := storage.ImageKey(userID, ext)
		if err := s.Blobs.Upload(ctx, key, imageType, image); err != nil {
			return model.Profile{}, err
		}
		url, err := s.Blobs.SignedURL(ctx, key, 7*24*time.Hour)
		if err != nil {
			return model.Profile{}, err
		}
		imageURL = url
	}

	if err := s.Profiles.UpdateDetails(ctx, userID, name, bio, imageURL); err != nil {
		return model.Profile{}, err
	}
	if name != p.Name {
		// Keep the credential store's display name in step, best-effort.
		if err := s.Credentials.UpdateDisplayName(ctx, userID, name); err != nil {
			log.Printf("profile-update: display name sync for %s failed: %v", userID, err)
		}
	}

	s.logActivity(ctx, userID, model.ActivityProfileUpdate, "profile updated", model.ActivitySuccess, nil)
	return s.Profiles.GetByID(ctx, userID)
}

// SetTwoFactor toggles the profile's 2FA flag and audits the change.
func (s *AccountService) SetTwoFactor(ctx context.Context, userID string, enabled bool) error {
	if err := s.Profiles.SetHas2FA(ctx, userID, enabled); err != nil {
		return err
	}
	desc := "two-factor disabled"
	if enabled {
		desc = "two-factor enabled"
	}
	s.logActivity(ctx, userID, model.ActivitySettingsChange, desc, model.ActivitySuccess, nil)
	return nil
}

// Logout revokes the presented refresh token and audits the sign-out.
func (s *AccountService) Logout(ctx context.Context, userID, refreshHash string) {
	if refreshHash != "" {
		if err := s.Tokens.RevokeByHash(ctx, refreshHash); err != nil {
			log.Printf("logout: revoke for %s failed: %v", userID, err)
		}
	}
	s.logActivity(ctx, userID, model.ActivityLogout, "signed out", model.ActivitySuccess, nil)
}
