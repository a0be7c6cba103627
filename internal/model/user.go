package model

import "time"

// Roles assigned to profiles. Admins manage the catalog and other users,
// moderators may review activity, everyone else is a regular user.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// Profile statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
	StatusPending  = "pending"
)

// Credential is the identity-provider side of an account: the authoritative
// auth record stored in the `credentials` table. The profile row in `users`
// mirrors the same ID. The password hash here is managed exclusively through
// the credential repository; the application-level copy lives on Profile.
//
// Fields:
//  ID            – provider-assigned user ID (UUID), shared with users.id.
//  Email         – unique email address.
//  PasswordHash  – bcrypt hash owned by the credential store.
//  DisplayName   – name supplied at registration.
//  EmailVerified – whether the address has been confirmed.
//  Disabled      – sign-in is refused while set.
//  CreatedAt     – timestamp of creation.
type Credential struct {
	ID            string    // credentials.user_id
	Email         string    // credentials.email
	PasswordHash  string    // credentials.password_hash
	DisplayName   string    // credentials.display_name
	EmailVerified bool      // credentials.email_verified
	Disabled      bool      // credentials.disabled
	CreatedAt     time.Time // credentials.created_at
}

// Profile represents the application-owned user document stored in the
// `users` table, keyed by the same UUID as the credential record. The
// shared key is the only link between the two stores; there is no
// transaction spanning them.
//
// PasswordHash is an independent bcrypt copy used for local verification
// during login. It should always reflect the most recent password set
// through this application, but can drift from the credential store if only
// one side is updated; login runs a one-shot sync when that happens.
type Profile struct {
	ID            string     // users.id
	Name          string     // users.name
	Email         string     // users.email (denormalized from credentials)
	Role          string     // users.role: admin|moderator|user
	Status        string     // users.status: active|disabled|pending
	PasswordHash  string     // users.password_hash (application copy)
	EmailVerified bool       // users.email_verified
	Has2FA        bool       // users.has_2fa
	Image         string     // users.image (profile picture URL)
	Bio           string     // users.bio
	CreatedAt     time.Time  // users.created_at
	UpdatedAt     time.Time  // users.updated_at
	LastLoginAt   *time.Time // users.last_login_at (nullable)
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA‑256 hash of the token value is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
