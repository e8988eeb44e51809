package model

import "time"

// Account is an email/password identity as stored in the `accounts`
// table. Google identities have no Account row; they are represented
// only by a Profile keyed by the Google subject.
//
// Verification and reset tokens are stored as SHA-256 digests; the raw
// values only ever travel inside emailed links.
type Account struct {
	ID                    string     `db:"id" json:"id"`
	Email                 string     `db:"email" json:"email"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	Name                  string     `db:"name" json:"name"`
	EmailVerified         bool       `db:"email_verified" json:"email_verified"`
	VerificationToken     string     `db:"verification_token" json:"-"`
	VerificationExpiresAt *time.Time `db:"verification_expires_at" json:"-"`
	ResetToken            string     `db:"reset_token" json:"-"`
	ResetExpiresAt        *time.Time `db:"reset_expires_at" json:"-"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the token handed to the client is kept.
type RefreshToken struct {
	ID        uint64     `db:"id"`
	UserID    string     `db:"user_id"`
	Provider  string     `db:"provider"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// Identity providers recorded on sessions.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)
