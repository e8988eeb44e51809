package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fridge-share/internal/model"
)

// AccountRepo persists email/password identities in the accounts table.
type AccountRepo struct{ db *sqlx.DB }

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = `id, email, password_hash, name, email_verified,
	COALESCE(verification_token, '') AS verification_token, verification_expires_at,
	COALESCE(reset_token, '') AS reset_token, reset_expires_at, created_at, updated_at`

// Create inserts a. Email is stored lower-cased.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	t := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, name, email_verified, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?)`,
		a.ID, a.Email, a.PasswordHash, a.Name, a.EmailVerified, t, t)
	if err != nil {
		return writeErr(err)
	}
	a.CreatedAt, a.UpdatedAt = t, t
	return nil
}

func (r *AccountRepo) get(ctx context.Context, where string, arg any) (*model.Account, error) {
	var a model.Account
	err := r.db.GetContext(ctx, &a, "SELECT "+accountColumns+" FROM accounts WHERE "+where+" LIMIT 1", arg)
	if err != nil {
		return nil, readErr(err)
	}
	return &a, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.get(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *AccountRepo) GetByVerificationToken(ctx context.Context, tokenHash string) (*model.Account, error) {
	return r.get(ctx, "verification_token = ?", tokenHash)
}

func (r *AccountRepo) GetByResetToken(ctx context.Context, tokenHash string) (*model.Account, error) {
	return r.get(ctx, "reset_token = ?", tokenHash)
}

func (r *AccountRepo) SetVerificationToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE accounts SET verification_token = ?, verification_expires_at = ?, updated_at = ? WHERE id = ?`,
		null(tokenHash), expiresAt.UTC(), now(), id))
}

func (r *AccountRepo) MarkVerified(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE accounts SET email_verified = TRUE, verification_token = NULL, verification_expires_at = NULL, updated_at = ?
		 WHERE id = ?`, now(), id))
}

func (r *AccountRepo) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE accounts SET reset_token = ?, reset_expires_at = ?, updated_at = ? WHERE id = ?`,
		null(tokenHash), expiresAt.UTC(), now(), id))
}

func (r *AccountRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, reset_token = NULL, reset_expires_at = NULL, updated_at = ? WHERE id = ?`,
		passwordHash, now(), id))
}
