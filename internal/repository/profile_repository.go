package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fridge-share/internal/model"
)

// ProfileRepo persists the per-user profile anchor.
type ProfileRepo struct{ db *sqlx.DB }

func NewProfileRepo(db *sqlx.DB) *ProfileRepo { return &ProfileRepo{db: db} }

const profileColumns = `user_id, email, name, fridge_id, created_at, updated_at`

// Create inserts p. A second profile for the same user is ErrDuplicate.
func (r *ProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	t := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, email, name, fridge_id, created_at, updated_at) VALUES (?,?,?,?,?,?)`,
		p.UserID, p.Email, p.Name, p.FridgeID, t, t)
	if err != nil {
		return writeErr(err)
	}
	p.CreatedAt, p.UpdatedAt = t, t
	return nil
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID); err != nil {
		return nil, readErr(err)
	}
	return &p, nil
}

// GetByEmail returns the oldest profile carrying email.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrNotFound
	}
	var p model.Profile
	err := r.db.GetContext(ctx, &p,
		`SELECT `+profileColumns+` FROM profiles WHERE email = ? ORDER BY created_at LIMIT 1`, email)
	if err != nil {
		return nil, readErr(err)
	}
	return &p, nil
}

// UpdateContact overwrites the non-empty fields.
func (r *ProfileRepo) UpdateContact(ctx context.Context, userID, email, name string) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE profiles SET email = IF(? = '', email, ?), name = IF(? = '', name, ?), updated_at = ? WHERE user_id = ?`,
		email, email, name, name, now(), userID))
}

func (r *ProfileRepo) SetFridge(ctx context.Context, userID, fridgeID string) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE profiles SET fridge_id = ?, updated_at = ? WHERE user_id = ?`, fridgeID, now(), userID))
}

func (r *ProfileRepo) List(ctx context.Context) ([]model.Profile, error) {
	out := []model.Profile{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+profileColumns+` FROM profiles ORDER BY user_id`)
	return out, err
}
