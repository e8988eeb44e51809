package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fridge-share/internal/model"
)

// InviteRepo persists invites keyed by their unique token. Status and
// fridge_id only change through compare-and-set updates.
type InviteRepo struct{ db *sqlx.DB }

func NewInviteRepo(db *sqlx.DB) *InviteRepo { return &InviteRepo{db: db} }

const inviteColumns = `id, token, inviter_id, invitee_email, invite_type, fridge_name,
	COALESCE(fridge_id, '') AS fridge_id, status, expires_at, created_at, updated_at`

func (r *InviteRepo) Create(ctx context.Context, inv *model.Invite) error {
	inv.InviteeEmail = strings.ToLower(strings.TrimSpace(inv.InviteeEmail))
	t := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invites (id, token, inviter_id, invitee_email, invite_type, fridge_name, fridge_id, status, expires_at, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		inv.ID, inv.Token, inv.InviterID, inv.InviteeEmail, inv.Type, inv.FridgeName, null(inv.FridgeID),
		inv.Status, inv.ExpiresAt.UTC(), t, t)
	if err != nil {
		return writeErr(err)
	}
	inv.CreatedAt, inv.UpdatedAt = t, t
	return nil
}

func (r *InviteRepo) GetByToken(ctx context.Context, token string) (*model.Invite, error) {
	var inv model.Invite
	if err := r.db.GetContext(ctx, &inv, `SELECT `+inviteColumns+` FROM invites WHERE token = ?`, token); err != nil {
		return nil, readErr(err)
	}
	return &inv, nil
}

// cas runs a conditional update and tells a missing invite apart from
// one whose state did not match.
func (r *InviteRepo) cas(ctx context.Context, token, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetByToken(ctx, token); err != nil {
		return err
	}
	return ErrConflict
}

func (r *InviteRepo) AttachFridge(ctx context.Context, token, expected, fridgeID string) error {
	return r.cas(ctx, token,
		`UPDATE invites SET fridge_id = ?, updated_at = ? WHERE token = ? AND COALESCE(fridge_id, '') = ?`,
		null(fridgeID), now(), token, expected)
}

func (r *InviteRepo) Transition(ctx context.Context, token string, from, to model.InviteStatus) error {
	return r.cas(ctx, token,
		`UPDATE invites SET status = ?, updated_at = ? WHERE token = ? AND status = ?`,
		to, now(), token, from)
}

func (r *InviteRepo) ListPendingFor(ctx context.Context, email string, at time.Time) ([]model.Invite, error) {
	out := []model.Invite{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+inviteColumns+` FROM invites
		 WHERE invitee_email = ? AND invite_type = 'fridge' AND status = 'pending' AND expires_at > ?
		 ORDER BY created_at DESC`,
		strings.ToLower(strings.TrimSpace(email)), at.UTC())
	return out, err
}

func (r *InviteRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return count(r.db.ExecContext(ctx, `DELETE FROM invites WHERE expires_at < ?`, cutoff.UTC()))
}

func (r *InviteRepo) DeleteByFridge(ctx context.Context, fridgeID string) (int64, error) {
	return count(r.db.ExecContext(ctx, `DELETE FROM invites WHERE fridge_id = ?`, fridgeID))
}
