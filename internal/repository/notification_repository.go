package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fridge-share/internal/model"
)

// NotificationRepo persists notifications. Metadata columns are aliased
// as metadata.* so sqlx scans them into the nested struct.
type NotificationRepo struct{ db *sqlx.DB }

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationColumns = "id, user_id, type, title, message, is_read, " +
	"COALESCE(fridge_id, '') AS `metadata.fridge_id`, COALESCE(item_id, '') AS `metadata.item_id`, " +
	"COALESCE(invite_id, '') AS `metadata.invite_id`, COALESCE(invite_token, '') AS `metadata.invite_token`, " +
	"COALESCE(dedup_key, '') AS dedup_key, created_at, updated_at"

// Create inserts n. A repeated (user_id, dedup_key) is ErrDuplicate.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	n.UpdatedAt = n.CreatedAt
	m := n.Metadata
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, is_read, fridge_id, item_id, invite_id, invite_token, dedup_key, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.IsRead,
		null(m.FridgeID), null(m.ItemID), null(m.InviteID), null(m.InviteToken), null(n.DedupKey),
		n.CreatedAt.UTC(), n.UpdatedAt.UTC())
	return writeErr(err)
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.GetContext(ctx, &n, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id); err != nil {
		return nil, readErr(err)
	}
	return &n, nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, read *bool, limit int) ([]model.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if read != nil {
		q += ` AND is_read = ?`
		args = append(args, *read)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	out := []model.Notification{}
	err := r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

// FindByInviteToken prefers the invite notification itself over later
// notes that reference the same invite.
func (r *NotificationRepo) FindByInviteToken(ctx context.Context, userID, token string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.GetContext(ctx, &n,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = ? AND invite_token = ?
		 ORDER BY type = 'fridge_invite' DESC, created_at LIMIT 1`, userID, token)
	if err != nil {
		return nil, readErr(err)
	}
	return &n, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE, updated_at = ? WHERE id = ?`, now(), id))
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return count(r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, updated_at = ? WHERE user_id = ? AND is_read = FALSE`, now(), userID))
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id))
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE`, userID)
	return n, err
}
