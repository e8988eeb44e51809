package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fridge-share/internal/model"
)

// ItemRepo persists fridge items.
type ItemRepo struct{ db *sqlx.DB }

func NewItemRepo(db *sqlx.DB) *ItemRepo { return &ItemRepo{db: db} }

const itemColumns = `id, fridge_id, user_id, name, expiry_date, is_opened, opened_date,
	COALESCE(category_id, '') AS category_id, created_at, updated_at`

func (r *ItemRepo) Create(ctx context.Context, it *model.FridgeItem) error {
	t := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fridge_items (id, fridge_id, user_id, name, expiry_date, is_opened, opened_date, category_id, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		it.ID, it.FridgeID, it.UserID, it.Name, it.ExpiryDate.UTC(), it.IsOpened, it.OpenedDate, null(it.CategoryID), t, t)
	if err != nil {
		return writeErr(err)
	}
	it.CreatedAt, it.UpdatedAt = t, t
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*model.FridgeItem, error) {
	var it model.FridgeItem
	if err := r.db.GetContext(ctx, &it, `SELECT `+itemColumns+` FROM fridge_items WHERE id = ?`, id); err != nil {
		return nil, readErr(err)
	}
	return &it, nil
}

// ListByFridge returns items soonest-expiring first.
func (r *ItemRepo) ListByFridge(ctx context.Context, fridgeID string) ([]model.FridgeItem, error) {
	out := []model.FridgeItem{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+itemColumns+` FROM fridge_items WHERE fridge_id = ? ORDER BY expiry_date, created_at`, fridgeID)
	return out, err
}

func (r *ItemRepo) Update(ctx context.Context, it *model.FridgeItem) error {
	it.UpdatedAt = now()
	return affected(r.db.ExecContext(ctx,
		`UPDATE fridge_items SET fridge_id = ?, name = ?, expiry_date = ?, is_opened = ?, opened_date = ?, category_id = ?, updated_at = ?
		 WHERE id = ?`,
		it.FridgeID, it.Name, it.ExpiryDate.UTC(), it.IsOpened, it.OpenedDate, null(it.CategoryID), it.UpdatedAt, it.ID))
}

func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM fridge_items WHERE id = ?`, id))
}

func (r *ItemRepo) DeleteByFridge(ctx context.Context, fridgeID string) (int64, error) {
	return count(r.db.ExecContext(ctx, `DELETE FROM fridge_items WHERE fridge_id = ?`, fridgeID))
}

func (r *ItemRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM fridge_items WHERE user_id = ?`, userID)
	return n, err
}

func (r *ItemRepo) RepointUser(ctx context.Context, userID, fridgeID string) (int64, error) {
	return count(r.db.ExecContext(ctx,
		`UPDATE fridge_items SET fridge_id = ?, updated_at = ? WHERE user_id = ? AND fridge_id <> ?`,
		fridgeID, now(), userID, fridgeID))
}

func (r *ItemRepo) MoveFridge(ctx context.Context, fromFridgeID, toFridgeID string) (int64, error) {
	if fromFridgeID == toFridgeID {
		return 0, nil
	}
	return count(r.db.ExecContext(ctx,
		`UPDATE fridge_items SET fridge_id = ?, updated_at = ? WHERE fridge_id = ?`, toFridgeID, now(), fromFridgeID))
}

func (r *ItemRepo) ListUnopenedExpiring(ctx context.Context, from, to time.Time) ([]model.FridgeItem, error) {
	out := []model.FridgeItem{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+itemColumns+` FROM fridge_items
		 WHERE is_opened = FALSE AND expiry_date >= ? AND expiry_date < ? ORDER BY id`,
		from.UTC(), to.UTC())
	return out, err
}

func (r *ItemRepo) ClearCategory(ctx context.Context, categoryID string) (int64, error) {
	return count(r.db.ExecContext(ctx,
		`UPDATE fridge_items SET category_id = NULL, updated_at = ? WHERE category_id = ?`, now(), categoryID))
}
