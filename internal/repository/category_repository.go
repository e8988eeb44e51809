package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fridge-share/internal/model"
)

// CategoryRepo persists item categories. Names are unique per fridge
// under the table's case-insensitive collation.
type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryColumns = `id, fridge_id, name, color, created_at, updated_at`

func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	t := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, fridge_id, name, color, created_at, updated_at) VALUES (?,?,?,?,?,?)`,
		c.ID, c.FridgeID, c.Name, c.Color, t, t)
	if err != nil {
		return writeErr(err)
	}
	c.CreatedAt, c.UpdatedAt = t, t
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := r.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id); err != nil {
		return nil, readErr(err)
	}
	return &c, nil
}

func (r *CategoryRepo) ListByFridge(ctx context.Context, fridgeID string) ([]model.Category, error) {
	out := []model.Category{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+categoryColumns+` FROM categories WHERE fridge_id = ? ORDER BY name`, fridgeID)
	return out, err
}

func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	c.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ?, updated_at = ? WHERE id = ?`, c.Name, c.Color, c.UpdatedAt, c.ID)
	return affected(res, writeErr(err))
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id))
}

func (r *CategoryRepo) DeleteByFridge(ctx context.Context, fridgeID string) (int64, error) {
	return count(r.db.ExecContext(ctx, `DELETE FROM categories WHERE fridge_id = ?`, fridgeID))
}
