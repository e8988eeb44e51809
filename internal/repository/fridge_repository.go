package repository

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fridge-share/internal/model"
)

// FridgeRepo persists fridges in the fridges table and their member sets
// in fridge_members. Rows are ordered by insertion sequence, which is
// what "oldest" means for the find helpers.
type FridgeRepo struct{ db *sqlx.DB }

func NewFridgeRepo(db *sqlx.DB) *FridgeRepo { return &FridgeRepo{db: db} }

const fridgeColumns = `f.id, f.name, COALESCE(f.personal_owner, '') AS personal_owner,
	COALESCE(f.source_invite, '') AS source_invite, f.created_at, f.updated_at`

const mysqlNoReferencedRow = 1452

// Create inserts the fridge and its members in one transaction. A taken
// personal_owner or source_invite is ErrDuplicate.
func (r *FridgeRepo) Create(ctx context.Context, f *model.Fridge) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	t := now()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO fridges (id, name, personal_owner, source_invite, created_at, updated_at) VALUES (?,?,?,?,?,?)`,
		f.ID, f.Name, null(f.PersonalOwner), null(f.SourceInvite), t, t); err != nil {
		return writeErr(err)
	}
	members := make([]string, 0, len(f.Members))
	seen := map[string]bool{}
	for _, m := range f.Members {
		if seen[m] {
			continue
		}
		seen[m] = true
		members = append(members, m)
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO fridge_members (fridge_id, user_id, added_at) VALUES (?,?,?)`, f.ID, m, t); err != nil {
			return err
		}
	}
	f.Members = members
	f.CreatedAt, f.UpdatedAt = t, t
	return nil
}

func (r *FridgeRepo) GetByID(ctx context.Context, id string) (*model.Fridge, error) {
	return r.one(ctx, `SELECT `+fridgeColumns+` FROM fridges f WHERE f.id = ?`, id)
}

func (r *FridgeRepo) FindPersonalCandidate(ctx context.Context, userID string) (*model.Fridge, error) {
	return r.one(ctx, `SELECT `+fridgeColumns+` FROM fridges f
		JOIN fridge_members m ON m.fridge_id = f.id AND m.user_id = ?
		WHERE (SELECT COUNT(*) FROM fridge_members x WHERE x.fridge_id = f.id) = 1
		ORDER BY f.seq LIMIT 1`, userID)
}

func (r *FridgeRepo) FindAnyContaining(ctx context.Context, userID string) (*model.Fridge, error) {
	return r.one(ctx, `SELECT `+fridgeColumns+` FROM fridges f
		JOIN fridge_members m ON m.fridge_id = f.id AND m.user_id = ?
		ORDER BY f.seq LIMIT 1`, userID)
}

func (r *FridgeRepo) FindByPersonalOwner(ctx context.Context, userID string) (*model.Fridge, error) {
	return r.one(ctx, `SELECT `+fridgeColumns+` FROM fridges f WHERE f.personal_owner = ?`, userID)
}

func (r *FridgeRepo) FindBySourceInvite(ctx context.Context, token string) (*model.Fridge, error) {
	return r.one(ctx, `SELECT `+fridgeColumns+` FROM fridges f WHERE f.source_invite = ?`, token)
}

func (r *FridgeRepo) ListByMember(ctx context.Context, userID string) ([]model.Fridge, error) {
	return r.many(ctx, `SELECT `+fridgeColumns+` FROM fridges f
		JOIN fridge_members m ON m.fridge_id = f.id AND m.user_id = ?
		ORDER BY f.seq`, userID)
}

func (r *FridgeRepo) List(ctx context.Context) ([]model.Fridge, error) {
	return r.many(ctx, `SELECT `+fridgeColumns+` FROM fridges f ORDER BY f.seq`)
}

// AddMember is idempotent. A missing fridge is ErrNotFound.
func (r *FridgeRepo) AddMember(ctx context.Context, fridgeID, userID string) error {
	t := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fridge_members (fridge_id, user_id, added_at) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE fridge_id = fridge_id`, fridgeID, userID, t)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlNoReferencedRow {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE fridges SET updated_at = ? WHERE id = ?`, t, fridgeID)
	return err
}

func (r *FridgeRepo) RemoveMember(ctx context.Context, fridgeID, userID string) error {
	if err := affected(r.db.ExecContext(ctx, `UPDATE fridges SET updated_at = ? WHERE id = ?`, now(), fridgeID)); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM fridge_members WHERE fridge_id = ? AND user_id = ?`, fridgeID, userID)
	return err
}

func (r *FridgeRepo) Rename(ctx context.Context, fridgeID, name string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE fridges SET name = ?, updated_at = ? WHERE id = ?`, name, now(), fridgeID))
}

// Delete removes the fridge; members go with it by cascade.
func (r *FridgeRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM fridges WHERE id = ?`, id))
}

func (r *FridgeRepo) one(ctx context.Context, q string, args ...any) (*model.Fridge, error) {
	var f model.Fridge
	if err := r.db.GetContext(ctx, &f, q, args...); err != nil {
		return nil, readErr(err)
	}
	members, err := r.members(ctx, []string{f.ID})
	if err != nil {
		return nil, err
	}
	f.Members = members[f.ID]
	if f.Members == nil {
		f.Members = []string{}
	}
	return &f, nil
}

func (r *FridgeRepo) many(ctx context.Context, q string, args ...any) ([]model.Fridge, error) {
	out := []model.Fridge{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	ids := make([]string, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	members, err := r.members(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Members = members[out[i].ID]
		if out[i].Members == nil {
			out[i].Members = []string{}
		}
	}
	return out, nil
}

// members loads the member lists of ids in join order.
func (r *FridgeRepo) members(ctx context.Context, ids []string) (map[string][]string, error) {
	q, args, err := sqlx.In(`SELECT fridge_id, user_id FROM fridge_members WHERE fridge_id IN (?) ORDER BY seq`, ids)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		FridgeID string `db:"fridge_id"`
		UserID   string `db:"user_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(ids))
	for _, row := range rows {
		out[row.FridgeID] = append(out[row.FridgeID], row.UserID)
	}
	return out, nil
}
