package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tinoosan/finledger/internal/ledger"
)

const categoryCols = `id, user_id, name, category_type, description, created_at, updated_at`

func scanCategory(row pgx.Row) (ledger.Category, error) {
	var c ledger.Category
	var typ string
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &typ, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	c.Type = ledger.CategoryType(typ)
	return c, err
}

func (s *Store) ListCategories(ctx context.Context, userID uuid.UUID) ([]ledger.Category, error) {
	rows, err := s.pool.Query(ctx, `select `+categoryCols+` from categories where user_id = $1 order by lower(name), category_type`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, userID, categoryID uuid.UUID) (ledger.Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx, `select `+categoryCols+` from categories where id = $1 and user_id = $2`, categoryID, userID))
	return c, mapErr(err)
}

func (s *Store) CreateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	_, err := s.pool.Exec(ctx, `
        insert into categories (id, user_id, name, category_type, description, created_at, updated_at)
        values ($1, $2, $3, $4, $5, $6, $7)
    `, c.ID, c.UserID, c.Name, string(c.Type), c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return ledger.Category{}, mapErr(err)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	err := affected(s.pool.Exec(ctx, `
        update categories set name = $1, category_type = $2, description = $3, updated_at = $4
        where id = $5 and user_id = $6
    `, c.Name, string(c.Type), c.Description, c.UpdatedAt, c.ID, c.UserID))
	if err != nil {
		return ledger.Category{}, mapErr(err)
	}
	return c, nil
}

// DeleteCategory fails with ErrInUse while transactions reference the category.
func (s *Store) DeleteCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	return mapDeleteErr(affected(s.pool.Exec(ctx, `delete from categories where id = $1 and user_id = $2`, categoryID, userID)))
}
