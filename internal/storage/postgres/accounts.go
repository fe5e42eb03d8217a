package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tinoosan/finledger/internal/ledger"
)

const accountCols = `id, user_id, name, description, created_at, updated_at`

func scanAccount(row pgx.Row) (ledger.Account, error) {
	var a ledger.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ListAccounts returns all accounts for a user ordered by name.
func (s *Store) ListAccounts(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error) {
	rows, err := s.pool.Query(ctx, `select `+accountCols+` from accounts where user_id = $1 order by lower(name)`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAccount fetches a single account by id for a user.
func (s *Store) GetAccount(ctx context.Context, userID, accountID uuid.UUID) (ledger.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, `select `+accountCols+` from accounts where id = $1 and user_id = $2`, accountID, userID))
	return a, mapErr(err)
}

func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	_, err := s.pool.Exec(ctx, `
        insert into accounts (id, user_id, name, description, created_at, updated_at)
        values ($1, $2, $3, $4, $5, $6)
    `, a.ID, a.UserID, a.Name, a.Description, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return ledger.Account{}, mapErr(err)
	}
	return a, nil
}

// UpdateAccount updates mutable fields (name, description).
func (s *Store) UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	err := affected(s.pool.Exec(ctx, `
        update accounts set name = $1, description = $2, updated_at = $3
        where id = $4 and user_id = $5
    `, a.Name, a.Description, a.UpdatedAt, a.ID, a.UserID))
	if err != nil {
		return ledger.Account{}, mapErr(err)
	}
	return a, nil
}

// DeleteAccount fails with ErrInUse while transactions reference the account.
func (s *Store) DeleteAccount(ctx context.Context, userID, accountID uuid.UUID) error {
	return mapDeleteErr(affected(s.pool.Exec(ctx, `delete from accounts where id = $1 and user_id = $2`, accountID, userID)))
}
