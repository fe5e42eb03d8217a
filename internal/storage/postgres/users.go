package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/ledger"
)

func (s *Store) CreateUser(ctx context.Context, u ledger.User) (ledger.User, error) {
	_, err := s.pool.Exec(ctx, `
        insert into users (id, email, password_hash, created_at)
        values ($1, $2, $3, $4)
    `, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return ledger.User{}, mapErr(err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (ledger.User, error) {
	var u ledger.User
	err := s.pool.QueryRow(ctx, `
        select id, email, password_hash, created_at from users where id = $1
    `, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, mapErr(err)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (ledger.User, error) {
	var u ledger.User
	err := s.pool.QueryRow(ctx, `
        select id, email, password_hash, created_at from users where lower(email) = lower($1)
    `, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, mapErr(err)
}

// DeleteUser removes the user; the schema cascades to everything it owns.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return mapDeleteErr(affected(s.pool.Exec(ctx, `delete from users where id = $1`, id)))
}
