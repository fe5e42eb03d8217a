package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// SeedUser inserts u without validation. For local dev/tests.
func (s *Store) SeedUser(u ledger.User) { s.mu.Lock(); s.users[u.ID] = u; s.mu.Unlock() }

func (s *Store) CreateUser(_ context.Context, u ledger.User) (ledger.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return ledger.User{}, errs.ErrConflict
		}
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return ledger.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return ledger.User{}, errs.ErrNotFound
}

// DeleteUser removes the user and cascades to everything it owns.
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return errs.ErrNotFound
	}
	for txID, tx := range s.transactions {
		if tx.UserID == id {
			delete(s.transactions, txID)
		}
	}
	delete(s.txKeysByUser, id)
	for bID, b := range s.budgets {
		if b.UserID == id {
			delete(s.budgets, bID)
		}
	}
	for tID, t := range s.tags {
		if t.UserID == id {
			delete(s.tags, tID)
		}
	}
	for cID, c := range s.categories {
		if c.UserID == id {
			delete(s.categories, cID)
		}
	}
	for aID, a := range s.accounts {
		if a.UserID == id {
			delete(s.accounts, aID)
		}
	}
	delete(s.users, id)
	return nil
}
