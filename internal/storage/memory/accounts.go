package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// SeedAccount inserts a without validation. For local dev/tests.
func (s *Store) SeedAccount(a ledger.Account) { s.mu.Lock(); s.accounts[a.ID] = a; s.mu.Unlock() }

// ListAccounts returns a user's accounts ordered by name.
func (s *Store) ListAccounts(_ context.Context, userID uuid.UUID) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Account, 0)
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, userID, accountID uuid.UUID) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

func (s *Store) accountNameTakenLocked(a ledger.Account) bool {
	for _, other := range s.accounts {
		if other.ID != a.ID && other.UserID == a.UserID && strings.EqualFold(other.Name, a.Name) {
			return true
		}
	}
	return false
}

func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUserLocked(a.UserID); err != nil {
		return ledger.Account{}, err
	}
	if s.accountNameTakenLocked(a) {
		return ledger.Account{}, errs.ErrConflict
	}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.accounts[a.ID]; !ok || cur.UserID != a.UserID {
		return ledger.Account{}, errs.ErrNotFound
	}
	if s.accountNameTakenLocked(a) {
		return ledger.Account{}, errs.ErrConflict
	}
	s.accounts[a.ID] = a
	return a, nil
}

// DeleteAccount is refused while transactions reference the account.
func (s *Store) DeleteAccount(_ context.Context, userID, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[accountID]; !ok || a.UserID != userID {
		return errs.ErrNotFound
	}
	for _, tx := range s.transactions {
		if tx.AccountID == accountID {
			return errs.ErrInUse
		}
	}
	delete(s.accounts, accountID)
	return nil
}
