package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// ListBudgets returns a user's budgets, most recent month first.
func (s *Store) ListBudgets(_ context.Context, userID uuid.UUID) ([]ledger.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Month.Equal(out[j].Month) {
			return out[i].Month.After(out[j].Month)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, userID, budgetID uuid.UUID) (ledger.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[budgetID]
	if !ok || b.UserID != userID {
		return ledger.Budget{}, errs.ErrNotFound
	}
	return b, nil
}

// budgetTakenLocked enforces (user, currency, tag-or-none, month). Caller must hold s.mu.
func (s *Store) budgetTakenLocked(b ledger.Budget) bool {
	for _, other := range s.budgets {
		if other.ID != b.ID && other.UserID == b.UserID && other.CurrencyID == b.CurrencyID &&
			other.Month.Equal(b.Month) && ledger.SameTag(other.TagID, b.TagID) {
			return true
		}
	}
	return false
}

func (s *Store) checkBudgetLocked(b ledger.Budget) error {
	if err := s.requireUserLocked(b.UserID); err != nil {
		return err
	}
	if _, ok := s.currencies[b.CurrencyID]; !ok {
		return errs.Unprocessable("currency_id", "currency not found")
	}
	if b.TagID != nil {
		if t, ok := s.tags[*b.TagID]; !ok || t.UserID != b.UserID {
			return errs.Unprocessable("tag_id", "tag not found for user")
		}
	}
	if s.budgetTakenLocked(b) {
		return errs.ErrConflict
	}
	return nil
}

func (s *Store) CreateBudget(_ context.Context, b ledger.Budget) (ledger.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkBudgetLocked(b); err != nil {
		return ledger.Budget{}, err
	}
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b ledger.Budget) (ledger.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.budgets[b.ID]; !ok || cur.UserID != b.UserID {
		return ledger.Budget{}, errs.ErrNotFound
	}
	if err := s.checkBudgetLocked(b); err != nil {
		return ledger.Budget{}, err
	}
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, budgetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.budgets[budgetID]; !ok || b.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.budgets, budgetID)
	return nil
}
