package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// withTypeLocked returns a copy of tx annotated with its category type. Caller must hold s.mu.
func (s *Store) withTypeLocked(tx ledger.Transaction) ledger.Transaction {
	tx.TagIDs = append([]uuid.UUID{}, tx.TagIDs...)
	tx.CategoryType = s.categories[tx.CategoryID].Type
	return tx
}

// checkRefsLocked verifies the account, category and tags exist for the user. Caller must hold s.mu.
func (s *Store) checkRefsLocked(tx ledger.Transaction) error {
	if err := s.requireUserLocked(tx.UserID); err != nil {
		return err
	}
	if a, ok := s.accounts[tx.AccountID]; !ok || a.UserID != tx.UserID {
		return errs.Unprocessable("account_id", "account not found for user")
	}
	if c, ok := s.categories[tx.CategoryID]; !ok || c.UserID != tx.UserID {
		return errs.Unprocessable("category_id", "category not found for user")
	}
	for _, id := range tx.TagIDs {
		if t, ok := s.tags[id]; !ok || t.UserID != tx.UserID {
			return errs.Unprocessable("tag_ids", "unknown tags for user")
		}
	}
	return nil
}

// CreateTransaction stores tx and its tag links under one write lock.
func (s *Store) CreateTransaction(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRefsLocked(tx); err != nil {
		return ledger.Transaction{}, err
	}
	stored := tx
	stored.TagIDs = append([]uuid.UUID{}, tx.TagIDs...)
	stored.CategoryType = ""
	s.transactions[tx.ID] = stored
	s.insertTxIndexLocked(tx.UserID, txKey{Date: tx.Date, ID: tx.ID})
	return s.withTypeLocked(stored), nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.transactions[tx.ID]
	if !ok || cur.UserID != tx.UserID {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	if err := s.checkRefsLocked(tx); err != nil {
		return ledger.Transaction{}, err
	}
	stored := tx
	stored.TagIDs = append([]uuid.UUID{}, tx.TagIDs...)
	stored.CategoryType = ""
	s.transactions[tx.ID] = stored
	if !cur.Date.Equal(tx.Date) {
		s.removeTxIndexLocked(tx.UserID, tx.ID)
		s.insertTxIndexLocked(tx.UserID, txKey{Date: tx.Date, ID: tx.ID})
	}
	return s.withTypeLocked(stored), nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, txID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx, ok := s.transactions[txID]; !ok || tx.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.transactions, txID)
	s.removeTxIndexLocked(userID, txID)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, userID, txID uuid.UUID) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[txID]
	if !ok || tx.UserID != userID {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	return s.withTypeLocked(tx), nil
}

// ListTransactions returns matching transactions, newest first.
func (s *Store) ListTransactions(_ context.Context, userID uuid.UUID, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.rangeLocked(userID, f.From, f.To)
	out := make([]ledger.Transaction, 0, len(keys))
	for _, k := range keys {
		tx := s.withTypeLocked(s.transactions[k.ID])
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// TransactionAmounts returns the user's transactions with from <= date < to,
// oldest first, each annotated with its category type.
func (s *Store) TransactionAmounts(_ context.Context, userID uuid.UUID, from, to time.Time) ([]ledger.TypedAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.rangeLocked(userID, &from, &to)
	out := make([]ledger.TypedAmount, 0, len(keys))
	for _, k := range keys {
		tx := s.transactions[k.ID]
		out = append(out, ledger.TypedAmount{Date: tx.Date, Amount: tx.Amount, CategoryType: s.categories[tx.CategoryID].Type})
	}
	return out, nil
}
