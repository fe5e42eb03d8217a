// Package memory provides an in-memory ledger store used for development and tests.
// It enforces the same uniqueness and reference rules as the Postgres schema.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// txKey tracks ordering for transactions per user: sorted asc by (Date, ID).
type txKey struct {
	Date time.Time
	ID   uuid.UUID
}

// Store is an in-memory implementation of every service repo and writer.
// It is guarded by an RWMutex; each write, including a transaction and its
// tags, happens under one write lock.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]ledger.User
	accounts     map[uuid.UUID]ledger.Account
	categories   map[uuid.UUID]ledger.Category
	tags         map[uuid.UUID]ledger.Tag
	transactions map[uuid.UUID]ledger.Transaction
	// Per-user sorted index of transactions for ordered range scans
	txKeysByUser map[uuid.UUID][]txKey
	currencies   map[uuid.UUID]ledger.Currency
	rates        map[uuid.UUID]ledger.ExchangeRate
	budgets      map[uuid.UUID]ledger.Budget
}

// New constructs an empty in-memory store.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset drops all data.
func (s *Store) Reset() {
	s.mu.Lock()
	s.users = map[uuid.UUID]ledger.User{}
	s.accounts = map[uuid.UUID]ledger.Account{}
	s.categories = map[uuid.UUID]ledger.Category{}
	s.tags = map[uuid.UUID]ledger.Tag{}
	s.transactions = map[uuid.UUID]ledger.Transaction{}
	s.txKeysByUser = map[uuid.UUID][]txKey{}
	s.currencies = map[uuid.UUID]ledger.Currency{}
	s.rates = map[uuid.UUID]ledger.ExchangeRate{}
	s.budgets = map[uuid.UUID]ledger.Budget{}
	s.mu.Unlock()
}

// requireUserLocked fails writes for users that do not exist. Caller must hold s.mu.
func (s *Store) requireUserLocked(userID uuid.UUID) error {
	if _, ok := s.users[userID]; !ok {
		return errs.Unprocessable("user_id", "unknown user")
	}
	return nil
}

func less(a, b txKey) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID.String() < b.ID.String()
}

// insertTxIndexLocked inserts k into the per-user sorted index, keeping order asc by (Date, ID).
// Caller must hold s.mu (write lock).
func (s *Store) insertTxIndexLocked(userID uuid.UUID, k txKey) {
	keys := s.txKeysByUser[userID]
	i := sort.Search(len(keys), func(i int) bool { return less(k, keys[i]) })
	keys = append(keys, txKey{})
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	s.txKeysByUser[userID] = keys
}

// removeTxIndexLocked drops id from the user's index. Caller must hold s.mu (write lock).
func (s *Store) removeTxIndexLocked(userID, id uuid.UUID) {
	keys := s.txKeysByUser[userID]
	for i, k := range keys {
		if k.ID == id {
			s.txKeysByUser[userID] = append(keys[:i], keys[i+1:]...)
			return
		}
	}
}

// rangeLocked returns the keys with from <= Date < to for a user. Caller must hold s.mu.
func (s *Store) rangeLocked(userID uuid.UUID, from, to *time.Time) []txKey {
	keys := s.txKeysByUser[userID]
	start, end := 0, len(keys)
	if from != nil {
		f := *from
		start = sort.Search(len(keys), func(i int) bool { return !keys[i].Date.Before(f) })
	}
	if to != nil {
		t := *to
		end = sort.Search(len(keys), func(i int) bool { return !keys[i].Date.Before(t) })
	}
	if start >= end {
		return nil
	}
	return keys[start:end]
}
