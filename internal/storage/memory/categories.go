package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// SeedCategory inserts c without validation. For local dev/tests.
func (s *Store) SeedCategory(c ledger.Category) { s.mu.Lock(); s.categories[c.ID] = c; s.mu.Unlock() }

// ListCategories returns a user's categories ordered by name, then type.
func (s *Store) ListCategories(_ context.Context, userID uuid.UUID) ([]ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Category, 0)
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, userID, categoryID uuid.UUID) (ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok || c.UserID != userID {
		return ledger.Category{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) categoryTakenLocked(c ledger.Category) bool {
	for _, other := range s.categories {
		if other.ID != c.ID && other.UserID == c.UserID && other.Type == c.Type && strings.EqualFold(other.Name, c.Name) {
			return true
		}
	}
	return false
}

func (s *Store) CreateCategory(_ context.Context, c ledger.Category) (ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUserLocked(c.UserID); err != nil {
		return ledger.Category{}, err
	}
	if s.categoryTakenLocked(c) {
		return ledger.Category{}, errs.ErrConflict
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c ledger.Category) (ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.categories[c.ID]; !ok || cur.UserID != c.UserID {
		return ledger.Category{}, errs.ErrNotFound
	}
	if s.categoryTakenLocked(c) {
		return ledger.Category{}, errs.ErrConflict
	}
	s.categories[c.ID] = c
	return c, nil
}

// DeleteCategory is refused while transactions reference the category.
func (s *Store) DeleteCategory(_ context.Context, userID, categoryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.categories[categoryID]; !ok || c.UserID != userID {
		return errs.ErrNotFound
	}
	for _, tx := range s.transactions {
		if tx.CategoryID == categoryID {
			return errs.ErrInUse
		}
	}
	delete(s.categories, categoryID)
	return nil
}
