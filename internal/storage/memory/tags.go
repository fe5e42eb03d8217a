package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

func (s *Store) ListTags(_ context.Context, userID uuid.UUID) ([]ledger.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Tag, 0)
	for _, t := range s.tags {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *Store) GetTag(_ context.Context, userID, tagID uuid.UUID) (ledger.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tags[tagID]
	if !ok || t.UserID != userID {
		return ledger.Tag{}, errs.ErrNotFound
	}
	return t, nil
}

// TagsByIDs returns the subset of ids that are tags of userID.
func (s *Store) TagsByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ledger.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]ledger.Tag, len(ids))
	for _, id := range ids {
		if t, ok := s.tags[id]; ok && t.UserID == userID {
			out[id] = t
		}
	}
	return out, nil
}

func (s *Store) tagTakenLocked(t ledger.Tag) bool {
	for _, other := range s.tags {
		if other.ID != t.ID && other.UserID == t.UserID && strings.EqualFold(other.Name, t.Name) {
			return true
		}
	}
	return false
}

func (s *Store) CreateTag(_ context.Context, t ledger.Tag) (ledger.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUserLocked(t.UserID); err != nil {
		return ledger.Tag{}, err
	}
	if s.tagTakenLocked(t) {
		return ledger.Tag{}, errs.ErrConflict
	}
	s.tags[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTag(_ context.Context, t ledger.Tag) (ledger.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tags[t.ID]; !ok || cur.UserID != t.UserID {
		return ledger.Tag{}, errs.ErrNotFound
	}
	if s.tagTakenLocked(t) {
		return ledger.Tag{}, errs.ErrConflict
	}
	s.tags[t.ID] = t
	return t, nil
}

// DeleteTag detaches the tag from transactions and clears it on budgets. It
// fails with ErrConflict when a cleared budget would duplicate an untagged one.
func (s *Store) DeleteTag(_ context.Context, userID, tagID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tags[tagID]; !ok || t.UserID != userID {
		return errs.ErrNotFound
	}
	for _, b := range s.budgets {
		if b.TagID == nil || *b.TagID != tagID {
			continue
		}
		cleared := b
		cleared.TagID = nil
		if s.budgetTakenLocked(cleared) {
			return errs.ErrConflict
		}
	}
	for id, b := range s.budgets {
		if b.TagID != nil && *b.TagID == tagID {
			b.TagID = nil
			s.budgets[id] = b
		}
	}
	for id, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		kept := make([]uuid.UUID, 0, len(tx.TagIDs))
		for _, tid := range tx.TagIDs {
			if tid != tagID {
				kept = append(kept, tid)
			}
		}
		if len(kept) != len(tx.TagIDs) {
			tx.TagIDs = kept
			s.transactions[id] = tx
		}
	}
	delete(s.tags, tagID)
	return nil
}
