package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/ledger"
)

func (s *Store) ListTags(ctx context.Context, userID uuid.UUID) ([]ledger.Tag, error) {
	rows, err := s.pool.Query(ctx, `select id, user_id, name from tags where user_id = $1 order by lower(name)`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Tag, 0)
	for rows.Next() {
		var t ledger.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTag(ctx context.Context, userID, tagID uuid.UUID) (ledger.Tag, error) {
	var t ledger.Tag
	err := s.pool.QueryRow(ctx, `select id, user_id, name from tags where id = $1 and user_id = $2`, tagID, userID).Scan(&t.ID, &t.UserID, &t.Name)
	return t, mapErr(err)
}

// TagsByIDs returns the subset of ids that are tags of userID.
func (s *Store) TagsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ledger.Tag, error) {
	out := make(map[uuid.UUID]ledger.Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `select id, user_id, name from tags where user_id = $1 and id = any($2::uuid[])`, userID, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t ledger.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		out[t.ID] = t
	}
	return out, rows.Err()
}

func (s *Store) CreateTag(ctx context.Context, t ledger.Tag) (ledger.Tag, error) {
	if _, err := s.pool.Exec(ctx, `insert into tags (id, user_id, name) values ($1, $2, $3)`, t.ID, t.UserID, t.Name); err != nil {
		return ledger.Tag{}, mapErr(err)
	}
	return t, nil
}

func (s *Store) UpdateTag(ctx context.Context, t ledger.Tag) (ledger.Tag, error) {
	if err := affected(s.pool.Exec(ctx, `update tags set name = $1 where id = $2 and user_id = $3`, t.Name, t.ID, t.UserID)); err != nil {
		return ledger.Tag{}, mapErr(err)
	}
	return t, nil
}

// DeleteTag removes the tag; transaction links cascade and budgets lose their tag.
// A budget that would then duplicate an untagged one surfaces as ErrConflict.
func (s *Store) DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error {
	return mapErr(affected(s.pool.Exec(ctx, `delete from tags where id = $1 and user_id = $2`, tagID, userID)))
}
