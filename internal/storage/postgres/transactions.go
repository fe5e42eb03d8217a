package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tinoosan/finledger/internal/ledger"
)

const txSelect = `
    select t.id, t.user_id, t.account_id, t.category_id, t.amount::text, t.date, t.description,
           t.created_at, t.updated_at, c.category_type,
           coalesce(array_agg(tt.tag_id::text order by tt.tag_id) filter (where tt.tag_id is not null), '{}')
    from transactions t
    join categories c on c.id = t.category_id
    left join transaction_tags tt on tt.transaction_id = t.id
`

const txGroup = ` group by t.id, c.category_type`

func scanTransaction(row pgx.Row) (ledger.Transaction, error) {
	var (
		tx     ledger.Transaction
		amount string
		typ    string
		tags   []string
	)
	if err := row.Scan(&tx.ID, &tx.UserID, &tx.AccountID, &tx.CategoryID, &amount, &tx.Date, &tx.Description,
		&tx.CreatedAt, &tx.UpdatedAt, &typ, &tags); err != nil {
		return ledger.Transaction{}, err
	}
	var err error
	if tx.Amount, err = parseDecimal("amount", amount); err != nil {
		return ledger.Transaction{}, err
	}
	if tx.TagIDs, err = parseUUIDs(tags); err != nil {
		return ledger.Transaction{}, err
	}
	tx.Date = tx.Date.UTC()
	tx.CategoryType = ledger.CategoryType(typ)
	return tx, nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (ledger.Transaction, error) {
	tx, err := scanTransaction(s.pool.QueryRow(ctx, txSelect+` where t.id = $1 and t.user_id = $2`+txGroup, txID, userID))
	return tx, mapErr(err)
}

// ListTransactions returns matching transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	where := []string{"t.user_id = $1"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.From != nil {
		add("t.date >= $%d", *f.From)
	}
	if f.To != nil {
		add("t.date < $%d", *f.To)
	}
	if f.AccountID != nil {
		add("t.account_id = $%d", *f.AccountID)
	}
	if f.CategoryID != nil {
		add("t.category_id = $%d", *f.CategoryID)
	}
	if f.Type != nil {
		add("c.category_type = $%d", string(*f.Type))
	}
	if f.TagID != nil {
		add("exists (select 1 from transaction_tags x where x.transaction_id = t.id and x.tag_id = $%d)", *f.TagID)
	}
	q := txSelect + ` where ` + strings.Join(where, " and ") + txGroup + ` order by t.date desc, t.created_at desc`
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func writeTags(ctx context.Context, q pgx.Tx, tx ledger.Transaction) error {
	if _, err := q.Exec(ctx, `delete from transaction_tags where transaction_id = $1`, tx.ID); err != nil {
		return err
	}
	if len(tx.TagIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
        insert into transaction_tags (transaction_id, tag_id)
        select $1, unnest($2::uuid[])
    `, tx.ID, uuidStrings(tx.TagIDs))
	return err
}

// CreateTransaction inserts the transaction and its tag links atomically.
func (s *Store) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	err := s.inTx(ctx, func(q pgx.Tx) error {
		if _, err := q.Exec(ctx, `
            insert into transactions (id, user_id, account_id, category_id, amount, date, description, created_at, updated_at)
            values ($1, $2, $3, $4, $5::text::numeric, $6, $7, $8, $9)
        `, tx.ID, tx.UserID, tx.AccountID, tx.CategoryID, tx.Amount.String(), tx.Date, tx.Description, tx.CreatedAt, tx.UpdatedAt); err != nil {
			return err
		}
		return writeTags(ctx, q, tx)
	})
	if err != nil {
		return ledger.Transaction{}, mapErr(err)
	}
	return s.GetTransaction(ctx, tx.UserID, tx.ID)
}

// UpdateTransaction replaces the mutable fields and the tag set.
func (s *Store) UpdateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	err := s.inTx(ctx, func(q pgx.Tx) error {
		if err := affected(q.Exec(ctx, `
            update transactions
            set account_id = $1, category_id = $2, amount = $3::text::numeric, date = $4, description = $5, updated_at = $6
            where id = $7 and user_id = $8
        `, tx.AccountID, tx.CategoryID, tx.Amount.String(), tx.Date, tx.Description, tx.UpdatedAt, tx.ID, tx.UserID)); err != nil {
			return err
		}
		return writeTags(ctx, q, tx)
	})
	if err != nil {
		return ledger.Transaction{}, mapErr(err)
	}
	return s.GetTransaction(ctx, tx.UserID, tx.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, txID uuid.UUID) error {
	return mapErr(affected(s.pool.Exec(ctx, `delete from transactions where id = $1 and user_id = $2`, txID, userID)))
}

// TransactionAmounts returns the user's transactions with from <= date < to,
// oldest first, each annotated with its category type.
func (s *Store) TransactionAmounts(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]ledger.TypedAmount, error) {
	rows, err := s.pool.Query(ctx, `
        select t.date, t.amount::text, c.category_type
        from transactions t
        join categories c on c.id = t.category_id
        where t.user_id = $1 and t.date >= $2 and t.date < $3
        order by t.date
    `, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.TypedAmount, 0)
	for rows.Next() {
		var (
			r      ledger.TypedAmount
			amount string
			typ    string
		)
		if err := rows.Scan(&r.Date, &amount, &typ); err != nil {
			return nil, err
		}
		if r.Amount, err = parseDecimal("amount", amount); err != nil {
			return nil, err
		}
		r.Date = r.Date.UTC()
		r.CategoryType = ledger.CategoryType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}
