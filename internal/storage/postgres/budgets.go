package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tinoosan/finledger/internal/ledger"
)

const budgetCols = `id, user_id, currency_id, tag_id, month, amount::text`

func scanBudget(row pgx.Row) (ledger.Budget, error) {
	var (
		b      ledger.Budget
		amount string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.CurrencyID, &b.TagID, &b.Month, &amount); err != nil {
		return ledger.Budget{}, err
	}
	var err error
	if b.Amount, err = parseDecimal("amount", amount); err != nil {
		return ledger.Budget{}, err
	}
	b.Month = ledger.DateOf(b.Month)
	return b, nil
}

// ListBudgets returns a user's budgets, most recent month first.
func (s *Store) ListBudgets(ctx context.Context, userID uuid.UUID) ([]ledger.Budget, error) {
	rows, err := s.pool.Query(ctx, `select `+budgetCols+` from budgets where user_id = $1 order by month desc, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetBudget(ctx context.Context, userID, budgetID uuid.UUID) (ledger.Budget, error) {
	b, err := scanBudget(s.pool.QueryRow(ctx, `select `+budgetCols+` from budgets where id = $1 and user_id = $2`, budgetID, userID))
	return b, mapErr(err)
}

func (s *Store) CreateBudget(ctx context.Context, b ledger.Budget) (ledger.Budget, error) {
	if _, err := s.pool.Exec(ctx, `
        insert into budgets (id, user_id, currency_id, tag_id, month, amount)
        values ($1, $2, $3, $4, $5::date, $6::text::numeric)
    `, b.ID, b.UserID, b.CurrencyID, b.TagID, b.Month.Format(time.DateOnly), b.Amount.String()); err != nil {
		return ledger.Budget{}, mapErr(err)
	}
	return b, nil
}

func (s *Store) UpdateBudget(ctx context.Context, b ledger.Budget) (ledger.Budget, error) {
	if err := affected(s.pool.Exec(ctx, `
        update budgets set currency_id = $1, tag_id = $2, month = $3::date, amount = $4::text::numeric
        where id = $5 and user_id = $6
    `, b.CurrencyID, b.TagID, b.Month.Format(time.DateOnly), b.Amount.String(), b.ID, b.UserID)); err != nil {
		return ledger.Budget{}, mapErr(err)
	}
	return b, nil
}

func (s *Store) DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error {
	return mapErr(affected(s.pool.Exec(ctx, `delete from budgets where id = $1 and user_id = $2`, budgetID, userID)))
}
