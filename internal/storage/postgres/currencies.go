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

func (s *Store) ListCurrencies(ctx context.Context) ([]ledger.Currency, error) {
	rows, err := s.pool.Query(ctx, `select id, code, name, symbol from currencies order by code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Currency, 0)
	for rows.Next() {
		var c ledger.Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Symbol); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCurrency(ctx context.Context, id uuid.UUID) (ledger.Currency, error) {
	var c ledger.Currency
	err := s.pool.QueryRow(ctx, `select id, code, name, symbol from currencies where id = $1`, id).Scan(&c.ID, &c.Code, &c.Name, &c.Symbol)
	return c, mapErr(err)
}

func (s *Store) CreateCurrency(ctx context.Context, c ledger.Currency) (ledger.Currency, error) {
	if _, err := s.pool.Exec(ctx, `insert into currencies (id, code, name, symbol) values ($1, $2, $3, $4)`, c.ID, c.Code, c.Name, c.Symbol); err != nil {
		return ledger.Currency{}, mapErr(err)
	}
	return c, nil
}

func (s *Store) UpdateCurrency(ctx context.Context, c ledger.Currency) (ledger.Currency, error) {
	if err := affected(s.pool.Exec(ctx, `update currencies set code = $1, name = $2, symbol = $3 where id = $4`, c.Code, c.Name, c.Symbol, c.ID)); err != nil {
		return ledger.Currency{}, mapErr(err)
	}
	return c, nil
}

// DeleteCurrency is refused while exchange rates reference the currency; its budgets cascade.
func (s *Store) DeleteCurrency(ctx context.Context, id uuid.UUID) error {
	return mapDeleteErr(affected(s.pool.Exec(ctx, `delete from currencies where id = $1`, id)))
}

const rateCols = `id, base_currency_id, target_currency_id, rate::text, date`

func scanRate(row pgx.Row) (ledger.ExchangeRate, error) {
	var (
		r    ledger.ExchangeRate
		rate string
	)
	if err := row.Scan(&r.ID, &r.BaseCurrencyID, &r.TargetCurrencyID, &rate, &r.Date); err != nil {
		return ledger.ExchangeRate{}, err
	}
	var err error
	if r.Rate, err = parseDecimal("rate", rate); err != nil {
		return ledger.ExchangeRate{}, err
	}
	r.Date = ledger.DateOf(r.Date)
	return r, nil
}

// ListExchangeRates returns matching rates, newest first.
func (s *Store) ListExchangeRates(ctx context.Context, f ledger.ExchangeRateFilter) ([]ledger.ExchangeRate, error) {
	where := []string{"true"}
	var args []any
	if f.BaseCurrencyID != nil {
		args = append(args, *f.BaseCurrencyID)
		where = append(where, fmt.Sprintf("base_currency_id = $%d", len(args)))
	}
	if f.TargetCurrencyID != nil {
		args = append(args, *f.TargetCurrencyID)
		where = append(where, fmt.Sprintf("target_currency_id = $%d", len(args)))
	}
	rows, err := s.pool.Query(ctx, `select `+rateCols+` from exchange_rates where `+strings.Join(where, " and ")+` order by date desc, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.ExchangeRate, 0)
	for rows.Next() {
		r, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetExchangeRate(ctx context.Context, id uuid.UUID) (ledger.ExchangeRate, error) {
	r, err := scanRate(s.pool.QueryRow(ctx, `select `+rateCols+` from exchange_rates where id = $1`, id))
	return r, mapErr(err)
}

// LatestExchangeRate returns the base->target rate with the greatest date <= on.
func (s *Store) LatestExchangeRate(ctx context.Context, baseID, targetID uuid.UUID, on time.Time) (ledger.ExchangeRate, error) {
	r, err := scanRate(s.pool.QueryRow(ctx, `
        select `+rateCols+` from exchange_rates
        where base_currency_id = $1 and target_currency_id = $2 and date <= $3::date
        order by date desc limit 1
    `, baseID, targetID, on.Format(time.DateOnly)))
	return r, mapErr(err)
}

func (s *Store) CreateExchangeRate(ctx context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error) {
	if _, err := s.pool.Exec(ctx, `
        insert into exchange_rates (id, base_currency_id, target_currency_id, rate, date)
        values ($1, $2, $3, $4::text::numeric, $5::date)
    `, r.ID, r.BaseCurrencyID, r.TargetCurrencyID, r.Rate.String(), r.Date.Format(time.DateOnly)); err != nil {
		return ledger.ExchangeRate{}, mapErr(err)
	}
	return r, nil
}

func (s *Store) UpdateExchangeRate(ctx context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error) {
	if err := affected(s.pool.Exec(ctx, `
        update exchange_rates
        set base_currency_id = $1, target_currency_id = $2, rate = $3::text::numeric, date = $4::date
        where id = $5
    `, r.BaseCurrencyID, r.TargetCurrencyID, r.Rate.String(), r.Date.Format(time.DateOnly), r.ID)); err != nil {
		return ledger.ExchangeRate{}, mapErr(err)
	}
	return r, nil
}

func (s *Store) DeleteExchangeRate(ctx context.Context, id uuid.UUID) error {
	return mapErr(affected(s.pool.Exec(ctx, `delete from exchange_rates where id = $1`, id)))
}
