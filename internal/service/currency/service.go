// Package currency manages the global currency table, historical exchange
// rates, and amount conversion at the most recent known rate.
package currency

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

type Repo interface {
	ListCurrencies(ctx context.Context) ([]ledger.Currency, error)
	GetCurrency(ctx context.Context, id uuid.UUID) (ledger.Currency, error)
	ListExchangeRates(ctx context.Context, f ledger.ExchangeRateFilter) ([]ledger.ExchangeRate, error)
	GetExchangeRate(ctx context.Context, id uuid.UUID) (ledger.ExchangeRate, error)
	// LatestExchangeRate returns the base->target rate with the greatest date <= on.
	LatestExchangeRate(ctx context.Context, baseID, targetID uuid.UUID, on time.Time) (ledger.ExchangeRate, error)
}

type Writer interface {
	CreateCurrency(ctx context.Context, c ledger.Currency) (ledger.Currency, error)
	UpdateCurrency(ctx context.Context, c ledger.Currency) (ledger.Currency, error)
	// DeleteCurrency returns errs.ErrInUse while exchange rates reference it; budgets in it are removed.
	DeleteCurrency(ctx context.Context, id uuid.UUID) error
	CreateExchangeRate(ctx context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error)
	UpdateExchangeRate(ctx context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error)
	DeleteExchangeRate(ctx context.Context, id uuid.UUID) error
}

// Conversion is the outcome of converting an amount between two currencies.
type Conversion struct {
	Base      ledger.Currency
	Target    ledger.Currency
	Amount    decimal.Decimal
	Converted decimal.Decimal
	Rate      decimal.Decimal
	// RateDate is the date of the rate used; zero when base and target are the same currency.
	RateDate time.Time
}

type Service interface {
	Create(ctx context.Context, c ledger.Currency) (ledger.Currency, error)
	List(ctx context.Context) ([]ledger.Currency, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Currency, error)
	Update(ctx context.Context, c ledger.Currency) (ledger.Currency, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateRate(ctx context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error)
	ListRates(ctx context.Context, f ledger.ExchangeRateFilter) ([]ledger.ExchangeRate, error)
	GetRate(ctx context.Context, id uuid.UUID) (ledger.ExchangeRate, error)
	UpdateRate(ctx context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error)
	DeleteRate(ctx context.Context, id uuid.UUID) error

	Convert(ctx context.Context, baseID, targetID uuid.UUID, amount decimal.Decimal, on time.Time) (Conversion, error)
}

type service struct {
	repo   Repo
	writer Writer
	now    func() time.Time
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer, now: time.Now} }

func normalize(c ledger.Currency) ledger.Currency {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Name = strings.TrimSpace(c.Name)
	c.Symbol = strings.TrimSpace(c.Symbol)
	return c
}

func (s *service) validate(ctx context.Context, c ledger.Currency) error {
	if c.Code == "" {
		return errs.Unprocessable("code", "required")
	}
	if utf8.RuneCountInString(c.Code) > 10 {
		return errs.Unprocessable("code", "must be at most 10 characters")
	}
	if c.Name == "" {
		return errs.Unprocessable("name", "required")
	}
	if utf8.RuneCountInString(c.Name) > 50 {
		return errs.Unprocessable("name", "must be at most 50 characters")
	}
	if utf8.RuneCountInString(c.Symbol) > 5 {
		return errs.Unprocessable("symbol", "must be at most 5 characters")
	}
	existing, err := s.repo.ListCurrencies(ctx)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != c.ID && other.Code == c.Code {
			return errs.ErrConflict
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, c ledger.Currency) (ledger.Currency, error) {
	c = normalize(c)
	c.ID = uuid.Nil
	if err := s.validate(ctx, c); err != nil {
		return ledger.Currency{}, err
	}
	c.ID = uuid.New()
	return s.writer.CreateCurrency(ctx, c)
}

func (s *service) List(ctx context.Context) ([]ledger.Currency, error) { return s.repo.ListCurrencies(ctx) }

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Currency, error) {
	return s.repo.GetCurrency(ctx, id)
}

func (s *service) Update(ctx context.Context, c ledger.Currency) (ledger.Currency, error) {
	if c.ID == uuid.Nil {
		return ledger.Currency{}, errs.Invalid("id", "required")
	}
	if _, err := s.repo.GetCurrency(ctx, c.ID); err != nil {
		return ledger.Currency{}, err
	}
	c = normalize(c)
	if err := s.validate(ctx, c); err != nil {
		return ledger.Currency{}, err
	}
	return s.writer.UpdateCurrency(ctx, c)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Invalid("id", "required")
	}
	return s.writer.DeleteCurrency(ctx, id)
}

func (s *service) validateRate(ctx context.Context, r ledger.ExchangeRate) error {
	if r.BaseCurrencyID == uuid.Nil {
		return errs.Unprocessable("base_currency_id", "required")
	}
	if r.TargetCurrencyID == uuid.Nil {
		return errs.Unprocessable("target_currency_id", "required")
	}
	if r.BaseCurrencyID == r.TargetCurrencyID {
		return errs.Unprocessable("target_currency_id", "base and target currencies must differ")
	}
	if err := ledger.CheckRate("rate", r.Rate); err != nil {
		return err
	}
	if r.Date.IsZero() {
		return errs.Unprocessable("date", "required")
	}
	if r.Date.After(ledger.DateOf(s.now())) {
		return errs.Unprocessable("date", "cannot be in the future")
	}
	for field, id := range map[string]uuid.UUID{"base_currency_id": r.BaseCurrencyID, "target_currency_id": r.TargetCurrencyID} {
		if _, err := s.repo.GetCurrency(ctx, id); err != nil {
			if errs.IsNotFound(err) {
				return errs.Unprocessable(field, "currency not found")
			}
			return err
		}
	}
	base, target := r.BaseCurrencyID, r.TargetCurrencyID
	existing, err := s.repo.ListExchangeRates(ctx, ledger.ExchangeRateFilter{BaseCurrencyID: &base, TargetCurrencyID: &target})
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != r.ID && other.Date.Equal(r.Date) {
			return errs.ErrConflict
		}
	}
	return nil
}

func (s *service) CreateRate(ctx context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error) {
	r.ID = uuid.Nil
	r.Date = ledger.DateOf(r.Date)
	if err := s.validateRate(ctx, r); err != nil {
		return ledger.ExchangeRate{}, err
	}
	r.ID = uuid.New()
	return s.writer.CreateExchangeRate(ctx, r)
}

func (s *service) ListRates(ctx context.Context, f ledger.ExchangeRateFilter) ([]ledger.ExchangeRate, error) {
	return s.repo.ListExchangeRates(ctx, f)
}

func (s *service) GetRate(ctx context.Context, id uuid.UUID) (ledger.ExchangeRate, error) {
	return s.repo.GetExchangeRate(ctx, id)
}

func (s *service) UpdateRate(ctx context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error) {
	if r.ID == uuid.Nil {
		return ledger.ExchangeRate{}, errs.Invalid("id", "required")
	}
	if _, err := s.repo.GetExchangeRate(ctx, r.ID); err != nil {
		return ledger.ExchangeRate{}, err
	}
	r.Date = ledger.DateOf(r.Date)
	if err := s.validateRate(ctx, r); err != nil {
		return ledger.ExchangeRate{}, err
	}
	return s.writer.UpdateExchangeRate(ctx, r)
}

func (s *service) DeleteRate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Invalid("id", "required")
	}
	return s.writer.DeleteExchangeRate(ctx, id)
}

// Convert converts amount from base to target using the latest rate dated on or
// before on. Both codes must be ISO 4217 codes known to the money package; the
// result is rounded to the target currency's scale.
func (s *service) Convert(ctx context.Context, baseID, targetID uuid.UUID, amount decimal.Decimal, on time.Time) (Conversion, error) {
	if on.IsZero() {
		on = s.now()
	}
	on = ledger.DateOf(on)
	base, err := s.currencyParam(ctx, "base", baseID)
	if err != nil {
		return Conversion{}, err
	}
	target, err := s.currencyParam(ctx, "target", targetID)
	if err != nil {
		return Conversion{}, err
	}
	amt, err := money.ParseAmount(base.Code, amount.String())
	if err != nil {
		return Conversion{}, errs.Invalid("base", fmt.Sprintf("cannot convert %s: %v", base.Code, err))
	}
	if base.ID == target.ID {
		return Conversion{Base: base, Target: target, Amount: amount, Converted: amt.RoundToCurr().Decimal(), Rate: decimal.One}, nil
	}
	r, err := s.repo.LatestExchangeRate(ctx, base.ID, target.ID, on)
	if err != nil {
		return Conversion{}, err
	}
	rate, err := money.ParseExchRate(base.Code, target.Code, r.Rate.String())
	if err != nil {
		return Conversion{}, errs.Invalid("target", fmt.Sprintf("cannot convert to %s: %v", target.Code, err))
	}
	converted, err := rate.Conv(amt)
	if err != nil {
		return Conversion{}, fmt.Errorf("convert %s to %s: %w", base.Code, target.Code, err)
	}
	return Conversion{
		Base:      base,
		Target:    target,
		Amount:    amount,
		Converted: converted.RoundToCurr().Decimal(),
		Rate:      r.Rate,
		RateDate:  r.Date,
	}, nil
}

func (s *service) currencyParam(ctx context.Context, field string, id uuid.UUID) (ledger.Currency, error) {
	if id == uuid.Nil {
		return ledger.Currency{}, errs.Invalid(field, "required")
	}
	c, err := s.repo.GetCurrency(ctx, id)
	if errs.IsNotFound(err) {
		return ledger.Currency{}, errs.Invalid(field, "currency not found")
	}
	return c, err
}
