package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// ListCurrencies returns all currencies ordered by code.
func (s *Store) ListCurrencies(_ context.Context) ([]ledger.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Currency, 0, len(s.currencies))
	for _, c := range s.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) GetCurrency(_ context.Context, id uuid.UUID) (ledger.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.currencies[id]
	if !ok {
		return ledger.Currency{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) currencyCodeTakenLocked(c ledger.Currency) bool {
	for _, other := range s.currencies {
		if other.ID != c.ID && other.Code == c.Code {
			return true
		}
	}
	return false
}

func (s *Store) CreateCurrency(_ context.Context, c ledger.Currency) (ledger.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currencyCodeTakenLocked(c) {
		return ledger.Currency{}, errs.ErrConflict
	}
	s.currencies[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCurrency(_ context.Context, c ledger.Currency) (ledger.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.currencies[c.ID]; !ok {
		return ledger.Currency{}, errs.ErrNotFound
	}
	if s.currencyCodeTakenLocked(c) {
		return ledger.Currency{}, errs.ErrConflict
	}
	s.currencies[c.ID] = c
	return c, nil
}

// DeleteCurrency is refused while exchange rates reference the currency; its budgets are removed.
func (s *Store) DeleteCurrency(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.currencies[id]; !ok {
		return errs.ErrNotFound
	}
	for _, r := range s.rates {
		if r.BaseCurrencyID == id || r.TargetCurrencyID == id {
			return errs.ErrInUse
		}
	}
	for bID, b := range s.budgets {
		if b.CurrencyID == id {
			delete(s.budgets, bID)
		}
	}
	delete(s.currencies, id)
	return nil
}

// ListExchangeRates returns matching rates, newest first.
func (s *Store) ListExchangeRates(_ context.Context, f ledger.ExchangeRateFilter) ([]ledger.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.ExchangeRate, 0)
	for _, r := range s.rates {
		if f.BaseCurrencyID != nil && r.BaseCurrencyID != *f.BaseCurrencyID {
			continue
		}
		if f.TargetCurrencyID != nil && r.TargetCurrencyID != *f.TargetCurrencyID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) GetExchangeRate(_ context.Context, id uuid.UUID) (ledger.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[id]
	if !ok {
		return ledger.ExchangeRate{}, errs.ErrNotFound
	}
	return r, nil
}

// LatestExchangeRate returns the base->target rate with the greatest date <= on.
func (s *Store) LatestExchangeRate(_ context.Context, baseID, targetID uuid.UUID, on time.Time) (ledger.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best ledger.ExchangeRate
	found := false
	for _, r := range s.rates {
		if r.BaseCurrencyID != baseID || r.TargetCurrencyID != targetID || r.Date.After(on) {
			continue
		}
		if !found || r.Date.After(best.Date) {
			best, found = r, true
		}
	}
	if !found {
		return ledger.ExchangeRate{}, errs.ErrNotFound
	}
	return best, nil
}

func (s *Store) checkRateLocked(r ledger.ExchangeRate) error {
	for field, id := range map[string]uuid.UUID{"base_currency_id": r.BaseCurrencyID, "target_currency_id": r.TargetCurrencyID} {
		if _, ok := s.currencies[id]; !ok {
			return errs.Unprocessable(field, "currency not found")
		}
	}
	for _, other := range s.rates {
		if other.ID != r.ID && other.BaseCurrencyID == r.BaseCurrencyID && other.TargetCurrencyID == r.TargetCurrencyID && other.Date.Equal(r.Date) {
			return errs.ErrConflict
		}
	}
	return nil
}

func (s *Store) CreateExchangeRate(_ context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRateLocked(r); err != nil {
		return ledger.ExchangeRate{}, err
	}
	s.rates[r.ID] = r
	return r, nil
}

func (s *Store) UpdateExchangeRate(_ context.Context, r ledger.ExchangeRate) (ledger.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rates[r.ID]; !ok {
		return ledger.ExchangeRate{}, errs.ErrNotFound
	}
	if err := s.checkRateLocked(r); err != nil {
		return ledger.ExchangeRate{}, err
	}
	s.rates[r.ID] = r
	return r, nil
}

func (s *Store) DeleteExchangeRate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rates[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.rates, id)
	return nil
}
