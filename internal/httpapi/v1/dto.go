package v1

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/service/analytics"
	"github.com/tinoosan/finledger/internal/service/budget"
	"github.com/tinoosan/finledger/internal/service/currency"
)

// Money travels as a decimal string with two places; calendar dates as YYYY-MM-DD.

func money2(d decimal.Decimal) string { return d.Pad(2).String() }

func date(t time.Time) string { return t.UTC().Format(ledger.DateLayout) }

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.Parse(s)
	if err != nil {
		return decimal.Decimal{}, errs.Unprocessable(field, "must be a decimal string")
	}
	return d, nil
}

func parseDay(field, s string) (time.Time, error) {
	d, err := ledger.ParseDate(s)
	if err != nil {
		return time.Time{}, errs.Unprocessable(field, "must be YYYY-MM-DD")
	}
	return d, nil
}

// optionalUUID distinguishes an absent field from an explicit null in PATCH bodies.
type optionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *optionalUUID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// Users

type userRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u ledger.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

type sessionResponse struct {
	UserID    uuid.UUID  `json:"user_id"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Accounts

type accountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type accountResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{ID: a.ID, UserID: a.UserID, Name: a.Name, Description: a.Description, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

// Categories

type categoryRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"category_type"`
	Description *string `json:"description"`
}

type categoryResponse struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	Name        string              `json:"name"`
	Type        ledger.CategoryType `json:"category_type"`
	Description string              `json:"description"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toCategoryResponse(c ledger.Category) categoryResponse {
	return categoryResponse{ID: c.ID, UserID: c.UserID, Name: c.Name, Type: c.Type, Description: c.Description, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// Tags

type tagRequest struct {
	Name *string `json:"name"`
}

type tagResponse struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

func toTagResponse(t ledger.Tag) tagResponse { return tagResponse{ID: t.ID, UserID: t.UserID, Name: t.Name} }

// Transactions

type transactionRequest struct {
	AccountID   *uuid.UUID   `json:"account_id"`
	CategoryID  *uuid.UUID   `json:"category_id"`
	TagIDs      *[]uuid.UUID `json:"tag_ids"`
	Amount      *string      `json:"amount"`
	Date        *time.Time   `json:"date"`
	Description *string      `json:"description"`
}

// apply overlays the fields present in req onto tx.
func (req transactionRequest) apply(tx *ledger.Transaction) error {
	if req.AccountID != nil {
		tx.AccountID = *req.AccountID
	}
	if req.CategoryID != nil {
		tx.CategoryID = *req.CategoryID
	}
	if req.TagIDs != nil {
		tx.TagIDs = *req.TagIDs
	}
	if req.Amount != nil {
		amt, err := parseAmount("amount", *req.Amount)
		if err != nil {
			return err
		}
		tx.Amount = amt
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}
	if req.Description != nil {
		tx.Description = *req.Description
	}
	return nil
}

type transactionResponse struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"user_id"`
	AccountID    uuid.UUID           `json:"account_id"`
	CategoryID   uuid.UUID           `json:"category_id"`
	CategoryType ledger.CategoryType `json:"category_type"`
	TagIDs       []uuid.UUID         `json:"tag_ids"`
	Amount       string              `json:"amount"`
	Date         time.Time           `json:"date"`
	Description  string              `json:"description"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func toTransactionResponse(tx ledger.Transaction) transactionResponse {
	tags := tx.TagIDs
	if tags == nil {
		tags = []uuid.UUID{}
	}
	return transactionResponse{
		ID: tx.ID, UserID: tx.UserID, AccountID: tx.AccountID, CategoryID: tx.CategoryID,
		CategoryType: tx.CategoryType, TagIDs: tags, Amount: money2(tx.Amount), Date: tx.Date,
		Description: tx.Description, CreatedAt: tx.CreatedAt, UpdatedAt: tx.UpdatedAt,
	}
}

// Currencies and exchange rates

type currencyRequest struct {
	Code   *string `json:"code"`
	Name   *string `json:"name"`
	Symbol *string `json:"symbol"`
}

type currencyResponse struct {
	ID     uuid.UUID `json:"id"`
	Code   string    `json:"code"`
	Name   string    `json:"name"`
	Symbol string    `json:"symbol"`
}

func toCurrencyResponse(c ledger.Currency) currencyResponse {
	return currencyResponse{ID: c.ID, Code: c.Code, Name: c.Name, Symbol: c.Symbol}
}

type rateRequest struct {
	BaseCurrencyID   *uuid.UUID `json:"base_currency_id"`
	TargetCurrencyID *uuid.UUID `json:"target_currency_id"`
	Rate             *string    `json:"rate"`
	Date             *string    `json:"date"`
}

func (req rateRequest) apply(r *ledger.ExchangeRate) error {
	if req.BaseCurrencyID != nil {
		r.BaseCurrencyID = *req.BaseCurrencyID
	}
	if req.TargetCurrencyID != nil {
		r.TargetCurrencyID = *req.TargetCurrencyID
	}
	if req.Rate != nil {
		d, err := parseAmount("rate", *req.Rate)
		if err != nil {
			return err
		}
		r.Rate = d
	}
	if req.Date != nil {
		d, err := parseDay("date", *req.Date)
		if err != nil {
			return err
		}
		r.Date = d
	}
	return nil
}

type rateResponse struct {
	ID               uuid.UUID `json:"id"`
	BaseCurrencyID   uuid.UUID `json:"base_currency_id"`
	TargetCurrencyID uuid.UUID `json:"target_currency_id"`
	Rate             string    `json:"rate"`
	Date             string    `json:"date"`
}

func toRateResponse(r ledger.ExchangeRate) rateResponse {
	return rateResponse{ID: r.ID, BaseCurrencyID: r.BaseCurrencyID, TargetCurrencyID: r.TargetCurrencyID, Rate: r.Rate.String(), Date: date(r.Date)}
}

type conversionResponse struct {
	Base      string `json:"base"`
	Target    string `json:"target"`
	Amount    string `json:"amount"`
	Converted string `json:"converted"`
	Rate      string `json:"rate"`
	RateDate  string `json:"rate_date,omitempty"`
}

func toConversionResponse(c currency.Conversion) conversionResponse {
	out := conversionResponse{
		Base: c.Base.Code, Target: c.Target.Code, Amount: c.Amount.String(),
		Converted: c.Converted.String(), Rate: c.Rate.String(),
	}
	if !c.RateDate.IsZero() {
		out.RateDate = date(c.RateDate)
	}
	return out
}

// Budgets

type budgetRequest struct {
	CurrencyID *uuid.UUID   `json:"currency_id"`
	TagID      optionalUUID `json:"tag_id"`
	Month      *string      `json:"month"`
	Amount     *string      `json:"amount"`
}

func (req budgetRequest) apply(b *ledger.Budget) error {
	if req.CurrencyID != nil {
		b.CurrencyID = *req.CurrencyID
	}
	if req.TagID.Set {
		b.TagID = req.TagID.Value
	}
	if req.Month != nil {
		m, err := parseDay("month", *req.Month)
		if err != nil {
			return err
		}
		b.Month = m
	}
	if req.Amount != nil {
		d, err := parseAmount("amount", *req.Amount)
		if err != nil {
			return err
		}
		b.Amount = d
	}
	return nil
}

type budgetResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	CurrencyID uuid.UUID  `json:"currency_id"`
	TagID      *uuid.UUID `json:"tag_id"`
	Month      string     `json:"month"`
	Amount     string     `json:"amount"`
}

func toBudgetResponse(b ledger.Budget) budgetResponse {
	return budgetResponse{ID: b.ID, UserID: b.UserID, CurrencyID: b.CurrencyID, TagID: b.TagID, Month: date(b.Month), Amount: money2(b.Amount)}
}

type usageResponse struct {
	Budget    budgetResponse `json:"budget"`
	Spent     string         `json:"spent"`
	Remaining string         `json:"remaining"`
}

func toUsageResponse(u budget.Usage) usageResponse {
	return usageResponse{Budget: toBudgetResponse(u.Budget), Spent: money2(u.Spent), Remaining: money2(u.Remaining)}
}

// Analytics

type dailyResponse struct {
	Day     string `json:"day"`
	Balance string `json:"balance"`
}

type weeklyResponse struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Balance   string `json:"balance"`
}

type monthlyResponse struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Balance     string          `json:"balance"`
	Incomes     string          `json:"incomes"`
	Expenses    string          `json:"expenses"`
	DailySeries []dailyResponse `json:"daily_series"`
}

func toDailyResponse(days []analytics.DailyBalance) []dailyResponse {
	out := make([]dailyResponse, 0, len(days))
	for _, d := range days {
		out = append(out, dailyResponse{Day: date(d.Day), Balance: money2(d.Balance)})
	}
	return out
}

func toWeeklyResponse(weeks []analytics.WeeklyBalance) []weeklyResponse {
	out := make([]weeklyResponse, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, weeklyResponse{WeekStart: date(w.WeekStart), WeekEnd: date(w.WeekEnd), Balance: money2(w.Balance)})
	}
	return out
}

func toMonthlyResponse(m analytics.MonthlySummary) monthlyResponse {
	return monthlyResponse{
		Year: m.Year, Month: m.Month, Balance: money2(m.Balance), Incomes: money2(m.Incomes),
		Expenses: money2(m.Expenses), DailySeries: toDailyResponse(m.Daily),
	}
}
