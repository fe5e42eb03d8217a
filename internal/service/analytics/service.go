// Package analytics computes balance series over calendar windows. Income
// transactions count positive, expense transactions negative, and days without
// activity are zero-filled so results can be charted directly.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// Repo is the single read the aggregator needs from the ledger store.
type Repo interface {
	// TransactionAmounts returns all transactions of userID with from <= date < to,
	// each annotated with its category's type.
	TransactionAmounts(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]ledger.TypedAmount, error)
}

// DailyBalance is the net balance of one calendar day.
type DailyBalance struct {
	Day     time.Time
	Balance decimal.Decimal
}

// WeeklyBalance is the net balance of a 7-day window [WeekStart, WeekEnd].
type WeeklyBalance struct {
	WeekStart time.Time
	WeekEnd   time.Time
	Balance   decimal.Decimal
}

// MonthlySummary aggregates one calendar month.
type MonthlySummary struct {
	Year     int
	Month    int
	Balance  decimal.Decimal
	Incomes  decimal.Decimal
	Expenses decimal.Decimal
	Daily    []DailyBalance
}

// Service exposes the three series reads.
type Service interface {
	DailySeries(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DailyBalance, error)
	WeeklySeries(ctx context.Context, userID uuid.UUID, start time.Time, weeks int) ([]WeeklyBalance, error)
	MonthlySeries(ctx context.Context, userID uuid.UUID, year, month int) (MonthlySummary, error)
}

type service struct {
	repo Repo
}

func New(repo Repo) Service { return &service{repo: repo} }

// DailySeries returns one entry per day in [start, end], ascending.
func (s *service) DailySeries(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DailyBalance, error) {
	if userID == uuid.Nil {
		return nil, errs.Invalid("user_id", "required")
	}
	start, end = ledger.DateOf(start), ledger.DateOf(end)
	if err := checkDate("start", start); err != nil {
		return nil, err
	}
	if err := checkDate("end", end); err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", errs.ErrInvalidRange, start.Format(ledger.DateLayout), end.Format(ledger.DateLayout))
	}
	rows, err := s.fetchSigned(ctx, userID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return dailySeries(start, end, rows)
}

// WeeklySeries returns weeks consecutive 7-day windows beginning exactly at start.
func (s *service) WeeklySeries(ctx context.Context, userID uuid.UUID, start time.Time, weeks int) ([]WeeklyBalance, error) {
	if userID == uuid.Nil {
		return nil, errs.Invalid("user_id", "required")
	}
	if weeks < 0 {
		return nil, errs.Invalid("weeks", fmt.Sprintf("must be >= 0, got %d", weeks))
	}
	start = ledger.DateOf(start)
	if err := checkDate("start", start); err != nil {
		return nil, err
	}
	if limit := MaxWeeks(start); weeks > limit {
		return nil, errs.Invalid("weeks", fmt.Sprintf("must be at most %d for start %s, got %d", limit, start.Format(ledger.DateLayout), weeks))
	}
	if weeks == 0 {
		return []WeeklyBalance{}, nil
	}
	rows, err := s.fetchSigned(ctx, userID, start, start.AddDate(0, 0, 7*weeks))
	if err != nil {
		return nil, err
	}
	sums, err := bucket(start, 7*weeks, 7, rows)
	if err != nil {
		return nil, err
	}
	out := make([]WeeklyBalance, weeks)
	for i := range out {
		ws := start.AddDate(0, 0, 7*i)
		out[i] = WeeklyBalance{WeekStart: ws, WeekEnd: ws.AddDate(0, 0, 6), Balance: sums[i]}
	}
	return out, nil
}

// MonthlySeries summarizes a calendar month and embeds its daily series.
func (s *service) MonthlySeries(ctx context.Context, userID uuid.UUID, year, month int) (MonthlySummary, error) {
	if userID == uuid.Nil {
		return MonthlySummary{}, errs.Invalid("user_id", "required")
	}
	if month < 1 || month > 12 {
		return MonthlySummary{}, errs.Invalid("month", fmt.Sprintf("must be between 1 and 12, got %d", month))
	}
	if year < 1 || year > 9999 {
		return MonthlySummary{}, errs.Invalid("year", fmt.Sprintf("must be between 1 and 9999, got %d", year))
	}
	first, last := ledger.MonthBounds(year, time.Month(month))
	rows, err := s.fetchSigned(ctx, userID, first, last.AddDate(0, 0, 1))
	if err != nil {
		return MonthlySummary{}, err
	}
	daily, err := dailySeries(first, last, rows)
	if err != nil {
		return MonthlySummary{}, err
	}
	incomes, negatives := ledger.Zero, ledger.Zero
	for _, r := range rows {
		if r.Amount.Sign() >= 0 {
			incomes, err = incomes.Add(r.Amount)
		} else {
			negatives, err = negatives.Add(r.Amount)
		}
		if err != nil {
			return MonthlySummary{}, fmt.Errorf("monthly totals: %w", err)
		}
	}
	balance, err := incomes.Add(negatives)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("monthly balance: %w", err)
	}
	return MonthlySummary{
		Year:     year,
		Month:    month,
		Balance:  balance,
		Incomes:  incomes,
		Expenses: negatives.Neg(),
		Daily:    daily,
	}, nil
}

// MaxWeeks is the largest window count whose last day still falls on or before ledger.MaxDate.
func MaxWeeks(start time.Time) int {
	return (ledger.DaysBetween(start, ledger.MaxDate) + 1) / 7
}

func checkDate(field string, d time.Time) error {
	if !ledger.InRange(d) {
		return errs.Invalid(field, fmt.Sprintf("must be between %s and %s", ledger.MinDate.Format(ledger.DateLayout), ledger.MaxDate.Format(ledger.DateLayout)))
	}
	return nil
}

// fetchSigned runs the one store query for [from, to) and applies sign derivation.
func (s *service) fetchSigned(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]ledger.SignedAmount, error) {
	rows, err := s.repo.TransactionAmounts(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return ledger.SignAll(rows), nil
}

func dailySeries(start, end time.Time, rows []ledger.SignedAmount) ([]DailyBalance, error) {
	days := ledger.DaysBetween(start, end) + 1
	sums, err := bucket(start, days, 1, rows)
	if err != nil {
		return nil, err
	}
	out := make([]DailyBalance, days)
	for i := range out {
		out[i] = DailyBalance{Day: start.AddDate(0, 0, i), Balance: sums[i]}
	}
	return out, nil
}

// bucket sums rows into days/width buckets of width days each, counted from start.
// Rows outside [start, start+days) are ignored.
func bucket(start time.Time, days, width int, rows []ledger.SignedAmount) ([]decimal.Decimal, error) {
	sums := make([]decimal.Decimal, days/width)
	for i := range sums {
		sums[i] = ledger.Zero
	}
	for _, r := range rows {
		offset := ledger.DaysBetween(start, r.Date)
		if offset < 0 || offset >= days {
			continue
		}
		i := offset / width
		sum, err := sums[i].Add(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("sum %s: %w", ledger.DateOf(r.Date).Format(ledger.DateLayout), err)
		}
		sums[i] = sum
	}
	return sums, nil
}
