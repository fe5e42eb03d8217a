// Package devseed populates a store with a demo user and a few weeks of
// transactions so the analytics endpoints have something to show locally.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/service/account"
	"github.com/tinoosan/finledger/internal/service/category"
	"github.com/tinoosan/finledger/internal/service/currency"
	"github.com/tinoosan/finledger/internal/service/tag"
	"github.com/tinoosan/finledger/internal/service/transaction"
	"github.com/tinoosan/finledger/internal/service/user"
)

// Store is the union of repositories the seed writes through.
type Store interface {
	user.Repo
	user.Writer
	account.Repo
	account.Writer
	category.Repo
	category.Writer
	tag.Repo
	tag.Writer
	transaction.Repo
	transaction.Writer
	currency.Repo
	currency.Writer
}

// Options controls what gets seeded.
type Options struct {
	Email    string
	Password string
	// Days of history to generate, ending today (UTC).
	Days int
}

// DefaultOptions is what DEV_SEED and `ledgerctl seed` use.
var DefaultOptions = Options{Email: "demo@example.com", Password: "demo-password", Days: 60}

// Result reports the seeded identifiers.
type Result struct {
	User         ledger.User
	Account      ledger.Account
	Income       ledger.Category
	Expense      ledger.Category
	Transactions int
	// Existing is set when the user was already present and nothing was written.
	Existing bool
}

// Seed registers the demo user and writes its accounts, categories, a tag,
// a currency and Days of transactions. Seeding an existing email is a no-op.
func Seed(ctx context.Context, st Store, opts Options) (Result, error) {
	users := user.New(st, st)
	u, err := users.Register(ctx, opts.Email, opts.Password)
	if errors.Is(err, errs.ErrConflict) {
		existing, err := st.UserByEmail(ctx, user.NormalizeEmail(opts.Email))
		if err != nil {
			return Result{}, err
		}
		return Result{User: existing, Existing: true}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("register: %w", err)
	}

	res := Result{User: u}
	if res.Account, err = account.New(st, st).Create(ctx, ledger.Account{UserID: u.ID, Name: "Checking", Description: "Everyday account"}); err != nil {
		return Result{}, fmt.Errorf("account: %w", err)
	}
	cats := category.New(st, st)
	if res.Income, err = cats.Create(ctx, ledger.Category{UserID: u.ID, Name: "Salary", Type: ledger.CategoryTypeIncome}); err != nil {
		return Result{}, fmt.Errorf("income category: %w", err)
	}
	if res.Expense, err = cats.Create(ctx, ledger.Category{UserID: u.ID, Name: "Groceries", Type: ledger.CategoryTypeExpense}); err != nil {
		return Result{}, fmt.Errorf("expense category: %w", err)
	}
	weekend, err := tag.New(st, st).Create(ctx, ledger.Tag{UserID: u.ID, Name: "weekend"})
	if err != nil {
		return Result{}, fmt.Errorf("tag: %w", err)
	}
	if _, err := currency.New(st, st).Create(ctx, ledger.Currency{Code: "EUR", Name: "Euro", Symbol: "€"}); err != nil && !errors.Is(err, errs.ErrConflict) {
		return Result{}, fmt.Errorf("currency: %w", err)
	}

	txs := transaction.New(st, st)
	today := ledger.DateOf(time.Now())
	for i := opts.Days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		var tags []ledger.Tag
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			tags = append(tags, weekend)
		}
		spend := decimal.MustNew(int64(1000+(i%7)*375), 2)
		if _, err := txs.Create(ctx, ledger.Transaction{
			UserID: u.ID, AccountID: res.Account.ID, CategoryID: res.Expense.ID,
			TagIDs: tagIDs(tags), Amount: spend, Date: date, Description: "Groceries",
		}); err != nil {
			return Result{}, fmt.Errorf("expense on %s: %w", date.Format(time.DateOnly), err)
		}
		res.Transactions++
		if date.Day() == 1 {
			if _, err := txs.Create(ctx, ledger.Transaction{
				UserID: u.ID, AccountID: res.Account.ID, CategoryID: res.Income.ID,
				Amount: decimal.MustNew(250000, 2), Date: date, Description: "Monthly salary",
			}); err != nil {
				return Result{}, fmt.Errorf("income on %s: %w", date.Format(time.DateOnly), err)
			}
			res.Transactions++
		}
	}
	return res, nil
}

func tagIDs(tags []ledger.Tag) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.ID)
	}
	return out
}
