// Package budget manages monthly spending ceilings and reports how much of
// each has been used.
package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

type Repo interface {
	ListBudgets(ctx context.Context, userID uuid.UUID) ([]ledger.Budget, error)
	GetBudget(ctx context.Context, userID, budgetID uuid.UUID) (ledger.Budget, error)
	GetCurrency(ctx context.Context, id uuid.UUID) (ledger.Currency, error)
	GetTag(ctx context.Context, userID, tagID uuid.UUID) (ledger.Tag, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, f ledger.TransactionFilter) ([]ledger.Transaction, error)
}

type Writer interface {
	CreateBudget(ctx context.Context, b ledger.Budget) (ledger.Budget, error)
	UpdateBudget(ctx context.Context, b ledger.Budget) (ledger.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error
}

// Usage is a budget together with what has been spent against it.
type Usage struct {
	Budget    ledger.Budget
	Spent     decimal.Decimal
	Remaining decimal.Decimal
}

type Service interface {
	Create(ctx context.Context, b ledger.Budget) (ledger.Budget, error)
	List(ctx context.Context, userID uuid.UUID) ([]ledger.Budget, error)
	Get(ctx context.Context, userID, budgetID uuid.UUID) (ledger.Budget, error)
	Update(ctx context.Context, b ledger.Budget) (ledger.Budget, error)
	Delete(ctx context.Context, userID, budgetID uuid.UUID) error
	Usage(ctx context.Context, userID, budgetID uuid.UUID) (Usage, error)
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) validate(ctx context.Context, b ledger.Budget) error {
	if b.UserID == uuid.Nil {
		return errs.Invalid("user_id", "required")
	}
	if b.Month.IsZero() {
		return errs.Unprocessable("month", "required")
	}
	if !ledger.IsMonthStart(b.Month) {
		return errs.Unprocessable("month", "must be the first day of a month")
	}
	if err := ledger.CheckBudgetAmount("amount", b.Amount); err != nil {
		return err
	}
	if b.CurrencyID == uuid.Nil {
		return errs.Unprocessable("currency_id", "required")
	}
	if _, err := s.repo.GetCurrency(ctx, b.CurrencyID); err != nil {
		if errs.IsNotFound(err) {
			return errs.Unprocessable("currency_id", "currency not found")
		}
		return err
	}
	if b.TagID != nil {
		if _, err := s.repo.GetTag(ctx, b.UserID, *b.TagID); err != nil {
			if errs.IsNotFound(err) {
				return errs.Unprocessable("tag_id", "tag not found for user")
			}
			return err
		}
	}
	existing, err := s.repo.ListBudgets(ctx, b.UserID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != b.ID && other.CurrencyID == b.CurrencyID && other.Month.Equal(b.Month) && ledger.SameTag(other.TagID, b.TagID) {
			return errs.ErrConflict
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, b ledger.Budget) (ledger.Budget, error) {
	b.ID = uuid.Nil
	b.Month = ledger.DateOf(b.Month)
	if err := s.validate(ctx, b); err != nil {
		return ledger.Budget{}, err
	}
	b.ID = uuid.New()
	b.Amount = ledger.Cents(b.Amount)
	return s.writer.CreateBudget(ctx, b)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ledger.Budget, error) {
	if userID == uuid.Nil {
		return nil, errs.Invalid("user_id", "required")
	}
	return s.repo.ListBudgets(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, budgetID uuid.UUID) (ledger.Budget, error) {
	if userID == uuid.Nil {
		return ledger.Budget{}, errs.Invalid("user_id", "required")
	}
	return s.repo.GetBudget(ctx, userID, budgetID)
}

func (s *service) Update(ctx context.Context, b ledger.Budget) (ledger.Budget, error) {
	if b.UserID == uuid.Nil || b.ID == uuid.Nil {
		return ledger.Budget{}, errs.Invalid("id", "required")
	}
	if _, err := s.repo.GetBudget(ctx, b.UserID, b.ID); err != nil {
		return ledger.Budget{}, err
	}
	b.Month = ledger.DateOf(b.Month)
	if err := s.validate(ctx, b); err != nil {
		return ledger.Budget{}, err
	}
	b.Amount = ledger.Cents(b.Amount)
	return s.writer.UpdateBudget(ctx, b)
}

func (s *service) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	if userID == uuid.Nil || budgetID == uuid.Nil {
		return errs.Invalid("id", "required")
	}
	return s.writer.DeleteBudget(ctx, userID, budgetID)
}

// Usage sums the budget month's expense transactions, restricted to the
// budget's tag when it has one.
func (s *service) Usage(ctx context.Context, userID, budgetID uuid.UUID) (Usage, error) {
	b, err := s.Get(ctx, userID, budgetID)
	if err != nil {
		return Usage{}, err
	}
	first, last := ledger.MonthBounds(b.Month.Year(), b.Month.Month())
	to := last.AddDate(0, 0, 1)
	expense := ledger.CategoryTypeExpense
	txs, err := s.repo.ListTransactions(ctx, userID, ledger.TransactionFilter{From: &first, To: &to, TagID: b.TagID, Type: &expense})
	if err != nil {
		return Usage{}, err
	}
	spent := ledger.Zero
	for _, tx := range txs {
		if spent, err = spent.Add(tx.Amount); err != nil {
			return Usage{}, fmt.Errorf("budget usage: %w", err)
		}
	}
	remaining, err := b.Amount.Sub(spent)
	if err != nil {
		return Usage{}, fmt.Errorf("budget usage: %w", err)
	}
	return Usage{Budget: b, Spent: spent, Remaining: remaining}, nil
}

