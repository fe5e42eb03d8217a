package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

// CategoryType decides whether transactions in a category add to or subtract from a balance.
type CategoryType string

const (
	// CategoryTypeIncome marks inflows; transactions contribute +amount.
	CategoryTypeIncome CategoryType = "INCOME"
	// CategoryTypeExpense marks outflows; transactions contribute -amount.
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// User captures the owner of ledger data.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Account is a wallet belonging to a user (cash, bank, card, savings...).
type Account struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category classifies transactions as income or expense for a user.
type Category struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Type        CategoryType
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tag is a free-form user label attached to transactions and budgets.
type Tag struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
}

// Transaction records a single movement of money. Amount is always positive;
// the direction comes from the category.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	CategoryID  uuid.UUID
	TagIDs      []uuid.UUID
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	// CategoryType is filled in by stores on read from the referenced category. It is never persisted.
	CategoryType CategoryType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsIncome reports whether the transaction's category is an income category.
func (t Transaction) IsIncome() bool { return t.CategoryType == CategoryTypeIncome }

// IsExpense reports whether the transaction's category is an expense category.
func (t Transaction) IsExpense() bool { return t.CategoryType == CategoryTypeExpense }

// SignedAmount returns the transaction amount with the sign of its category.
func (t Transaction) SignedAmount() decimal.Decimal { return Signed(t.Amount, t.CategoryType) }

// TransactionFilter narrows transaction listings. Zero values mean "any".
type TransactionFilter struct {
	// From and To bound the transaction timestamp as [From, To).
	From       *time.Time
	To         *time.Time
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	Type       *CategoryType
}

// Match reports whether t satisfies every set criterion.
func (f TransactionFilter) Match(t Transaction) bool {
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.Date.Before(*f.To) {
		return false
	}
	if f.AccountID != nil && t.AccountID != *f.AccountID {
		return false
	}
	if f.CategoryID != nil && t.CategoryID != *f.CategoryID {
		return false
	}
	if f.Type != nil && t.CategoryType != *f.Type {
		return false
	}
	if f.TagID != nil {
		found := false
		for _, id := range t.TagIDs {
			if id == *f.TagID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Currency is a global currency definition (not user scoped).
type Currency struct {
	ID     uuid.UUID
	Code   string
	Name   string
	Symbol string
}

// ExchangeRate is the historical rate from a base to a target currency on a date.
type ExchangeRate struct {
	ID               uuid.UUID
	BaseCurrencyID   uuid.UUID
	TargetCurrencyID uuid.UUID
	Rate             decimal.Decimal
	Date             time.Time
}

// ExchangeRateFilter narrows rate listings.
type ExchangeRateFilter struct {
	BaseCurrencyID   *uuid.UUID
	TargetCurrencyID *uuid.UUID
}

// Budget is a monthly spending ceiling per user, currency and optional tag.
type Budget struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CurrencyID uuid.UUID
	TagID      *uuid.UUID
	// Month is the first day of the budgeted calendar month.
	Month  time.Time
	Amount decimal.Decimal
}

// SameTag reports whether two optional tag references point at the same tag (or both none).
func SameTag(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
