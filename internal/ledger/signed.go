package ledger

import (
	"time"

	"github.com/govalues/decimal"
)

// TypedAmount is a transaction row as the aggregation store returns it: the raw
// positive amount plus the type of the category it belongs to.
type TypedAmount struct {
	Date         time.Time
	Amount       decimal.Decimal
	CategoryType CategoryType
}

// SignedAmount is a dated amount whose sign already reflects income or expense.
type SignedAmount struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Signed converts a raw amount into its balance contribution: +amount for
// income categories, -amount for everything else.
func Signed(amount decimal.Decimal, t CategoryType) decimal.Decimal {
	if t == CategoryTypeIncome {
		return amount
	}
	return amount.Neg()
}

// SignAll annotates each row with its signed amount, preserving order.
func SignAll(rows []TypedAmount) []SignedAmount {
	out := make([]SignedAmount, len(rows))
	for i, r := range rows {
		out[i] = SignedAmount{Date: r.Date, Amount: Signed(r.Amount, r.CategoryType)}
	}
	return out
}
