package ledger

import (
	"fmt"

	"github.com/govalues/decimal"

	"github.com/tinoosan/finledger/internal/errs"
)

var (
	// MinTransactionAmount is the smallest amount a transaction may carry.
	MinTransactionAmount = decimal.MustNew(1, 2)
	// MaxTransactionAmount bounds transactions to numeric(10,2).
	MaxTransactionAmount = decimal.MustNew(9999999999, 2)
	// MaxBudgetAmount bounds budgets to numeric(12,2).
	MaxBudgetAmount = decimal.MustNew(999999999999, 2)
	// MaxRate bounds exchange rates to numeric(12,6).
	MaxRate = decimal.MustNew(999999999999, 6)
	// Zero is 0.00, the starting point of every sum.
	Zero = decimal.MustNew(0, 2)
)

// HasMaxScale reports whether d has no significant digits beyond scale.
func HasMaxScale(d decimal.Decimal, scale int) bool {
	return d.Round(scale).Cmp(d) == 0
}

// Cents normalizes d to two decimal places. d must already satisfy HasMaxScale(d, 2).
func Cents(d decimal.Decimal) decimal.Decimal {
	out, err := d.Round(2).Add(Zero)
	if err != nil {
		return d
	}
	return out
}

// CheckTransactionAmount validates a transaction amount: at least 0.01, at most
// two decimal places, and within numeric(10,2).
func CheckTransactionAmount(field string, d decimal.Decimal) error {
	if d.Cmp(MinTransactionAmount) < 0 {
		return errs.Unprocessable(field, "must be at least 0.01")
	}
	if !HasMaxScale(d, 2) {
		return errs.Unprocessable(field, "must have at most 2 decimal places")
	}
	if d.Cmp(MaxTransactionAmount) > 0 {
		return errs.Unprocessable(field, fmt.Sprintf("must be at most %s", MaxTransactionAmount))
	}
	return nil
}

// CheckBudgetAmount validates a budget ceiling: non-negative, two decimal places, numeric(12,2).
func CheckBudgetAmount(field string, d decimal.Decimal) error {
	if d.IsNeg() {
		return errs.Unprocessable(field, "must be >= 0")
	}
	if !HasMaxScale(d, 2) {
		return errs.Unprocessable(field, "must have at most 2 decimal places")
	}
	if d.Cmp(MaxBudgetAmount) > 0 {
		return errs.Unprocessable(field, fmt.Sprintf("must be at most %s", MaxBudgetAmount))
	}
	return nil
}

// CheckRate validates an exchange rate: positive, six decimal places, numeric(12,6).
func CheckRate(field string, d decimal.Decimal) error {
	if d.Sign() <= 0 {
		return errs.Unprocessable(field, "must be > 0")
	}
	if !HasMaxScale(d, 6) {
		return errs.Unprocessable(field, "must have at most 6 decimal places")
	}
	if d.Cmp(MaxRate) > 0 {
		return errs.Unprocessable(field, fmt.Sprintf("must be at most %s", MaxRate))
	}
	return nil
}
