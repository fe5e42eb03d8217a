package ledger

import (
	"testing"
	"time"

	"github.com/govalues/decimal"
)

func TestSigned(t *testing.T) {
	amt := decimal.MustParse("100.00")
	if got := Signed(amt, CategoryTypeIncome); got.Cmp(amt) != 0 {
		t.Fatalf("income should keep sign, got %s", got)
	}
	if got := Signed(amt, CategoryTypeExpense); got.Cmp(decimal.MustParse("-100.00")) != 0 {
		t.Fatalf("expense should negate, got %s", got)
	}
}

func TestSignAll_PreservesOrder(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	rows := []TypedAmount{
		{Date: d1, Amount: decimal.MustParse("5.00"), CategoryType: CategoryTypeExpense},
		{Date: d2, Amount: decimal.MustParse("7.50"), CategoryType: CategoryTypeIncome},
	}
	out := SignAll(rows)
	if len(out) != 2 || !out[0].Date.Equal(d1) || !out[1].Date.Equal(d2) {
		t.Fatalf("unexpected rows: %+v", out)
	}
	if out[0].Amount.String() != "-5.00" || out[1].Amount.String() != "7.50" {
		t.Fatalf("unexpected amounts: %s %s", out[0].Amount, out[1].Amount)
	}
}

func TestTransaction_DerivedFlags(t *testing.T) {
	tx := Transaction{Amount: decimal.MustParse("40.00"), CategoryType: CategoryTypeExpense}
	if tx.IsIncome() || !tx.IsExpense() {
		t.Fatalf("expense flags wrong")
	}
	if tx.SignedAmount().String() != "-40.00" {
		t.Fatalf("signed amount: %s", tx.SignedAmount())
	}
}

func TestMonthBounds(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		last  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2000, time.February, 29},
		{1900, time.February, 28},
		{2024, time.January, 31},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, c := range cases {
		first, last := MonthBounds(c.year, c.month)
		if first.Day() != 1 || first.Month() != c.month {
			t.Fatalf("%d-%02d: bad first day %s", c.year, c.month, first)
		}
		if last.Day() != c.last || last.Month() != c.month || last.Year() != c.year {
			t.Fatalf("%d-%02d: expected last day %d, got %s", c.year, c.month, c.last, last)
		}
	}
}

func TestDateOf_UsesUTCDay(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	ts := time.Date(2024, 3, 1, 23, 30, 0, 0, est)
	got := DateOf(ts)
	want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if DaysBetween(want, want.AddDate(0, 0, 10)) != 10 {
		t.Fatalf("days between")
	}
}

func TestHasMaxScaleAndCents(t *testing.T) {
	if !HasMaxScale(decimal.MustParse("12.5"), 2) || HasMaxScale(decimal.MustParse("0.001"), 2) {
		t.Fatalf("scale detection")
	}
	if !HasMaxScale(decimal.MustParse("12.500"), 2) {
		t.Fatalf("trailing zeros must not count")
	}
	if got := Cents(decimal.MustParse("12.5")).String(); got != "12.50" {
		t.Fatalf("cents: %s", got)
	}
}

func TestFilterMatch(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	typ := CategoryTypeIncome
	tx := Transaction{Date: from.AddDate(0, 0, 3), CategoryType: CategoryTypeIncome}
	if !(TransactionFilter{From: &from, To: &to, Type: &typ}).Match(tx) {
		t.Fatalf("expected match")
	}
	tx.Date = to
	if (TransactionFilter{From: &from, To: &to}).Match(tx) {
		t.Fatalf("to bound is exclusive")
	}
}
