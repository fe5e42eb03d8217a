package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

type fixture struct {
	s        *Store
	user     ledger.User
	account  ledger.Account
	income   ledger.Category
	expense  ledger.Category
	tag      ledger.Tag
	currency ledger.Currency
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := New()
	f := fixture{s: s, user: ledger.User{ID: uuid.New(), Email: "a@example.com"}}
	s.SeedUser(f.user)
	var err error
	f.account, err = s.CreateAccount(ctx, ledger.Account{ID: uuid.New(), UserID: f.user.ID, Name: "Cash"})
	require.NoError(t, err)
	f.income, err = s.CreateCategory(ctx, ledger.Category{ID: uuid.New(), UserID: f.user.ID, Name: "Salary", Type: ledger.CategoryTypeIncome})
	require.NoError(t, err)
	f.expense, err = s.CreateCategory(ctx, ledger.Category{ID: uuid.New(), UserID: f.user.ID, Name: "Food", Type: ledger.CategoryTypeExpense})
	require.NoError(t, err)
	f.tag, err = s.CreateTag(ctx, ledger.Tag{ID: uuid.New(), UserID: f.user.ID, Name: "trip"})
	require.NoError(t, err)
	f.currency, err = s.CreateCurrency(ctx, ledger.Currency{ID: uuid.New(), Code: "EUR", Name: "Euro", Symbol: "€"})
	require.NoError(t, err)
	return f
}

func (f fixture) tx(t *testing.T, cat ledger.Category, amount string, at time.Time, tags ...uuid.UUID) ledger.Transaction {
	t.Helper()
	tx, err := f.s.CreateTransaction(context.Background(), ledger.Transaction{
		ID: uuid.New(), UserID: f.user.ID, AccountID: f.account.ID, CategoryID: cat.ID,
		TagIDs: tags, Amount: decimal.MustParse(amount), Date: at, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return tx
}

func day(d int) time.Time { return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC) }

func TestTransactionAmounts_HalfOpenRangeAndTypes(t *testing.T) {
	f := setup(t)
	f.tx(t, f.income, "100.00", day(2))
	f.tx(t, f.expense, "30.00", day(1))
	f.tx(t, f.expense, "5.00", day(5))
	other := uuid.New()
	f.s.SeedUser(ledger.User{ID: other})

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	rows, err := f.s.TransactionAmounts(context.Background(), f.user.ID, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Date.Equal(day(1)), "ascending by date")
	assert.Equal(t, ledger.CategoryTypeExpense, rows[0].CategoryType)
	assert.Equal(t, ledger.CategoryTypeIncome, rows[1].CategoryType)

	rows, err = f.s.TransactionAmounts(context.Background(), other, from, to)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListTransactions_FiltersAndOrder(t *testing.T) {
	f := setup(t)
	f.tx(t, f.income, "100.00", day(2))
	tagged := f.tx(t, f.expense, "30.00", day(3), f.tag.ID)
	f.tx(t, f.expense, "5.00", day(4))

	all, err := f.s.ListTransactions(context.Background(), f.user.ID, ledger.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.Equal(day(4)), "newest first")

	typ := ledger.CategoryTypeExpense
	tagID := f.tag.ID
	got, err := f.s.ListTransactions(context.Background(), f.user.ID, ledger.TransactionFilter{Type: &typ, TagID: &tagID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tagged.ID, got[0].ID)
	assert.True(t, got[0].IsExpense())
}

func TestUniqueness(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.s.CreateAccount(ctx, ledger.Account{ID: uuid.New(), UserID: f.user.ID, Name: "cash"})
	require.ErrorIs(t, err, errs.ErrConflict)
	_, err = f.s.CreateCategory(ctx, ledger.Category{ID: uuid.New(), UserID: f.user.ID, Name: "food", Type: ledger.CategoryTypeExpense})
	require.ErrorIs(t, err, errs.ErrConflict)
	_, err = f.s.CreateCategory(ctx, ledger.Category{ID: uuid.New(), UserID: f.user.ID, Name: "food", Type: ledger.CategoryTypeIncome})
	require.NoError(t, err, "same name with another type is allowed")
	_, err = f.s.CreateTag(ctx, ledger.Tag{ID: uuid.New(), UserID: f.user.ID, Name: "TRIP"})
	require.ErrorIs(t, err, errs.ErrConflict)
	_, err = f.s.CreateUser(ctx, ledger.User{ID: uuid.New(), Email: "A@example.com"})
	require.ErrorIs(t, err, errs.ErrConflict)
	_, err = f.s.CreateCurrency(ctx, ledger.Currency{ID: uuid.New(), Code: "EUR", Name: "dup"})
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestCreateRequiresKnownUser(t *testing.T) {
	s := New()
	_, err := s.CreateAccount(context.Background(), ledger.Account{ID: uuid.New(), UserID: uuid.New(), Name: "x"})
	require.ErrorIs(t, err, errs.ErrUnprocessable)
}

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tx := f.tx(t, f.expense, "1.00", day(1))
	require.ErrorIs(t, f.s.DeleteAccount(ctx, f.user.ID, f.account.ID), errs.ErrInUse)
	require.ErrorIs(t, f.s.DeleteCategory(ctx, f.user.ID, f.expense.ID), errs.ErrInUse)
	require.NoError(t, f.s.DeleteCategory(ctx, f.user.ID, f.income.ID))
	require.NoError(t, f.s.DeleteTransaction(ctx, f.user.ID, tx.ID))
	require.NoError(t, f.s.DeleteAccount(ctx, f.user.ID, f.account.ID))
}

func TestDeleteTag_DetachesEverywhere(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tx := f.tx(t, f.expense, "1.00", day(1), f.tag.ID)
	tagID := f.tag.ID
	b, err := f.s.CreateBudget(ctx, ledger.Budget{ID: uuid.New(), UserID: f.user.ID, CurrencyID: f.currency.ID, TagID: &tagID, Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.MustParse("10")})
	require.NoError(t, err)

	require.NoError(t, f.s.DeleteTag(ctx, f.user.ID, f.tag.ID))
	got, err := f.s.GetTransaction(ctx, f.user.ID, tx.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TagIDs)
	gotB, err := f.s.GetBudget(ctx, f.user.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, gotB.TagID)
}

func TestDeleteCurrency(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	usd, err := f.s.CreateCurrency(ctx, ledger.Currency{ID: uuid.New(), Code: "USD", Name: "Dollar"})
	require.NoError(t, err)
	r, err := f.s.CreateExchangeRate(ctx, ledger.ExchangeRate{ID: uuid.New(), BaseCurrencyID: usd.ID, TargetCurrencyID: f.currency.ID, Rate: decimal.MustParse("0.9"), Date: day(1)})
	require.NoError(t, err)
	_, err = f.s.CreateBudget(ctx, ledger.Budget{ID: uuid.New(), UserID: f.user.ID, CurrencyID: usd.ID, Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.MustParse("10")})
	require.NoError(t, err)

	require.ErrorIs(t, f.s.DeleteCurrency(ctx, usd.ID), errs.ErrInUse)
	require.NoError(t, f.s.DeleteExchangeRate(ctx, r.ID))
	require.NoError(t, f.s.DeleteCurrency(ctx, usd.ID))
	budgets, err := f.s.ListBudgets(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, budgets, "budgets cascade with their currency")
}

func TestLatestExchangeRate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	usd, err := f.s.CreateCurrency(ctx, ledger.Currency{ID: uuid.New(), Code: "USD", Name: "Dollar"})
	require.NoError(t, err)
	for i, rate := range []string{"0.90", "0.91", "0.95"} {
		_, err := f.s.CreateExchangeRate(ctx, ledger.ExchangeRate{ID: uuid.New(), BaseCurrencyID: usd.ID, TargetCurrencyID: f.currency.ID, Rate: decimal.MustParse(rate), Date: ledger.DateOf(day(1 + 5*i))})
		require.NoError(t, err)
	}
	r, err := f.s.LatestExchangeRate(ctx, usd.ID, f.currency.ID, ledger.DateOf(day(8)))
	require.NoError(t, err)
	assert.Equal(t, "0.91", r.Rate.String())
	_, err = f.s.LatestExchangeRate(ctx, f.currency.ID, usd.ID, ledger.DateOf(day(8)))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteUser_Cascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.tx(t, f.expense, "1.00", day(1), f.tag.ID)
	require.NoError(t, f.s.DeleteUser(ctx, f.user.ID))

	_, err := f.s.GetUser(ctx, f.user.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	accs, _ := f.s.ListAccounts(ctx, f.user.ID)
	cats, _ := f.s.ListCategories(ctx, f.user.ID)
	tags, _ := f.s.ListTags(ctx, f.user.ID)
	txs, _ := f.s.ListTransactions(ctx, f.user.ID, ledger.TransactionFilter{})
	assert.Empty(t, accs)
	assert.Empty(t, cats)
	assert.Empty(t, tags)
	assert.Empty(t, txs)
	cur, err := f.s.GetCurrency(ctx, f.currency.ID)
	require.NoError(t, err, "currencies are global")
	assert.Equal(t, "EUR", cur.Code)
}

func TestUpdateTransaction_ReindexesDate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tx := f.tx(t, f.expense, "1.00", day(1))
	tx.Date = day(20)
	_, err := f.s.UpdateTransaction(ctx, tx)
	require.NoError(t, err)

	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rows, err := f.s.TransactionAmounts(ctx, f.user.ID, from, from.AddDate(0, 0, 10))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	rows, err = f.s.TransactionAmounts(ctx, f.user.ID, from.AddDate(0, 0, -15), from)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
