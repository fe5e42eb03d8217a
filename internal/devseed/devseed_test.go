package devseed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/finledger/internal/devseed"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/service/analytics"
	"github.com/tinoosan/finledger/internal/storage/memory"
)

func TestSeed_PopulatesAnalytics(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	res, err := devseed.Seed(ctx, st, devseed.Options{Email: "seed@example.com", Password: "long-enough", Days: 14})
	require.NoError(t, err)
	assert.False(t, res.Existing)
	assert.GreaterOrEqual(t, res.Transactions, 14)

	today := ledger.DateOf(time.Now())
	series, err := analytics.New(st).DailySeries(ctx, res.User.ID, today.AddDate(0, 0, -13), today)
	require.NoError(t, err)
	require.Len(t, series, 14)
	for _, d := range series {
		assert.NotEqual(t, 0, d.Balance.Sign(), "every seeded day has activity on %s", d.Day.Format(time.DateOnly))
	}
}

func TestSeed_ExistingUserIsNoop(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	opts := devseed.Options{Email: "seed@example.com", Password: "long-enough", Days: 3}
	first, err := devseed.Seed(ctx, st, opts)
	require.NoError(t, err)

	again, err := devseed.Seed(ctx, st, opts)
	require.NoError(t, err)
	assert.True(t, again.Existing)
	assert.Equal(t, first.User.ID, again.User.ID)

	txs, err := st.ListTransactions(ctx, first.User.ID, ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, first.Transactions)
}
