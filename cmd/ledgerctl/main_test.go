package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgstore "github.com/tinoosan/finledger/internal/storage/postgres"
)

func TestSeriesCmd_CloseWithoutStore(t *testing.T) {
	var cmd SeriesCmd
	assert.NotPanics(t, cmd.Close)
	assert.NotPanics(t, cmd.Close)
}

func TestSeries_ReleasesStoreAfterRun(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, pgstore.Migrate(dsn, pgstore.Up))

	var root struct {
		Globals
		Series SeriesCmd `cmd:""`
	}
	var out bytes.Buffer
	parser, err := kong.New(&root,
		kong.Name("ledgerctl"),
		kong.Writers(&out, &out),
		kong.Bind(&root.Globals),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"--database-url", dsn, "series", "daily", uuid.New().String(), "2024-02-01", "2024-02-03"})
	require.NoError(t, err)
	require.NotNil(t, root.Series.store, "store opened for the subcommand")

	require.NoError(t, kctx.Run())
	root.Series.Close()
	assert.Nil(t, root.Series.store)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4, "header plus one row per day")
	assert.Contains(t, lines[1], "2024-02-01")
	assert.Contains(t, lines[3], "0.00")
}
