// Command ledgerctl runs migrations, seeds demo data and prints analytics
// series straight from the database.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/config"
	"github.com/tinoosan/finledger/internal/devseed"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/service/analytics"
	pgstore "github.com/tinoosan/finledger/internal/storage/postgres"
)

type Globals struct {
	DatabaseURL string `help:"Postgres connection string." env:"DATABASE_URL" required:""`
}

type MigrateCmd struct {
	Direction string `arg:"" enum:"up,down" help:"Apply (up) or roll back (down) every migration."`
}

func (cmd *MigrateCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := pgstore.Migrate(globals.DatabaseURL, pgstore.Direction(cmd.Direction)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(ctx.Stdout, "migrations %s: ok\n", cmd.Direction)
	return nil
}

type SeedCmd struct {
	Email    string `help:"Demo user email." default:"demo@example.com"`
	Password string `help:"Demo user password." default:"demo-password"`
	Days     int    `help:"Days of history ending today." default:"60"`
}

func (cmd *SeedCmd) Run(ctx *kong.Context, globals *Globals, runCtx context.Context) error {
	st, err := pgstore.Open(runCtx, globals.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := devseed.Seed(runCtx, st, devseed.Options{Email: cmd.Email, Password: cmd.Password, Days: cmd.Days})
	if err != nil {
		return err
	}
	if res.Existing {
		_, _ = fmt.Fprintf(ctx.Stdout, "user %s already exists (%s); nothing seeded\n", res.User.Email, res.User.ID)
		return nil
	}
	w := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "user_id\t%s\n", res.User.ID)
	_, _ = fmt.Fprintf(w, "account_id\t%s\n", res.Account.ID)
	_, _ = fmt.Fprintf(w, "income_category_id\t%s\n", res.Income.ID)
	_, _ = fmt.Fprintf(w, "expense_category_id\t%s\n", res.Expense.ID)
	_, _ = fmt.Fprintf(w, "transactions\t%d\n", res.Transactions)
	return w.Flush()
}

// Day is a YYYY-MM-DD command-line value.
type Day struct{ time.Time }

// Decode implements kong.MapperValue.
func (d *Day) Decode(ctx *kong.DecodeContext) error {
	var raw string
	if err := ctx.Scan.PopValueInto("date", &raw); err != nil {
		return err
	}
	t, err := ledger.ParseDate(raw)
	if err != nil {
		return fmt.Errorf("expected YYYY-MM-DD, got %q", raw)
	}
	d.Time = t
	return nil
}

type DailyCmd struct {
	User  uuid.UUID `arg:"" help:"User id."`
	Start Day       `arg:"" help:"First day (YYYY-MM-DD)."`
	End   Day       `arg:"" help:"Last day, inclusive (YYYY-MM-DD)."`
}

func (cmd *DailyCmd) Run(ctx *kong.Context, svc analytics.Service, runCtx context.Context) error {
	days, err := svc.DailySeries(runCtx, cmd.User, cmd.Start.Time, cmd.End.Time)
	if err != nil {
		return err
	}
	return printDays(ctx.Stdout, days)
}

type WeeklyCmd struct {
	User  uuid.UUID `arg:"" help:"User id."`
	Start Day       `arg:"" help:"First day of the first week (YYYY-MM-DD)."`
	Weeks int       `arg:"" help:"Number of 7-day windows."`
}

func (cmd *WeeklyCmd) Run(ctx *kong.Context, svc analytics.Service, runCtx context.Context) error {
	weeks, err := svc.WeeklySeries(runCtx, cmd.User, cmd.Start.Time, cmd.Weeks)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "week_start\tweek_end\tbalance\t")
	for _, wk := range weeks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n", wk.WeekStart.Format(ledger.DateLayout), wk.WeekEnd.Format(ledger.DateLayout), wk.Balance.Pad(2).String())
	}
	return w.Flush()
}

type MonthlyCmd struct {
	User  uuid.UUID `arg:"" help:"User id."`
	Year  int       `arg:""`
	Month int       `arg:""`
}

func (cmd *MonthlyCmd) Run(ctx *kong.Context, svc analytics.Service, runCtx context.Context) error {
	sum, err := svc.MonthlySeries(runCtx, cmd.User, cmd.Year, cmd.Month)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(ctx.Stdout, "%04d-%02d  incomes %s  expenses %s  balance %s\n\n",
		sum.Year, sum.Month, sum.Incomes.Pad(2).String(), sum.Expenses.Pad(2).String(), sum.Balance.Pad(2).String())
	return printDays(ctx.Stdout, sum.Daily)
}

type SeriesCmd struct {
	Daily   DailyCmd   `cmd:"" help:"Net balance per day, zero-filled."`
	Weekly  WeeklyCmd  `cmd:"" help:"Net balance per 7-day window."`
	Monthly MonthlyCmd `cmd:"" help:"Calendar month totals with its daily series."`

	store *pgstore.Store
}

// AfterApply opens the store and binds the analytics service for the subcommands.
// The store is released by Close once the command has run.
func (cmd *SeriesCmd) AfterApply(kctx *kong.Context, globals *Globals, runCtx context.Context) error {
	st, err := pgstore.Open(runCtx, globals.DatabaseURL)
	if err != nil {
		return err
	}
	cmd.store = st
	kctx.BindTo(analytics.New(st), (*analytics.Service)(nil))
	return nil
}

func (cmd *SeriesCmd) Close() {
	if cmd.store != nil {
		cmd.store.Close()
		cmd.store = nil
	}
}

func printDays(out io.Writer, days []analytics.DailyBalance) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "day\tbalance\t")
	for _, d := range days {
		_, _ = fmt.Fprintf(w, "%s\t%s\t\n", d.Day.Format(ledger.DateLayout), d.Balance.Pad(2).String())
	}
	return w.Flush()
}

var cli struct {
	Globals

	Migrate MigrateCmd `cmd:"" help:"Run the embedded schema migrations."`
	Seed    SeedCmd    `cmd:"" help:"Create a demo user with a few weeks of transactions."`
	Series  SeriesCmd  `cmd:"" help:"Print analytics series for a user."`
}

func main() {
	// Primes the environment from .env so DATABASE_URL can live there.
	_ = config.Load()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx := kong.Parse(&cli,
		kong.Name("ledgerctl"),
		kong.Description("Operational commands for the finledger API."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
		kong.BindTo(runCtx, (*context.Context)(nil)),
	)
	err := ctx.Run()
	cli.Series.Close()
	ctx.FatalIfErrorf(err)
}
