package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tinoosan/finledger/internal/cache"
	"github.com/tinoosan/finledger/internal/config"
	"github.com/tinoosan/finledger/internal/devseed"
	httpapi "github.com/tinoosan/finledger/internal/httpapi/v1"
	"github.com/tinoosan/finledger/internal/storage/memory"
	pgstore "github.com/tinoosan/finledger/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	var store httpapi.Store
	var closeFn func()

	if cfg.DatabaseURL != "" {
		if cfg.AutoMigrate {
			if err := pgstore.Migrate(cfg.DatabaseURL, pgstore.Up); err != nil {
				logger.Error("migrations failed", "err", err)
				os.Exit(1)
			}
			logger.Info("migrations applied")
		}
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = pg.Close
		store = pg
		logger.Info("storage backend: postgres")
	} else {
		store = memory.New()
		logger.Info("storage backend: memory")
	}

	if cfg.DevSeed {
		res, err := devseed.Seed(ctx, store, devseed.DefaultOptions)
		if err != nil {
			logger.Error("dev seed failed", "err", err)
		} else {
			logDevSeed(logger, res)
			printDevSeedBanner(res)
		}
	}

	opts := httpapi.Options{
		Logger:   logger,
		CacheTTL: cfg.CacheTTL,
		Auth: httpapi.AuthConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
	}
	if cfg.CacheSize > 0 {
		lru := cache.NewLRU(cfg.CacheSize)
		go lru.RunCleanup(ctx, time.Minute)
		opts.Cache = lru
		logger.Info("analytics cache enabled", "size", cfg.CacheSize, "ttl", cfg.CacheTTL.String())
	}
	if cfg.JWTSecret != "" {
		logger.Info("bearer auth enabled", "issuer", cfg.JWTIssuer, "audience", cfg.JWTAudience)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(store, opts).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("finledger listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// logDevSeed emits structured logs with useful IDs
func logDevSeed(l *slog.Logger, res devseed.Result) {
	if res.Existing {
		l.Info("DEV seed skipped: user exists", "user_id", res.User.ID.String(), "email", res.User.Email)
		return
	}
	l.Info("DEV seed",
		"user_id", res.User.ID.String(),
		"account_id", res.Account.ID.String(),
		"income_category_id", res.Income.ID.String(),
		"expense_category_id", res.Expense.ID.String(),
		"transactions", res.Transactions,
	)
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste of IDs
func printDevSeedBanner(res devseed.Result) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("user_id: %s\n", res.User.ID.String())
	fmt.Printf("email: %s\n", res.User.Email)
	if !res.Existing {
		fmt.Printf("password: %s\n", devseed.DefaultOptions.Password)
		fmt.Printf("account_id: %s\n", res.Account.ID.String())
		fmt.Printf("income_category_id: %s\n", res.Income.ID.String())
		fmt.Printf("expense_category_id: %s\n", res.Expense.ID.String())
	}
	fmt.Println("==================================================")
}
