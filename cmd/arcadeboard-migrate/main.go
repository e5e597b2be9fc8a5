// Command arcadeboard-migrate creates the guesses and scores tables in the
// configured SQL database. It is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlxAdapter "arcadeboard/adapters/sqlx"
	"arcadeboard/config"
)

func main() {
	printOnly := flag.Bool("print", false, "print the schema for the configured driver and exit")
	timeout := flag.Duration("timeout", 30*time.Second, "overall migration timeout")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(*printOnly, *timeout); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(printOnly bool, timeout time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sqlCfg := cfg.Storage.SQL

	if printOnly {
		driver, err := sqlxAdapter.ResolveDriver(sqlCfg)
		if err != nil {
			return err
		}
		for _, stmt := range sqlxAdapter.Schema(driver) {
			fmt.Printf("%s;\n\n", stmt)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := sqlxAdapter.New(sqlCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	start := time.Now()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	slog.Info("schema up to date", "driver", store.Driver(), "statements", len(sqlxAdapter.Schema(store.Driver())), "took", time.Since(start))
	return nil
}
