package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"bookcatalog/internal/config"
	"bookcatalog/internal/store"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	config.LoadEnvFiles()

	if err := run(context.Background(), logger, *command, *name); err != nil {
		logger.Error("migration failed", slog.String("command", *command), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, command, name string) error {
	dir := migrationsDir()
	if command == "create" {
		if name == "" {
			return errMissingName
		}
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return err
		}
		logger.Info("migration created", slog.String("name", name), slog.String("dir", dir))
		return nil
	}

	dsn := databaseDSN()
	pool, err := store.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	logger.Info("running migrations", slog.String("command", command), slog.String("db", store.RedactDSN(dsn)))

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, dir)
	case "down":
		err = goose.DownContext(ctx, db, dir)
	case "status":
		err = goose.StatusContext(ctx, db, dir)
	default:
		return errUnknownCommand(command)
	}
	if err != nil {
		return err
	}
	logger.Info("migrations done", slog.String("command", command))
	return nil
}
