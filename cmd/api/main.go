package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/openlibrary"
	"bookcatalog/internal/store"
	"bookcatalog/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	d.provider = openlibrary.NewClient(openlibrary.Config{
		BaseURL:    cfg.OpenLibrary.URL,
		UserAgent:  cfg.OpenLibrary.UserAgent,
		RPS:        cfg.OpenLibrary.RPS,
		MaxRetries: cfg.OpenLibrary.MaxRetries,
		Timeout:    cfg.OpenLibrary.Timeout,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newHandler(ctx, cfg, logger, d),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.OpenLibrary.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", cfg.Addr), slog.String("store", cfg.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (deps, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		return memoryDeps(), func() {}, nil
	}

	pool, err := store.Open(ctx, cfg.DBDSN)
	if err != nil {
		return deps{}, nil, err
	}
	logger.Info("database connection OK", slog.String("db", store.RedactDSN(cfg.DBDSN)))

	return deps{
		books: book.NewPostgresRepo(pool, cfg.DBTimeout),
		users: user.NewPostgresRepo(pool, cfg.DBTimeout),
		ready: pool.Ping,
	}, pool.Close, nil
}

func memoryDeps() deps {
	books := book.NewMemoryRepo()
	users := user.NewMemoryRepo(books)
	books.ReferencedBy(users.OwnsBook)
	return deps{
		books: books,
		users: users,
		ready: func(context.Context) error { return nil },
	}
}
