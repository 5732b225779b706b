package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookcatalog/internal/auth"
	"bookcatalog/internal/book"
	"bookcatalog/internal/catalog"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/ingest"
	"bookcatalog/internal/user"
)

// deps are the storage and provider implementations the server runs on.
type deps struct {
	books    book.Repository
	users    user.Repository
	provider catalog.Provider
	ready    func(ctx context.Context) error
}

func newHandler(ctx context.Context, cfg config.Config, logger *slog.Logger, d deps) http.Handler {
	bookHandler := book.NewHTTPHandler(book.NewService(d.books))
	catalogHandler := catalog.NewHTTPHandler(catalog.NewService(d.books, d.provider))
	userService := user.NewService(d.users, d.books)
	userHandler := user.NewHTTPHandler(userService)
	authHandler := auth.NewHTTPHandler(auth.NewService(cfg.JWTSecret, cfg.TokenTTL, userService))

	protected := httpx.AuthMiddleware(cfg.JWTSecret)
	private := func(h http.HandlerFunc) http.Handler { return protected(h) }

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, r, map[string]string{"status": "ok"}, nil)
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.ready(ctx); err != nil {
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "Storage is not ready", nil)
			return
		}
		httpx.JSONSuccess(w, r, map[string]string{"status": "ready"}, nil)
	})

	// ?isbn= turns the listing into a lookup with Open Library fallback
	router.HandleFunc("GET /books", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("isbn") {
			catalogHandler.Resolve(w, r)
			return
		}
		bookHandler.List(w, r)
	})
	router.HandleFunc("GET /books/{id}", bookHandler.Get)
	router.Handle("POST /books", private(bookHandler.Create))
	router.Handle("PUT /books/{id}", private(bookHandler.Update))
	router.Handle("DELETE /books/{id}", private(bookHandler.Delete))

	router.HandleFunc("POST /auth/login", authHandler.Login)

	router.HandleFunc("POST /users", userHandler.Create)
	router.Handle("GET /users", private(userHandler.List))
	router.Handle("GET /users/me", private(userHandler.Me))
	router.Handle("GET /users/{id}", private(userHandler.Get))
	router.Handle("PUT /users/{id}", private(userHandler.Update))
	router.Handle("PUT /users/{id}/password", private(userHandler.UpdatePassword))
	router.Handle("DELETE /users/{id}", private(userHandler.Delete))
	router.Handle("POST /users/{id}/books", private(userHandler.AddBook))
	router.Handle("DELETE /users/{id}/books/{bookId}", private(userHandler.RemoveBook))

	if cfg.IngestSecret != "" {
		ingestHandler := ingest.NewHTTPHandler(ingest.NewService(d.provider, d.books, cfg.IngestBatchSize), cfg.IngestSecret)
		router.HandleFunc("POST /internal/jobs/ingest", ingestHandler.Ingest)
	}

	limiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
}
