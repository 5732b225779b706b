package user

import (
	"context"

	"bookcatalog/internal/book"
	"bookcatalog/internal/paging"
)

//go:generate mockgen -source=ports.go -destination=mock_repository_test.go -package=user

// Repository stores users together with their owned books.
type Repository interface {
	// Save inserts u when it has no ID yet, assigning one, and replaces the
	// stored profile otherwise. The collection is left as stored.
	Save(ctx context.Context, u *User) error
	// AddBook appends bookID to the collection of userID, or fails with
	// ErrBookAlreadyOwned.
	AddBook(ctx context.Context, userID, bookID string) error
	// RemoveBook drops bookID from the collection of userID, or fails with
	// ErrBookNotOwned.
	RemoveBook(ctx context.Context, userID, bookID string) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindAll(ctx context.Context, req paging.Request) (paging.Page[User], error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// BookFinder reads the catalog.
type BookFinder interface {
	FindByID(ctx context.Context, id string) (book.Book, error)
}
