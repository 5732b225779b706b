package book

import (
	"context"

	"bookcatalog/internal/paging"
)

//go:generate mockgen -source=ports.go -destination=mock_repository_test.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	// Save inserts b when it has no ID yet, assigning one, and replaces the
	// stored record otherwise.
	Save(ctx context.Context, b *Book) error
	FindByID(ctx context.Context, id string) (Book, error)
	FindByISBN(ctx context.Context, isbn string) (Book, error)
	FindAll(ctx context.Context, f Filter, req paging.Request) (paging.Page[Book], error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
