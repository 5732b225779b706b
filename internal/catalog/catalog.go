// Package catalog resolves books by ISBN, reading the local catalog first and
// falling back to Open Library, whose answer is then stored locally.
package catalog

import (
	"context"
	"errors"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/openlibrary"
)

var (
	// ErrIncompleteMetadata is returned when the provider knows the ISBN but
	// its record cannot be turned into a valid book.
	ErrIncompleteMetadata = errors.New("external metadata is incomplete")
	// ErrProvider wraps failures talking to the metadata provider.
	ErrProvider = errors.New("metadata provider failed")
)

// Kind tells how a resolution was satisfied.
type Kind string

const (
	KindFound   Kind = "found"
	KindCreated Kind = "created"
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	Book book.Book
	Kind Kind
}

// Provider looks books up by ISBN. Results are keyed by openlibrary.BibKey.
type Provider interface {
	GetBooksByISBN(ctx context.Context, isbns []string) (map[string]openlibrary.BookDetails, error)
}
