package catalog

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/openlibrary"
	"bookcatalog/internal/store"
	"bookcatalog/internal/validation"
)

type Service struct {
	books    book.Repository
	provider Provider
	group    singleflight.Group
}

func NewService(books book.Repository, provider Provider) *Service {
	return &Service{books: books, provider: provider}
}

// Resolve returns the catalog book with the given ISBN. On a local miss the
// book is fetched from the provider and saved, and the result is KindCreated.
// Concurrent misses for one ISBN share a single fetch; only the caller that
// started it reports KindCreated. A caller whose ctx ends stops waiting but
// leaves the fetch running for the others.
func (s *Service) Resolve(ctx context.Context, isbn string) (Resolution, error) {
	isbn, err := validation.Digits("isbn", isbn)
	if err != nil {
		return Resolution{}, err
	}

	b, err := s.books.FindByISBN(ctx, isbn)
	if err == nil {
		return Resolution{Book: b, Kind: KindFound}, nil
	}
	if !errors.Is(err, book.ErrNotFound) {
		return Resolution{}, err
	}

	// the shared fetch ignores the cancellation of the caller that starts it
	var led bool
	ch := s.group.DoChan(isbn, func() (any, error) {
		led = true
		return s.fetchAndSave(context.WithoutCancel(ctx), isbn)
	})
	select {
	case <-ctx.Done():
		return Resolution{}, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return Resolution{}, out.Err
		}
		res := out.Val.(Resolution)
		if !led {
			res.Kind = KindFound
		}
		return res, nil
	}
}

func (s *Service) fetchAndSave(ctx context.Context, isbn string) (Resolution, error) {
	found, err := s.provider.GetBooksByISBN(ctx, []string{isbn})
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup isbn %s: %w", isbn, errors.Join(ErrProvider, err))
	}
	details, ok := found[openlibrary.BibKey(isbn)]
	if !ok {
		return Resolution{}, book.ErrNotFound
	}

	b := FromDetails(isbn, details)
	if err := b.Validate(); err != nil {
		return Resolution{}, errors.Join(ErrIncompleteMetadata, err)
	}

	if err := s.books.Save(ctx, &b); err != nil {
		if !errors.Is(err, store.ErrIntegrityViolation) {
			return Resolution{}, err
		}
		// another process stored the same isbn first
		winner, findErr := s.books.FindByISBN(ctx, isbn)
		if findErr != nil {
			return Resolution{}, err
		}
		return Resolution{Book: winner, Kind: KindFound}, nil
	}
	return Resolution{Book: b, Kind: KindCreated}, nil
}
