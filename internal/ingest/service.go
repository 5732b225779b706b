package ingest

import (
	"context"
	"errors"
	"slices"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/catalog"
	"bookcatalog/internal/platform/openlibrary"
	"bookcatalog/internal/store"
	"bookcatalog/internal/validation"
)

const DefaultBatchSize = 50

type Service struct {
	provider  Provider
	books     book.Repository
	batchSize int
}

func NewService(provider Provider, books book.Repository, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{provider: provider, books: books, batchSize: batchSize}
}

// Run imports every ISBN that is not yet in the catalog. A failed provider
// batch marks its ISBNs as failed and the run goes on; only a cancelled
// context or a storage error stops it early.
func (s *Service) Run(ctx context.Context, isbns []string) (run Run, err error) {
	run = Run{StartedAt: time.Now(), Counts: make(map[Outcome]int)}
	defer func() { run.FinishedAt = time.Now() }()

	var pending []string
	seen := make(map[string]bool, len(isbns))
	for _, raw := range isbns {
		isbn, err := validation.Digits("isbn", raw)
		if err != nil {
			run.record(Item{ISBN: raw, Outcome: OutcomeInvalid, Reason: err.Error()})
			continue
		}
		if seen[isbn] {
			continue
		}
		seen[isbn] = true

		existing, err := s.books.FindByISBN(ctx, isbn)
		switch {
		case err == nil:
			run.record(Item{ISBN: isbn, Outcome: OutcomeExists, BookID: existing.ID})
		case errors.Is(err, book.ErrNotFound):
			pending = append(pending, isbn)
		default:
			return run, err
		}
	}

	for batch := range slices.Chunk(pending, s.batchSize) {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		if err := s.importBatch(ctx, &run, batch); err != nil {
			return run, err
		}
	}
	return run, nil
}

func (s *Service) importBatch(ctx context.Context, run *Run, isbns []string) error {
	found, err := s.provider.GetBooksByISBN(ctx, isbns)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for _, isbn := range isbns {
			run.record(Item{ISBN: isbn, Outcome: OutcomeFailed, Reason: err.Error()})
		}
		return nil
	}

	for _, isbn := range isbns {
		details, ok := found[openlibrary.BibKey(isbn)]
		if !ok {
			run.record(Item{ISBN: isbn, Outcome: OutcomeMissing})
			continue
		}
		b := catalog.FromDetails(isbn, details)
		if err := b.Validate(); err != nil {
			run.record(Item{ISBN: isbn, Outcome: OutcomeInvalid, Reason: err.Error()})
			continue
		}
		if err := s.books.Save(ctx, &b); err != nil {
			if errors.Is(err, store.ErrIntegrityViolation) {
				run.record(Item{ISBN: isbn, Outcome: OutcomeExists})
				continue
			}
			return err
		}
		run.record(Item{ISBN: isbn, Outcome: OutcomeCreated, BookID: b.ID})
	}
	return nil
}
