package book

import (
	"context"

	"bookcatalog/internal/paging"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of the books matching f.
func (s *Service) List(ctx context.Context, f Filter, req paging.Request) (paging.Page[Book], error) {
	return s.repo.FindAll(ctx, f, req)
}

func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.FindByISBN(ctx, isbn)
}

// Create validates b and stores it as a new book. Any ID in b is ignored.
func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	b.ID = ""
	if err := b.Validate(); err != nil {
		return Book{}, err
	}
	if err := s.repo.Save(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Update replaces the book stored under id with b. A body without an ID
// takes the one from the path.
func (s *Service) Update(ctx context.Context, id string, b Book) (Book, error) {
	if b.ID == "" {
		b.ID = id
	}
	if b.ID != id {
		return Book{}, ErrIDMismatch
	}
	if err := b.Validate(); err != nil {
		return Book{}, err
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if !exists {
		return Book{}, ErrNotFound
	}
	if err := s.repo.Save(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
