package book

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"bookcatalog/internal/paging"
	"bookcatalog/internal/store"
)

// MemoryRepo keeps the catalog in process. It enforces the same unique isbn
// and ownership constraints as the PostgreSQL schema.
type MemoryRepo struct {
	mu         sync.RWMutex
	books      map[string]Book
	referenced func(bookID string) bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{books: make(map[string]Book)}
}

// ReferencedBy installs the check Delete uses to refuse removing a book that
// is still owned.
func (r *MemoryRepo) ReferencedBy(fn func(bookID string) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.referenced = fn
}

func (r *MemoryRepo) Save(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := b.ID
	if id == "" {
		id = uuid.NewString()
	}
	for _, other := range r.books {
		if other.ID != id && other.ISBN == b.ISBN {
			return store.ErrIntegrityViolation
		}
	}
	saved := *b
	saved.ID = id
	r.books[id] = saved
	b.ID = id
	return nil
}

func (r *MemoryRepo) FindByID(_ context.Context, id string) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

func (r *MemoryRepo) FindByISBN(_ context.Context, isbn string) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return Book{}, ErrNotFound
}

func (r *MemoryRepo) FindAll(_ context.Context, f Filter, req paging.Request) (paging.Page[Book], error) {
	r.mu.RLock()
	matched := make([]Book, 0, len(r.books))
	for _, b := range r.books {
		if f.Matches(b) {
			matched = append(matched, b)
		}
	}
	r.mu.RUnlock()
	return paging.Window(matched, req, compareField, "id"), nil
}

func (r *MemoryRepo) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.books[id]
	return ok, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return ErrNotFound
	}
	if r.referenced != nil && r.referenced(id) {
		return store.ErrIntegrityViolation
	}
	delete(r.books, id)
	return nil
}
