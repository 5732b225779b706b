package user

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"bookcatalog/internal/book"
	"bookcatalog/internal/paging"
	"bookcatalog/internal/store"
)

type storedUser struct {
	user    User
	bookIDs []string
}

// MemoryRepo keeps users in process. Owned books are stored by ID and read
// back from the catalog, as the user_books join does.
type MemoryRepo struct {
	mu      sync.RWMutex
	users   map[string]storedUser
	catalog BookFinder
}

func NewMemoryRepo(catalog BookFinder) *MemoryRepo {
	return &MemoryRepo{users: make(map[string]storedUser), catalog: catalog}
}

func (r *MemoryRepo) Save(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	for _, other := range r.users {
		if other.user.ID != id && other.user.Username == u.Username {
			return store.ErrIntegrityViolation
		}
	}
	saved := *u
	saved.ID = id
	saved.books = nil
	r.users[id] = storedUser{user: saved, bookIDs: r.users[id].bookIDs}
	u.ID = id
	return nil
}

func (r *MemoryRepo) AddBook(_ context.Context, userID, bookID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	if slices.Contains(s.bookIDs, bookID) {
		return ErrBookAlreadyOwned
	}
	s.bookIDs = append(slices.Clip(s.bookIDs), bookID)
	r.users[userID] = s
	return nil
}

func (r *MemoryRepo) RemoveBook(_ context.Context, userID, bookID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	i := slices.Index(s.bookIDs, bookID)
	if i < 0 {
		return ErrBookNotOwned
	}
	s.bookIDs = slices.Delete(slices.Clone(s.bookIDs), i, i+1)
	r.users[userID] = s
	return nil
}

func (r *MemoryRepo) load(ctx context.Context, s storedUser) (User, error) {
	books := make([]book.Book, 0, len(s.bookIDs))
	for _, id := range s.bookIDs {
		b, err := r.catalog.FindByID(ctx, id)
		if errors.Is(err, book.ErrNotFound) {
			continue
		}
		if err != nil {
			return User{}, err
		}
		books = append(books, b)
	}
	return s.user.withBooks(books), nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id string) (User, error) {
	r.mu.RLock()
	s, ok := r.users[id]
	r.mu.RUnlock()
	if !ok {
		return User{}, ErrNotFound
	}
	return r.load(ctx, s)
}

func (r *MemoryRepo) FindByUsername(ctx context.Context, username string) (User, error) {
	r.mu.RLock()
	var found *storedUser
	for _, s := range r.users {
		if s.user.Username == username {
			found = &s
			break
		}
	}
	r.mu.RUnlock()
	if found == nil {
		return User{}, ErrNotFound
	}
	return r.load(ctx, *found)
}

func compareField(a, b User, field string) int {
	switch field {
	case "username":
		return cmp.Compare(a.Username, b.Username)
	case "name":
		return cmp.Compare(a.Name, b.Name)
	case "birthdate":
		return a.Birthdate.Compare(b.Birthdate)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

func (r *MemoryRepo) FindAll(ctx context.Context, req paging.Request) (paging.Page[User], error) {
	r.mu.RLock()
	all := make([]User, 0, len(r.users))
	ids := make(map[string][]string, len(r.users))
	for id, s := range r.users {
		all = append(all, s.user)
		ids[id] = s.bookIDs
	}
	r.mu.RUnlock()

	page := paging.Window(all, req, compareField, "id")
	page.Content = slices.Clone(page.Content)
	for i, u := range page.Content {
		loaded, err := r.load(ctx, storedUser{user: u, bookIDs: ids[u.ID]})
		if err != nil {
			return paging.Page[User]{}, err
		}
		page.Content[i] = loaded
	}
	return page, nil
}

func (r *MemoryRepo) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// OwnsBook reports whether any user holds the book. It backs the delete
// guard of book.MemoryRepo.
func (r *MemoryRepo) OwnsBook(bookID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.users {
		if slices.Contains(s.bookIDs, bookID) {
			return true
		}
	}
	return false
}
