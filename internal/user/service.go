package user

import (
	"context"
	"errors"
	"time"

	"bookcatalog/internal/paging"
	"bookcatalog/internal/platform/crypto"
	"bookcatalog/internal/validation"
)

type Service struct {
	repo  Repository
	books BookFinder
	now   func() time.Time
}

func NewService(repo Repository, books BookFinder) *Service {
	return &Service{repo: repo, books: books, now: time.Now}
}

// WithClock replaces the clock used to validate birthdates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Profile holds the fields a client may set on a user.
type Profile struct {
	ID        string
	Username  string
	Name      string
	Birthdate time.Time
}

func checkPassword(password string) error {
	if _, err := validation.Required("password", password); err != nil {
		return err
	}
	if err := crypto.ValidatePasswordStrength(password); err != nil {
		return &validation.Failure{Field: "password", Reason: "The " + err.Error()}
	}
	return nil
}

// Create registers a user. The password is stored only as a bcrypt hash.
func (s *Service) Create(ctx context.Context, p Profile, password string) (User, error) {
	u := User{Username: p.Username, Name: p.Name, Birthdate: p.Birthdate}

	var c validation.Collector
	c.Add(u.Validate(s.now()))
	c.Add(checkPassword(password))
	if err := c.Err(); err != nil {
		return User{}, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u.PasswordHash = hash
	if err := s.repo.Save(ctx, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *Service) List(ctx context.Context, req paging.Request) (paging.Page[User], error) {
	return s.repo.FindAll(ctx, req)
}

// Update replaces the profile of user id. The password and the owned books
// are left as they are.
func (s *Service) Update(ctx context.Context, id string, p Profile) (User, error) {
	if p.ID == "" {
		p.ID = id
	}
	if p.ID != id {
		return User{}, ErrIDMismatch
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Username, u.Name, u.Birthdate = p.Username, p.Name, p.Birthdate
	if err := u.Validate(s.now()); err != nil {
		return User{}, err
	}
	if err := s.repo.Save(ctx, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) UpdatePassword(ctx context.Context, id, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return s.repo.Save(ctx, &u)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Authenticate returns the user when password matches the stored hash.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, bool, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		crypto.VerifyUnknown(password)
		return User{}, false, err
	}
	if err != nil {
		return User{}, false, err
	}
	return u, crypto.VerifyPassword(u.PasswordHash, password), nil
}

// AddBook puts the catalog book bookID into the collection of user userID.
func (s *Service) AddBook(ctx context.Context, userID, bookID string) (User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return User{}, err
	}
	if err := u.AddBook(b); err != nil {
		return User{}, err
	}
	if err := s.repo.AddBook(ctx, u.ID, b.ID); err != nil {
		return User{}, err
	}
	return u, nil
}

// RemoveBook takes the catalog book bookID out of the collection of user
// userID.
func (s *Service) RemoveBook(ctx context.Context, userID, bookID string) (User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return User{}, err
	}
	if err := u.RemoveBook(b); err != nil {
		return User{}, err
	}
	if err := s.repo.RemoveBook(ctx, u.ID, b.ID); err != nil {
		return User{}, err
	}
	return u, nil
}
