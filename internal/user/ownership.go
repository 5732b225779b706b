package user

import (
	"errors"
	"fmt"
	"slices"

	"bookcatalog/internal/book"
)

var (
	ErrBookAlreadyOwned = errors.New("the user already has this book")
	ErrBookNotOwned     = errors.New("the user does not have this book")
)

// Owns reports whether a book with bookID is in the collection. Books are
// the same when their IDs are, regardless of the other fields.
func (u User) Owns(bookID string) bool {
	return u.indexOf(bookID) >= 0
}

func (u User) indexOf(bookID string) int {
	return slices.IndexFunc(u.books, func(b book.Book) bool { return b.ID == bookID })
}

// AddBook appends b to the collection. The caller must make sure b exists in
// the catalog.
func (u *User) AddBook(b book.Book) error {
	if b.ID == "" {
		return fmt.Errorf("add book: %w", book.ErrNotFound)
	}
	if u.Owns(b.ID) {
		return ErrBookAlreadyOwned
	}
	u.books = append(slices.Clip(u.books), b)
	return nil
}

// RemoveBook drops b from the collection, keeping the order of the rest.
func (u *User) RemoveBook(b book.Book) error {
	i := u.indexOf(b.ID)
	if i < 0 {
		return ErrBookNotOwned
	}
	u.books = slices.Delete(slices.Clone(u.books), i, i+1)
	return nil
}
