package user

import (
	"errors"
	"slices"
	"time"

	jsoniter "github.com/json-iterator/go"

	"bookcatalog/internal/book"
	"bookcatalog/internal/validation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrNotFound   = errors.New("user not found")
	ErrIDMismatch = errors.New("the user id does not correspond with the body data")
)

// DateLayout is the wire format of birthdates.
const DateLayout = time.DateOnly

// User is a registered reader. The owned books can only be changed through
// AddBook and RemoveBook.
type User struct {
	ID           string
	Username     string
	Name         string
	Birthdate    time.Time
	PasswordHash string

	books []book.Book
}

// Books returns a copy of the owned books in the order they were added.
func (u User) Books() []book.Book {
	if u.books == nil {
		return []book.Book{}
	}
	return slices.Clone(u.books)
}

// withBooks is used by the repositories to load the collection.
func (u User) withBooks(books []book.Book) User {
	u.books = slices.Clone(books)
	return u
}

// Validate normalizes the profile fields in place and reports every field
// that breaks its rule. now decides what counts as a past birthdate.
func (u *User) Validate(now time.Time) error {
	var c validation.Collector
	u.Username = c.String(validation.Required("username", u.Username))
	u.Name = c.String(validation.Required("name", u.Name))
	u.Birthdate = c.Time(validation.PastDate("birthdate", u.Birthdate, now))
	return c.Err()
}

type userJSON struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Name      string      `json:"name"`
	Birthdate string      `json:"birthdate"`
	Books     []book.Book `json:"books"`
}

// MarshalJSON never includes the password hash.
func (u User) MarshalJSON() ([]byte, error) {
	out := userJSON{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Books:    u.Books(),
	}
	if !u.Birthdate.IsZero() {
		out.Birthdate = u.Birthdate.Format(DateLayout)
	}
	return json.Marshal(out)
}

// SortColumns lists the fields a user listing may be ordered by.
var SortColumns = map[string]string{
	"id":        "id",
	"username":  "username",
	"name":      "name",
	"birthdate": "birthdate",
}
