package book

import (
	"cmp"
	"errors"

	"bookcatalog/internal/validation"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrIDMismatch is returned when an update body names a different book
	// than the path.
	ErrIDMismatch = errors.New("the book id does not correspond with the body data")
)

// Book represents a catalog entry.
type Book struct {
	ID        string `json:"id"`
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Year      string `json:"year"`
	Pages     string `json:"pages"`
	Genre     string `json:"genre,omitempty"`
	Image     string `json:"image,omitempty"`
}

// Validate normalizes the required fields in place and reports every field
// that breaks its rule.
func (b *Book) Validate() error {
	var c validation.Collector
	b.ISBN = c.String(validation.Digits("isbn", b.ISBN))
	b.Title = c.String(validation.Required("title", b.Title))
	b.Subtitle = c.String(validation.Required("subtitle", b.Subtitle))
	b.Author = c.String(validation.Required("author", b.Author))
	b.Publisher = c.String(validation.Required("publisher", b.Publisher))
	b.Year = c.String(validation.Digits("year", b.Year))
	b.Pages = c.String(validation.PositiveInt("pages", b.Pages))
	return c.Err()
}

// SortColumns lists the fields a listing may be ordered by, keyed by their
// public name.
var SortColumns = map[string]string{
	"id":        "id",
	"isbn":      "isbn",
	"title":     "title",
	"subtitle":  "subtitle",
	"author":    "author",
	"publisher": "publisher",
	"year":      "year",
	"pages":     "pages",
	"genre":     "genre",
	"image":     "image",
}

func (b Book) field(name string) string {
	switch name {
	case "isbn":
		return b.ISBN
	case "title":
		return b.Title
	case "subtitle":
		return b.Subtitle
	case "author":
		return b.Author
	case "publisher":
		return b.Publisher
	case "year":
		return b.Year
	case "pages":
		return b.Pages
	case "genre":
		return b.Genre
	case "image":
		return b.Image
	default:
		return b.ID
	}
}

// compareField orders two books the way PostgreSQL orders the text columns
// under the C collation.
func compareField(a, b Book, name string) int {
	return cmp.Compare(a.field(name), b.field(name))
}
