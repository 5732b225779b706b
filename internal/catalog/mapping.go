package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/openlibrary"
)

// NoImage is stored when the provider has no cover.
const NoImage = "No image"

var yearRe = regexp.MustCompile(`\b(\d{4})\b`)

// publishYear pulls the year out of free-form dates such as "1994",
// "March 1994" or "1994-03-01".
func publishYear(date string) string {
	m := yearRe.FindStringSubmatch(date)
	if m == nil {
		return ""
	}
	return m[1]
}

// FromDetails maps a provider record onto a catalog book. The result still
// has to pass book validation.
func FromDetails(isbn string, d openlibrary.BookDetails) book.Book {
	b := book.Book{
		ISBN:     isbn,
		Title:    strings.TrimSpace(d.Title),
		Subtitle: strings.TrimSpace(d.Subtitle),
		Year:     publishYear(d.PublishDate),
		Image:    NoImage,
	}
	if len(d.Authors) > 0 {
		b.Author = d.Authors[0].Name
	}
	if len(d.Publishers) > 0 {
		b.Publisher = d.Publishers[0].Name
	}
	if d.NumberOfPages > 0 {
		b.Pages = strconv.Itoa(d.NumberOfPages)
	}
	switch {
	case d.Cover.Large != "":
		b.Image = d.Cover.Large
	case d.Cover.Medium != "":
		b.Image = d.Cover.Medium
	case d.Cover.Small != "":
		b.Image = d.Cover.Small
	}
	return b
}
