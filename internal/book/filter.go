package book

import (
	"net/url"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Filter narrows a book listing. Every non-empty field must occur, ignoring
// case, somewhere in the matching book's field of the same name. Empty fields
// are unconstrained.
type Filter struct {
	Author    string
	Genre     string
	Image     string
	Pages     string
	Publisher string
	Subtitle  string
	Title     string
	Year      string
}

// FilterFromQuery reads the eight filter fields from query parameters.
func FilterFromQuery(q url.Values) Filter {
	return Filter{
		Author:    q.Get("author"),
		Genre:     q.Get("genre"),
		Image:     q.Get("image"),
		Pages:     q.Get("pages"),
		Publisher: q.Get("publisher"),
		Subtitle:  q.Get("subtitle"),
		Title:     q.Get("title"),
		Year:      q.Get("year"),
	}
}

type criterion struct {
	column string
	value  string
}

// criteria returns the active conjuncts in a fixed column order.
func (f Filter) criteria() []criterion {
	all := []criterion{
		{"author", f.Author},
		{"genre", f.Genre},
		{"image", f.Image},
		{"pages", f.Pages},
		{"publisher", f.Publisher},
		{"subtitle", f.Subtitle},
		{"title", f.Title},
		{"year", f.Year},
	}
	active := all[:0]
	for _, c := range all {
		if c.value != "" {
			active = append(active, c)
		}
	}
	return active
}

// IsEmpty reports whether the filter matches every book.
func (f Filter) IsEmpty() bool {
	return len(f.criteria()) == 0
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Expression renders the filter as one conjunction of ILIKE tests. An empty
// filter renders an empty expression list, which goqu leaves out of the
// WHERE clause.
func (f Filter) Expression() exp.ExpressionList {
	active := f.criteria()
	conds := make([]exp.Expression, 0, len(active))
	for _, c := range active {
		conds = append(conds, goqu.C(c.column).ILike("%"+likeEscaper.Replace(c.value)+"%"))
	}
	return goqu.And(conds...)
}

// Matches evaluates the same predicate as Expression against b.
func (f Filter) Matches(b Book) bool {
	for _, c := range f.criteria() {
		if !strings.Contains(strings.ToLower(b.field(c.column)), strings.ToLower(c.value)) {
			return false
		}
	}
	return true
}
