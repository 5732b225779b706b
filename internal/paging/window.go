package paging

import (
	"slices"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Apply adds ORDER BY, LIMIT and OFFSET for req to ds. Sort fields are mapped
// through columns; tiebreak is always appended last so that the default order
// is deterministic. Callers must check req.Valid first.
func Apply(ds *goqu.SelectDataset, req Request, columns map[string]string, tiebreak string) *goqu.SelectDataset {
	order := make([]exp.OrderedExpression, 0, len(req.Sort)+1)
	for _, o := range req.Sort {
		col, ok := columns[o.Field]
		if !ok || col == tiebreak {
			continue
		}
		if o.Desc {
			order = append(order, goqu.I(col).Desc())
		} else {
			order = append(order, goqu.I(col).Asc())
		}
	}
	order = append(order, goqu.I(tiebreak).Asc())

	return ds.Order(order...).
		Limit(uint(req.Size)).
		Offset(uint(req.Offset()))
}

// Window sorts items by req.Sort (then by tiebreak) and returns the requested
// page. compare returns <0, 0 or >0 for the named field. items is not modified.
func Window[T any](items []T, req Request, compare func(a, b T, field string) int, tiebreak string) Page[T] {
	total := len(items)
	if !req.Valid() {
		return NewPage[T](nil, total, req)
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		for _, o := range req.Sort {
			c := compare(a, b, o.Field)
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return compare(a, b, tiebreak)
	})

	start := req.Offset()
	if start >= total {
		return NewPage[T](nil, total, req)
	}
	end := min(start+req.Size, total)
	return NewPage(sorted[start:end], total, req)
}
