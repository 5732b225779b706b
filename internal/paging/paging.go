// Package paging turns page/size/sort parameters into a bounded, ordered window
// over a result set, either in SQL (through goqu) or over an in-memory slice.
package paging

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Order is one sort key.
type Order struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Request selects a zero-based page of Size elements after sorting by Sort.
type Request struct {
	Page int
	Size int
	Sort []Order
}

// Valid reports whether the request addresses a real page. Invalid requests
// produce an empty page instead of an error. A page whose offset does not fit
// in an int is invalid.
func (r Request) Valid() bool {
	return r.Size >= 1 && r.Size <= MaxSize &&
		r.Page >= 0 && r.Page <= (math.MaxInt-r.Size)/r.Size
}

func (r Request) Offset() int {
	return r.Page * r.Size
}

// Page is one window of a sorted, filtered result set.
type Page[T any] struct {
	Content          []T `json:"content"`
	TotalElements    int `json:"total_elements"`
	TotalPages       int `json:"total_pages"`
	NumberOfElements int `json:"number_of_elements"`
	Number           int `json:"page"`
	Size             int `json:"size"`
}

// NewPage assembles the page metadata for content taken from a result set of
// total elements.
func NewPage[T any](content []T, total int, req Request) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}
	return Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(content),
		Number:           req.Page,
		Size:             req.Size,
	}
}

// Meta is the page metadata without its content, for response envelopes.
func (p Page[T]) Meta() map[string]any {
	return map[string]any{
		"page":               p.Number,
		"size":               p.Size,
		"total_elements":     p.TotalElements,
		"total_pages":        p.TotalPages,
		"number_of_elements": p.NumberOfElements,
	}
}

// FromQuery reads page, size and sort from query parameters. Sort keys are
// given as repeated "sort=field" or "sort=field,desc" values; fields missing
// from allowed are dropped. allowed maps public names to storage columns.
func FromQuery(q url.Values, allowed map[string]string) Request {
	req := Request{Page: 0, Size: DefaultSize}

	if s := q.Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			req.Page = n
		} else {
			req.Page = -1
		}
	}
	if s := q.Get("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			req.Size = n
		} else {
			req.Size = 0
		}
	}

	for _, raw := range q["sort"] {
		field, dir, _ := strings.Cut(raw, ",")
		field = strings.TrimSpace(field)
		if _, ok := allowed[field]; !ok {
			continue
		}
		req.Sort = append(req.Sort, Order{
			Field: field,
			Desc:  strings.EqualFold(strings.TrimSpace(dir), "desc"),
		})
	}
	return req
}
