// Package ingest fills the catalog in bulk from a list of ISBNs, asking the
// metadata provider for several books per request.
package ingest

import (
	"context"
	"time"

	"bookcatalog/internal/platform/openlibrary"
)

// Outcome of one ISBN in a run.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeExists  Outcome = "exists"
	OutcomeMissing Outcome = "missing"
	OutcomeInvalid Outcome = "invalid"
	OutcomeFailed  Outcome = "failed"
)

type Item struct {
	ISBN    string  `json:"isbn"`
	Outcome Outcome `json:"outcome"`
	BookID  string  `json:"book_id,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// Run summarizes an ingestion. Each distinct ISBN of the request appears once
// in Items: malformed and already stored ones first, then the looked up ones.
type Run struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Counts     map[Outcome]int `json:"counts"`
	Items      []Item          `json:"items"`
}

func (r *Run) record(item Item) {
	r.Items = append(r.Items, item)
	r.Counts[item.Outcome]++
}

type Provider interface {
	GetBooksByISBN(ctx context.Context, isbns []string) (map[string]openlibrary.BookDetails, error)
}
