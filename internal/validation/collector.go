package validation

import (
	"errors"
	"time"
)

// Collector gathers failures across the fields of one record so that all of
// them are reported together.
//
//	var c validation.Collector
//	b.Title = c.String(validation.Required("title", b.Title))
//	if err := c.Err(); err != nil { ... }
type Collector struct {
	errs Errors
}

// String records err, if any, and returns v unchanged.
func (c *Collector) String(v string, err error) string {
	c.Add(err)
	return v
}

// Time records err, if any, and returns v unchanged.
func (c *Collector) Time(v time.Time, err error) time.Time {
	c.Add(err)
	return v
}

// Add records err, if any. The failures of an Errors value are merged in.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	if details, ok := Details(err); ok {
		c.errs = append(c.errs, details...)
		return
	}
	c.errs = append(c.errs, Failure{Field: "", Reason: err.Error()})
}

// Err returns nil when nothing failed, otherwise the collected Errors.
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	out := make(Errors, len(c.errs))
	copy(out, c.errs)
	return out
}

// Details flattens a validation error into its failures. ok is false when err
// carries no validation failure.
func Details(err error) (details []Failure, ok bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	var f *Failure
	if errors.As(err, &f) {
		return []Failure{*f}, true
	}
	return nil, false
}
