// Package validation holds the field-level validators applied to books and users
// before they are accepted for storage. Validators are pure: they return the
// normalized value or a *Failure, and never touch storage.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Failure reports a single field that violates its invariant.
type Failure struct {
	Field  string `json:"field"`
	Reason string `json:"message"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Reason)
}

// Errors is the set of failures found while validating a whole record.
type Errors []Failure

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i := range e {
		parts[i] = e[i].Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fail(field, reason string) *Failure {
	return &Failure{Field: field, Reason: reason}
}

// Required trims value and rejects it when nothing is left.
func Required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fail(field, fmt.Sprintf("The %s field is required", field))
	}
	return v, nil
}

// Digits accepts a required value made only of the characters 0-9.
func Digits(field, value string) (string, error) {
	v, err := Required(field, value)
	if err != nil {
		return "", err
	}
	if !isDigits(v) {
		return "", fail(field, fmt.Sprintf("The %s must be a number", field))
	}
	return v, nil
}

// PositiveInt accepts a digit string whose integer value is greater than zero.
func PositiveInt(field, value string) (string, error) {
	v, err := Digits(field, value)
	if err != nil {
		return "", err
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		// only overflow can get here, which is still > 0
		return v, nil
	}
	if n == 0 {
		return "", fail(field, fmt.Sprintf("The %s must be greater than zero", field))
	}
	return v, nil
}

// PastDate accepts a date whose calendar day is strictly before the calendar day
// of now. The returned value is truncated to midnight UTC.
func PastDate(field string, value, now time.Time) (time.Time, error) {
	if value.IsZero() {
		return time.Time{}, fail(field, fmt.Sprintf("The %s field is required", field))
	}
	day := DateOf(value)
	if !day.Before(DateOf(now)) {
		return time.Time{}, fail(field, fmt.Sprintf("The %s must be earlier to the current date", field))
	}
	return day, nil
}

// DateOf drops the clock part of t, keeping its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
