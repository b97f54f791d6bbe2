package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse is matched by errors produced when generated text is not well-formed JSON.
	ErrParse = errors.New("parse error")

	// ErrShape is matched by errors produced when a tutorial or record misses
	// required fields or breaks a card rule.
	ErrShape = errors.New("shape error")

	// ErrNotFound is returned when a tutorial or record id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrStorage is matched by failures of the underlying persistence medium.
	ErrStorage = errors.New("storage error")
)

// ParseError wraps the decoder failure for a generation response.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ShapeError names the field (and card, when Card >= 0) that violated a rule.
type ShapeError struct {
	Field  string
	Reason string
	Card   int
	Type   CardType
}

// NewShapeError builds a tutorial-level shape error.
func NewShapeError(field, reason string) *ShapeError {
	return &ShapeError{Field: field, Reason: reason, Card: -1}
}

// NewCardShapeError builds a shape error attached to the card at index i.
func NewCardShapeError(i int, t CardType, field, reason string) *ShapeError {
	return &ShapeError{Field: field, Reason: reason, Card: i, Type: t}
}

func (e *ShapeError) Error() string {
	if e.Card >= 0 {
		if e.Type != "" {
			return fmt.Sprintf("card %d (%s): field %q: %s", e.Card, e.Type, e.Field, e.Reason)
		}
		return fmt.Sprintf("card %d: field %q: %s", e.Card, e.Field, e.Reason)
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// AggregateError represents multiple shape violations found in one pass.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ShapeErrors returns every ShapeError carried by err.
func ShapeErrors(err error) []*ShapeError {
	var out []*ShapeError
	var agg *AggregateError
	if errors.As(err, &agg) {
		for _, inner := range agg.Errors {
			out = append(out, ShapeErrors(inner)...)
		}
		return out
	}
	var se *ShapeError
	if errors.As(err, &se) {
		out = append(out, se)
	}
	return out
}

// StorageError wraps a persistence medium failure.
type StorageError struct {
	Op  string
	ID  string
	Err error
}

func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// NotFoundError wraps ErrNotFound with the id that was looked up.
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
