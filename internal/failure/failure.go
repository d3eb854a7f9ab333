// Package failure defines the typed errors produced while rendering cards.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for batch-level aggregation.
type Kind string

const (
	// KindConfiguration is invalid variant metadata or engine configuration.
	// It is only produced at startup.
	KindConfiguration Kind = "configuration_error"
	// KindValidation is a card or extras value a variant cannot interpret.
	KindValidation Kind = "validation_error"
	// KindMeasurement is a failed or timed out metrics query.
	KindMeasurement Kind = "measurement_error"
	// KindRender is a failed or timed out final composition.
	KindRender Kind = "render_error"
	// KindResourceMissing is a required asset that does not exist.
	KindResourceMissing Kind = "resource_missing"
)

// Error is a failure with a kind and the card it belongs to.
type Error struct {
	Kind Kind
	Card string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Card != "" && e.Err != nil:
		return fmt.Sprintf("%s: card %s: %v", e.Kind, e.Card, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Card != "":
		return fmt.Sprintf("%s: card %s", e.Kind, e.Card)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap returns err as an Error of the given kind. An err that already
// carries a kind keeps it.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// WithCard attaches a card identifier to err, wrapping it with fallback
// when it carries no kind yet.
func WithCard(err error, card string, fallback Kind) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		out := *e
		out.Card = card
		return &out
	}
	return &Error{Kind: fallback, Card: card, Err: err}
}

// KindOf extracts the failure kind from err, or "" when it has none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
