package ai

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies why the AI provider could not serve a request.
type Kind int

const (
	KindProvider Kind = iota
	KindTimedOut
	KindMissingCredential
)

func (k Kind) String() string {
	switch k {
	case KindProvider:
		return "provider_error"
	case KindTimedOut:
		return "timed_out"
	case KindMissingCredential:
		return "missing_credential"
	}
	return "unknown"
}

// UnavailableError is the single failure shape the gateway exposes. Raw
// provider errors never escape; they are wrapped here so callers can branch
// on Kind without knowing which SDK sits underneath.
type UnavailableError struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ai unavailable (%s, %s)", e.Provider, e.Kind)
	}
	return fmt.Sprintf("ai unavailable (%s, %s): %v", e.Provider, e.Kind, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// AsUnavailable extracts an UnavailableError from an error chain.
func AsUnavailable(err error) (*UnavailableError, bool) {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// classify wraps a provider failure, preferring the timeout kind when the
// request deadline already fired.
func classify(provider string, ctx context.Context, err error) error {
	kind := KindProvider
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = KindTimedOut
	}
	return &UnavailableError{Kind: kind, Provider: provider, Err: err}
}
