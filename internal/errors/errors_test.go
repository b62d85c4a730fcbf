package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapKeepsSentinelIdentity(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Wrap(ErrUpstreamUnavailable, cause)

	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Error("wrapped error should match its sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if err.Error() != ErrUpstreamUnavailable.Message {
		t.Errorf("Error() leaked internal detail: %q", err.Error())
	}
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "Quantity must be positive")
	if err.Message != "Quantity must be positive" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.StatusCode)
	}
	if ErrInvalidInput.Message != "Invalid input" {
		t.Error("sentinel was mutated")
	}
}

func TestCodeMatching(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same code different message", ErrWatchNotFound, ErrNotFound, true},
		{"position not found", ErrPositionNotFound, ErrNotFound, true},
		{"different code", ErrForbidden, ErrNotFound, false},
		{"plain error", errors.New("boom"), ErrNotFound, false},
		{"wrapped in fmt", fmt.Errorf("ctx: %w", ErrAlreadyWatched), ErrAlreadyWatched, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("x: %w", ErrUnauthenticated)); got != "UNAUTHENTICATED" {
		t.Errorf("CodeOf = %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}
