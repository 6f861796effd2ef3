package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when route selection is asked to choose
// among zero candidates.
var ErrEmptyInput = errors.New("no candidates supplied")

// UpstreamError wraps a failure of an external collaborator (geocoding,
// route enumeration) together with the input it was called with.
// The underlying error is kept as-is and reachable through errors.Is/As.
type UpstreamError struct {
	Op    string
	Input string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Input, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
