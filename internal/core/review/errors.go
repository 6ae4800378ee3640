package review

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when an operation starts while another one is still
	// running on the same session.
	ErrBusy = errors.New("another review operation is in progress")
	// ErrSessionClosed is returned when the session was torn down while an
	// operation was waiting on the remote.
	ErrSessionClosed = errors.New("review session closed")
)

// TransportError wraps a failed remote call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EmptyResultError reports a well-formed response with no matching records.
type EmptyResultError struct {
	What string
}

func (e *EmptyResultError) Error() string {
	return "no " + e.What
}

// PlacementError reports a comment location outside every diff hunk.
type PlacementError struct {
	Path  string
	Side  DiffSide
	Start int
	End   int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("%s %s:%d-%d is outside any diff hunk", e.Path, e.Side, e.Start, e.End)
}

// InvalidContextError reports an operation invoked in a state that does not
// allow it.
type InvalidContextError struct {
	Op     string
	Reason string
}

func (e *InvalidContextError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Op, e.Reason)
}

// IsEmptyResult reports whether err is an EmptyResultError.
func IsEmptyResult(err error) bool {
	var target *EmptyResultError
	return errors.As(err, &target)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}
