// Package booking implements the reservation engine: admission decisions
// under concurrent demand, seat-conflict detection and consumption of
// event seat inventory.  Expected outcomes such as a seat conflict or a
// wrong-flow request are reported as typed error values rather than
// raised as faults, so handlers can map them to precise client responses.
package booking

import (
    "errors"
    "fmt"
    "strings"
)

// ErrEventNotFound is returned when the requested event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrInvalidRequest is returned for client mistakes: a guest count
// outside the accepted range, a total that cannot be represented in
// cents, or an event whose ticket type does not match the calling flow
// (booking a paid event through the free flow and vice versa).
var ErrInvalidRequest = errors.New("invalid reservation request")

// SeatConflictError reports that one or more requested seat labels are
// already held by a non-cancelled reservation on the same event and date.
// Seats always carries the full colliding set, not just the first hit,
// so clients can show the user every seat at fault in one round trip.
type SeatConflictError struct {
    Seats []string
}

func (e *SeatConflictError) Error() string {
    return fmt.Sprintf("seats already reserved: %s", strings.Join(e.Seats, ", "))
}

// PersistenceError wraps a store-level failure inside the reservation
// critical section.  The engine propagates it without retrying; by the
// time it is returned no partial seat consumption is left committed.
type PersistenceError struct {
    Op  string
    Err error
}

func (e *PersistenceError) Error() string {
    return fmt.Sprintf("reservation persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
