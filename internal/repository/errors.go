// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation engine and handlers to distinguish between different failure
// scenarios without string matching. For example, ErrEventNotFound maps to
// an HTTP 404 while ErrSeatSetChanged signals that a concurrent writer
// modified an event's seat inventory between read and update.
package repository

import "errors"

// ErrEventNotFound is returned when the requested event does not exist in
// the catalog.
var ErrEventNotFound = errors.New("event not found")

// ErrReservationNotFound is returned when the requested reservation does
// not exist.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrUserNotFound is returned when the requested user does not exist in
// the identity projection.
var ErrUserNotFound = errors.New("user not found")

// ErrSeatSetChanged is returned when a compare-and-swap update of an
// event's available seat set matched no row because another writer
// committed a different seat set first. Callers treat this as a
// persistence-level conflict and abort the attempt.
var ErrSeatSetChanged = errors.New("seat set changed concurrently")
