package model

import "time"

// TicketType distinguishes events whose reservations must go through the
// payment provider from events that confirm immediately.
const (
	TicketTypeFree = "FREE"
	TicketTypePaid = "PAID"
)

// Event describes a bookable event in the catalog.  The catalog itself is
// administered elsewhere; this service only reads events and consumes their
// seat inventory.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – human readable event name, embedded in ticket payloads.
//  TicketType     – FREE or PAID; decides which reservation flow applies.
//  PriceCents     – per-guest price in cents (zero for free events).
//  TotalSeats     – total capacity of the event.
//  AvailableSeats – labels still open for booking.  An empty set means the
//                   event is general admission and seats are never assigned.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Event struct {
	ID             uint64    `json:"id"`              // events.id
	Name           string    `json:"name"`            // events.name
	TicketType     string    `json:"ticket_type"`     // events.ticket_type
	PriceCents     uint32    `json:"price_cents"`     // events.price_cents
	TotalSeats     uint32    `json:"total_seats"`     // events.total_seats
	AvailableSeats []string  `json:"available_seats"` // events.available_seats (JSON array)
	CreatedAt      time.Time `json:"created_at"`      // events.created_at
	UpdatedAt      time.Time `json:"updated_at"`      // events.updated_at
}

// IsFree reports whether reservations on this event skip payment.
func (e *Event) IsFree() bool { return e.TicketType == TicketTypeFree }
