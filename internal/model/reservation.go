package model

import "time"

// Reservation status values.  A reservation is created PENDING by the paid
// flow and CONFIRMED directly by the free flow; cancellation is handled by an
// external collaborator and never by this service.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Payment status values.  Free reservations are marked PAID at the moment
// they are confirmed; paid reservations stay UNPAID until the payment
// provider's callback finalises them.
const (
	PaymentUnpaid = "UNPAID"
	PaymentPaid   = "PAID"
)

// Reservation records a user's claim on event capacity for a specific date.
// It aggregates zero or more seat labels booked in a single request and
// tracks the booking and payment state together so the two can never
// disagree.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – public booking reference (UUID) handed to clients.
//  EventID          – event being booked.
//  UserID           – user who made the reservation.
//  BookingDate      – date of attendance; conflicts are scoped per
//                     (event, booking date).
//  Seats            – seat labels claimed by this reservation; empty for
//                     general-admission bookings.
//  GuestCount       – number of guests admitted under this reservation.
//  TotalAmountCents – total price in cents; always zero for free events.
//  Status           – PENDING, CONFIRMED or CANCELLED.
//  PaymentStatus    – UNPAID or PAID.
//  TicketURL        – location of the rendered ticket artifact, nil until
//                     issuance succeeds.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Reservation struct {
	ID               uint64    `json:"id"`                   // reservations.id
	Reference        string    `json:"reference"`            // reservations.reference
	EventID          uint64    `json:"event_id"`             // reservations.event_id
	UserID           uint64    `json:"user_id"`              // reservations.user_id
	BookingDate      time.Time `json:"booking_date"`         // reservations.booking_date
	Seats            []string  `json:"seats"`                // reservations.seats (JSON array)
	GuestCount       int       `json:"guest_count"`          // reservations.guest_count
	TotalAmountCents uint32    `json:"total_amount_cents"`   // reservations.total_amount_cents
	Status           string    `json:"status"`               // reservations.status
	PaymentStatus    string    `json:"payment_status"`       // reservations.payment_status
	TicketURL        *string   `json:"ticket_url,omitempty"` // reservations.ticket_url (nullable)
	CreatedAt        time.Time `json:"created_at"`           // reservations.created_at
	UpdatedAt        time.Time `json:"updated_at"`           // reservations.updated_at
}

// IsActive reports whether the reservation still holds its seats.  Cancelled
// reservations release their labels and are ignored by conflict checks.
func (r *Reservation) IsActive() bool { return r.Status != StatusCancelled }
