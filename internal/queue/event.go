// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is successfully
// confirmed.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
type ReservationConfirmedEvent struct {
    ReservationID    uint64   `json:"reservation_id"`
    Reference        string   `json:"reference"`
    UserID           uint64   `json:"user_id"`
    EventID          uint64   `json:"event_id"`
    EventName        string   `json:"event_name"`
    BookingDate      string   `json:"booking_date"`
    Seats            []string `json:"seats"`
    GuestCount       int      `json:"guest_count"`
    TotalAmountCents uint32   `json:"total_amount_cents"`
    ConfirmedAt      string   `json:"confirmed_at"`
}

// TicketIssuedEvent is published after the ticket artifact pipeline
// attaches an artifact URL to a reservation, including retries.
type TicketIssuedEvent struct {
    ReservationID uint64 `json:"reservation_id"`
    Reference     string `json:"reference"`
    TicketURL     string `json:"ticket_url"`
    IssuedAt      string `json:"issued_at"`
}
