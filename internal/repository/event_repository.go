package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"

    "github.com/iliyamo/event-ticketing/internal/model"
)

// EventRepo provides read access to the event catalog and the single
// mutation this service performs on it: replacing an event's available
// seat set when seats are consumed.  Seat labels are stored as a JSON
// array in the available_seats column so the whole set is always read
// and written as one value.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// GetByID loads a single event.  It returns ErrEventNotFound when no
// event with the given ID exists.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
    const q = `SELECT id, name, ticket_type, price_cents, total_seats, available_seats, created_at, updated_at
               FROM events WHERE id = ?`
    var ev model.Event
    var seatsRaw []byte
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &ev.ID, &ev.Name, &ev.TicketType, &ev.PriceCents, &ev.TotalSeats,
        &seatsRaw, &ev.CreatedAt, &ev.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrEventNotFound
        }
        return nil, err
    }
    seats, err := decodeSeatSet(seatsRaw)
    if err != nil {
        return nil, err
    }
    ev.AvailableSeats = seats
    return &ev, nil
}

// UpdateAvailableSeats replaces an event's available seat set with next,
// but only if the stored set still equals prev.  The conditional single
// UPDATE makes the mutation atomic per event even across processes: a
// concurrent writer that committed first leaves no matching row and the
// call returns ErrSeatSetChanged.  ErrEventNotFound is returned when the
// event itself is gone.
func (r *EventRepo) UpdateAvailableSeats(ctx context.Context, id uint64, prev, next []string) error {
    prevRaw, err := encodeSeatSet(prev)
    if err != nil {
        return err
    }
    nextRaw, err := encodeSeatSet(next)
    if err != nil {
        return err
    }
    const q = `UPDATE events SET available_seats = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND available_seats = CAST(? AS JSON)`
    res, err := r.db.ExecContext(ctx, q, nextRaw, id, prevRaw)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish a vanished event from a lost CAS race.
        const exists = `SELECT 1 FROM events WHERE id = ?`
        var one int
        if err := r.db.QueryRowContext(ctx, exists, id).Scan(&one); err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return ErrEventNotFound
            }
            return err
        }
        return ErrSeatSetChanged
    }
    return nil
}

// encodeSeatSet serialises seat labels for storage.  A nil slice is
// stored as an empty JSON array so the column never holds SQL NULL.
func encodeSeatSet(seats []string) ([]byte, error) {
    if seats == nil {
        seats = []string{}
    }
    return json.Marshal(seats)
}

// decodeSeatSet parses the stored JSON array back into a label slice.
func decodeSeatSet(raw []byte) ([]string, error) {
    if len(raw) == 0 {
        return []string{}, nil
    }
    var seats []string
    if err := json.Unmarshal(raw, &seats); err != nil {
        return nil, err
    }
    if seats == nil {
        seats = []string{}
    }
    return seats, nil
}
