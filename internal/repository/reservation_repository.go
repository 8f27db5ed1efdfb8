package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/event-ticketing/internal/model"
)

// ReservationRepo provides persistence for reservations.  Seat labels
// booked under a reservation are stored as a JSON array in the seats
// column; conflict candidates are narrowed in SQL by (event, date,
// status) and the label intersection is computed by the caller.  All
// timestamp fields are stored in UTC and booking dates as DATE.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// dateFormat is the storage layout of reservations.booking_date.
const dateFormat = "2006-01-02"

const reservationColumns = `id, reference, event_id, user_id, booking_date, seats, guest_count,
       total_amount_cents, status, payment_status, ticket_url, created_at, updated_at`

// FindConflicts returns every non-cancelled reservation on the same event
// and booking date whose seat set is non-empty.  The caller intersects
// the returned seat sets with the requested labels; keeping the
// intersection in Go keeps the query portable across MySQL JSON
// functions.  When seats is empty no conflict is possible and the query
// is skipped entirely.
func (r *ReservationRepo) FindConflicts(ctx context.Context, eventID uint64, date time.Time, seats []string) ([]model.Reservation, error) {
    if len(seats) == 0 {
        return nil, nil
    }
    const q = `SELECT ` + reservationColumns + `
               FROM reservations
               WHERE event_id = ? AND booking_date = ? AND status <> ? AND JSON_LENGTH(seats) > 0`
    rows, err := r.db.QueryContext(ctx, q, eventID, date.UTC().Format(dateFormat), model.StatusCancelled)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Reservation
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Insert persists a new reservation and populates the generated ID and
// timestamps on the provided value.
func (r *ReservationRepo) Insert(ctx context.Context, res *model.Reservation) error {
    seatsRaw, err := encodeSeatSet(res.Seats)
    if err != nil {
        return err
    }
    const q = `INSERT INTO reservations
               (reference, event_id, user_id, booking_date, seats, guest_count, total_amount_cents, status, payment_status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        res.Reference, res.EventID, res.UserID, res.BookingDate.UTC().Format(dateFormat),
        seatsRaw, res.GuestCount, res.TotalAmountCents, res.Status, res.PaymentStatus,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    // Query back to populate DB-assigned timestamps.
    const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// GetByID loads a single reservation.  It returns ErrReservationNotFound
// when no reservation with the given ID exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    row := r.db.QueryRowContext(ctx, q, id)
    res, err := scanReservation(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    return res, nil
}

// UpdateTicketURL attaches the rendered ticket artifact's location to a
// reservation.  Re-issuing a ticket overwrites the previous value, which
// is safe because artifacts live under a deterministic key per
// reservation.  ErrReservationNotFound is returned when the row is gone.
func (r *ReservationRepo) UpdateTicketURL(ctx context.Context, id uint64, url string) error {
    const q = `UPDATE reservations SET ticket_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, url, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // MySQL reports zero affected rows for a no-op update as well;
        // confirm the row exists before reporting not-found.
        const exists = `SELECT 1 FROM reservations WHERE id = ?`
        var one int
        if err := r.db.QueryRowContext(ctx, exists, id).Scan(&one); err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return ErrReservationNotFound
            }
            return err
        }
    }
    return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanReservation.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

// scanReservation maps one reservations row onto a model.Reservation.
func scanReservation(row rowScanner) (*model.Reservation, error) {
    var res model.Reservation
    var seatsRaw []byte
    var dateStr string
    var ticketURL sql.NullString
    err := row.Scan(
        &res.ID, &res.Reference, &res.EventID, &res.UserID, &dateStr,
        &seatsRaw, &res.GuestCount, &res.TotalAmountCents,
        &res.Status, &res.PaymentStatus, &ticketURL,
        &res.CreatedAt, &res.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    seats, err := decodeSeatSet(seatsRaw)
    if err != nil {
        return nil, err
    }
    res.Seats = seats
    // booking_date is a DATE column; parse the plain form even when the
    // driver hands it back as a string despite parseTime=true.
    if t, err2 := time.Parse(dateFormat, dateStr); err2 == nil {
        res.BookingDate = t.UTC()
    } else if t, err2 := time.Parse("2006-01-02 15:04:05", dateStr); err2 == nil {
        res.BookingDate = t.UTC()
    }
    if ticketURL.Valid {
        u := ticketURL.String
        res.TicketURL = &u
    }
    return &res, nil
}
