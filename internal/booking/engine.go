package booking

import (
    "context"
    "errors"
    "fmt"
    "log"
    "math"
    "sort"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/repository"
)

// Flow selects which reservation flow is calling the engine.  The free
// flow requires a FREE event and confirms immediately; the paid flow
// requires a PAID event and leaves the reservation pending for the
// payment provider's callback to finalise.
type Flow int

const (
    FlowFree Flow = iota
    FlowPaid
)

// maxGuestCount caps the guests admitted under a single reservation.
// The bound also keeps guest_count and the cents total inside their
// storage column ranges.
const maxGuestCount = 100

// EventStore is the engine's view of the event catalog.
type EventStore interface {
    // GetByID returns repository.ErrEventNotFound when the event is absent.
    GetByID(ctx context.Context, id uint64) (*model.Event, error)
    // UpdateAvailableSeats replaces the seat set atomically per event; it
    // must fail when the stored set no longer equals prev.
    UpdateAvailableSeats(ctx context.Context, id uint64, prev, next []string) error
}

// ReservationStore is the engine's view of reservation persistence.
type ReservationStore interface {
    // FindConflicts returns non-cancelled reservations on (eventID, date)
    // that hold at least one seat label; the engine computes the
    // intersection with the requested set.
    FindConflicts(ctx context.Context, eventID uint64, date time.Time, seats []string) ([]model.Reservation, error)
    Insert(ctx context.Context, res *model.Reservation) error
    GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
    UpdateTicketURL(ctx context.Context, id uint64, url string) error
}

// Request carries the parameters of a single reservation attempt.
type Request struct {
    EventID     uint64
    UserID      uint64
    BookingDate time.Time
    GuestCount  int
    Seats       []string
    Flow        Flow
}

// Engine validates reservation requests against catalog and inventory
// state, detects seat conflicts and produces reservations in a
// well-defined state.  All check-then-act work for one (event, date) key
// runs under a per-key mutex so concurrent requests are serialised
// exactly where they share inventory and nowhere else.
type Engine struct {
    events       EventStore
    reservations ReservationStore
    locks        *keyedMutex
    cache        *redis.Client // optional; availability cache invalidation
}

// NewEngine constructs an Engine.  The redis client may be nil, in which
// case availability-cache invalidation is skipped.
func NewEngine(events EventStore, reservations ReservationStore, cache *redis.Client) *Engine {
    if events == nil || reservations == nil {
        panic("nil store passed to NewEngine")
    }
    return &Engine{
        events:       events,
        reservations: reservations,
        locks:        newKeyedMutex(),
        cache:        cache,
    }
}

// AvailabilityCacheKey is the redis key holding the cached availability
// view of an event.  The engine deletes it whenever seats are consumed.
func AvailabilityCacheKey(eventID uint64) string {
    return fmt.Sprintf("availability:%d", eventID)
}

// Reserve executes one reservation attempt.  On success the returned
// reservation is persisted and, for the free flow, already Confirmed and
// Paid with a zero price.  Expected failures are reported as
// ErrEventNotFound, ErrInvalidRequest, *SeatConflictError or
// *PersistenceError; no partial seat consumption survives any of them.
func (e *Engine) Reserve(ctx context.Context, req Request) (*model.Reservation, error) {
    if req.GuestCount < 1 || req.GuestCount > maxGuestCount {
        return nil, fmt.Errorf("%w: guest count must be between 1 and %d", ErrInvalidRequest, maxGuestCount)
    }
    seats := normalizeSeats(req.Seats)
    date := req.BookingDate.UTC().Truncate(24 * time.Hour)

    // Serialise the conflict check and the seat consumption per
    // (event, date).  Requests on other keys are not blocked.
    key := fmt.Sprintf("%d:%s", req.EventID, date.Format("2006-01-02"))
    e.locks.Lock(key)
    defer e.locks.Unlock(key)

    ev, err := e.events.GetByID(ctx, req.EventID)
    if err != nil {
        if errors.Is(err, repository.ErrEventNotFound) {
            return nil, ErrEventNotFound
        }
        return nil, &PersistenceError{Op: "event lookup", Err: err}
    }

    // Flow mismatch is a client error: the free flow must not touch paid
    // events and the paid flow must not touch free ones.
    if req.Flow == FlowFree && !ev.IsFree() {
        return nil, fmt.Errorf("%w: event %d is not free", ErrInvalidRequest, ev.ID)
    }
    if req.Flow == FlowPaid && ev.IsFree() {
        return nil, fmt.Errorf("%w: event %d is not paid", ErrInvalidRequest, ev.ID)
    }

    if len(seats) > 0 {
        existing, err := e.reservations.FindConflicts(ctx, ev.ID, date, seats)
        if err != nil {
            return nil, &PersistenceError{Op: "conflict query", Err: err}
        }
        if colliding := collidingSeats(existing, seats); len(colliding) > 0 {
            return nil, &SeatConflictError{Seats: colliding}
        }
    }

    res := &model.Reservation{
        Reference:   uuid.NewString(),
        EventID:     ev.ID,
        UserID:      req.UserID,
        BookingDate: date,
        Seats:       seats,
        GuestCount:  req.GuestCount,
    }
    switch req.Flow {
    case FlowFree:
        // Free reservations carry no charge and confirm synchronously;
        // payment state is settled at the same instant as the status.
        res.TotalAmountCents = 0
        res.Status = model.StatusConfirmed
        res.PaymentStatus = model.PaymentPaid
    case FlowPaid:
        // Widen before multiplying; the per-guest price times the guest
        // count must still fit the cents column.
        total := uint64(ev.PriceCents) * uint64(req.GuestCount)
        if total > math.MaxUint32 {
            return nil, fmt.Errorf("%w: total amount exceeds the representable range", ErrInvalidRequest)
        }
        res.TotalAmountCents = uint32(total)
        res.Status = model.StatusPending
        res.PaymentStatus = model.PaymentUnpaid
    }

    // Consume seats before inserting the reservation: if the insert then
    // fails the seat set is restored under the same lock, so neither a
    // half-consumed inventory nor a seatless committed claim is left
    // behind.
    var prevSeats []string
    if len(seats) > 0 {
        prevSeats = ev.AvailableSeats
        next := subtractSeats(ev.AvailableSeats, seats)
        if err := e.events.UpdateAvailableSeats(ctx, ev.ID, prevSeats, next); err != nil {
            return nil, &PersistenceError{Op: "seat consumption", Err: err}
        }
    }

    if err := e.reservations.Insert(ctx, res); err != nil {
        if len(seats) > 0 {
            next := subtractSeats(prevSeats, seats)
            if restoreErr := e.events.UpdateAvailableSeats(ctx, ev.ID, next, prevSeats); restoreErr != nil {
                log.Printf("booking: failed to restore seat set for event %d after insert failure: %v", ev.ID, restoreErr)
            }
        }
        return nil, &PersistenceError{Op: "reservation insert", Err: err}
    }

    if len(seats) > 0 {
        e.invalidateAvailability(ctx, ev.ID)
    }
    return res, nil
}

// invalidateAvailability drops the cached availability view after seats
// were consumed.  Cache failures never fail a reservation.
func (e *Engine) invalidateAvailability(ctx context.Context, eventID uint64) {
    if e.cache == nil {
        return
    }
    if err := e.cache.Del(ctx, AvailabilityCacheKey(eventID)).Err(); err != nil {
        log.Printf("booking: availability cache invalidation failed for event %d: %v", eventID, err)
    }
}

// normalizeSeats trims, upper-cases and deduplicates seat labels while
// preserving request order.  Empty labels are dropped.
func normalizeSeats(raw []string) []string {
    out := make([]string, 0, len(raw))
    seen := make(map[string]struct{}, len(raw))
    for _, s := range raw {
        label := strings.ToUpper(strings.TrimSpace(s))
        if label == "" {
            continue
        }
        if _, ok := seen[label]; ok {
            continue
        }
        seen[label] = struct{}{}
        out = append(out, label)
    }
    return out
}

// collidingSeats returns every requested label held by any of the given
// reservations, sorted for deterministic client output.
func collidingSeats(existing []model.Reservation, requested []string) []string {
    want := make(map[string]struct{}, len(requested))
    for _, s := range requested {
        want[s] = struct{}{}
    }
    hit := make(map[string]struct{})
    for _, res := range existing {
        if !res.IsActive() {
            continue
        }
        for _, s := range res.Seats {
            if _, ok := want[s]; ok {
                hit[s] = struct{}{}
            }
        }
    }
    if len(hit) == 0 {
        return nil
    }
    out := make([]string, 0, len(hit))
    for s := range hit {
        out = append(out, s)
    }
    sort.Strings(out)
    return out
}

// subtractSeats returns available minus taken, preserving order.
func subtractSeats(available, taken []string) []string {
    drop := make(map[string]struct{}, len(taken))
    for _, s := range taken {
        drop[s] = struct{}{}
    }
    out := make([]string, 0, len(available))
    for _, s := range available {
        if _, ok := drop[s]; ok {
            continue
        }
        out = append(out, s)
    }
    return out
}
