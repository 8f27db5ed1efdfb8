package booking

import (
    "context"
    "errors"
    "math"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/repository"
)

// fakeEventStore is an in-memory EventStore with the same CAS semantics
// as the MySQL repository.
type fakeEventStore struct {
    mu     sync.Mutex
    events map[uint64]*model.Event

    failUpdate error // force UpdateAvailableSeats to fail when non-nil
}

func newFakeEventStore(events ...*model.Event) *fakeEventStore {
    s := &fakeEventStore{events: make(map[uint64]*model.Event)}
    for _, ev := range events {
        s.events[ev.ID] = ev
    }
    return s
}

func (s *fakeEventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    ev, ok := s.events[id]
    if !ok {
        return nil, repository.ErrEventNotFound
    }
    cp := *ev
    cp.AvailableSeats = append([]string(nil), ev.AvailableSeats...)
    return &cp, nil
}

func (s *fakeEventStore) UpdateAvailableSeats(_ context.Context, id uint64, prev, next []string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.failUpdate != nil {
        return s.failUpdate
    }
    ev, ok := s.events[id]
    if !ok {
        return repository.ErrEventNotFound
    }
    if !equalSeatSets(ev.AvailableSeats, prev) {
        return repository.ErrSeatSetChanged
    }
    ev.AvailableSeats = append([]string(nil), next...)
    return nil
}

func equalSeatSets(a, b []string) bool {
    if len(a) != len(b) {
        return false
    }
    for i := range a {
        if a[i] != b[i] {
            return false
        }
    }
    return true
}

// fakeReservationStore is an in-memory ReservationStore.
type fakeReservationStore struct {
    mu    sync.Mutex
    seq   uint64
    items map[uint64]*model.Reservation

    failInsert error // force Insert to fail when non-nil
}

func newFakeReservationStore() *fakeReservationStore {
    return &fakeReservationStore{items: make(map[uint64]*model.Reservation)}
}

func (s *fakeReservationStore) FindConflicts(_ context.Context, eventID uint64, date time.Time, seats []string) ([]model.Reservation, error) {
    if len(seats) == 0 {
        return nil, nil
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Reservation
    for _, res := range s.items {
        if res.EventID == eventID && res.BookingDate.Equal(date) && res.IsActive() && len(res.Seats) > 0 {
            out = append(out, *res)
        }
    }
    return out, nil
}

func (s *fakeReservationStore) Insert(_ context.Context, res *model.Reservation) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.failInsert != nil {
        return s.failInsert
    }
    s.seq++
    res.ID = s.seq
    res.CreatedAt = time.Now().UTC()
    res.UpdatedAt = res.CreatedAt
    cp := *res
    s.items[res.ID] = &cp
    return nil
}

func (s *fakeReservationStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    res, ok := s.items[id]
    if !ok {
        return nil, repository.ErrReservationNotFound
    }
    cp := *res
    return &cp, nil
}

func (s *fakeReservationStore) UpdateTicketURL(_ context.Context, id uint64, url string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    res, ok := s.items[id]
    if !ok {
        return repository.ErrReservationNotFound
    }
    u := url
    res.TicketURL = &u
    return nil
}

func freeEvent() *model.Event {
    return &model.Event{
        ID:             1,
        Name:           "Open Air Cinema",
        TicketType:     model.TicketTypeFree,
        TotalSeats:     2,
        AvailableSeats: []string{"A1", "A2"},
    }
}

func bookingDate() time.Time {
    return time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
}

func TestReserveFreeFlow_Success(t *testing.T) {
    events := newFakeEventStore(freeEvent())
    reservations := newFakeReservationStore()
    engine := NewEngine(events, reservations, nil)

    res, err := engine.Reserve(context.Background(), Request{
        EventID:     1,
        UserID:      42,
        BookingDate: bookingDate(),
        GuestCount:  1,
        Seats:       []string{"A1"},
        Flow:        FlowFree,
    })

    require.NoError(t, err)
    require.NotNil(t, res)
    assert.Equal(t, model.StatusConfirmed, res.Status)
    assert.Equal(t, model.PaymentPaid, res.PaymentStatus)
    assert.Equal(t, uint32(0), res.TotalAmountCents)
    assert.Equal(t, []string{"A1"}, res.Seats)
    assert.NotEmpty(t, res.Reference)
    assert.NotZero(t, res.ID)

    ev, err := events.GetByID(context.Background(), 1)
    require.NoError(t, err)
    assert.Equal(t, []string{"A2"}, ev.AvailableSeats)
}

func TestReserve_SeatConflictListsFullOverlap(t *testing.T) {
    ev := freeEvent()
    ev.AvailableSeats = []string{"A1", "A2", "A3"}
    events := newFakeEventStore(ev)
    reservations := newFakeReservationStore()
    engine := NewEngine(events, reservations, nil)
    ctx := context.Background()

    _, err := engine.Reserve(ctx, Request{
        EventID: 1, UserID: 1, BookingDate: bookingDate(), GuestCount: 2,
        Seats: []string{"A1", "A2"}, Flow: FlowFree,
    })
    require.NoError(t, err)

    _, err = engine.Reserve(ctx, Request{
        EventID: 1, UserID: 2, BookingDate: bookingDate(), GuestCount: 3,
        Seats: []string{"A2", "A3", "A1"}, Flow: FlowFree,
    })
    var conflict *SeatConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Equal(t, []string{"A1", "A2"}, conflict.Seats)
}

func TestReserve_DisjointSeatsBothSucceed(t *testing.T) {
    ev := freeEvent()
    events := newFakeEventStore(ev)
    reservations := newFakeReservationStore()
    engine := NewEngine(events, reservations, nil)
    ctx := context.Background()

    _, err := engine.Reserve(ctx, Request{
        EventID: 1, UserID: 1, BookingDate: bookingDate(), GuestCount: 1,
        Seats: []string{"A1"}, Flow: FlowFree,
    })
    require.NoError(t, err)

    _, err = engine.Reserve(ctx, Request{
        EventID: 1, UserID: 2, BookingDate: bookingDate(), GuestCount: 1,
        Seats: []string{"A2"}, Flow: FlowFree,
    })
    require.NoError(t, err)

    got, err := events.GetByID(ctx, 1)
    require.NoError(t, err)
    assert.Empty(t, got.AvailableSeats)
}

func TestReserve_SameSeatDifferentDateSucceeds(t *testing.T) {
    events := newFakeEventStore(freeEvent())
    reservations := newFakeReservationStore()
    engine := NewEngine(events, reservations, nil)
    ctx := context.Background()

    _, err := engine.Reserve(ctx, Request{
        EventID: 1, UserID: 1, BookingDate: bookingDate(), GuestCount: 1,
        Seats: []string{"A1"}, Flow: FlowFree,
    })
    require.NoError(t, err)

    // Conflicts are scoped per (event, date); a different day is free to
    // book the same label even though the shared seat set is smaller now.
    _, err = engine.Reserve(ctx, Request{
        EventID: 1, UserID: 2, BookingDate: bookingDate().AddDate(0, 0, 1), GuestCount: 1,
        Seats: []string{"A2"}, Flow: FlowFree,
    })
    require.NoError(t, err)
}

func TestReserve_WrongFlowIsClientError(t *testing.T) {
    paid := freeEvent()
    paid.TicketType = model.TicketTypePaid
    paid.PriceCents = 1500
    events := newFakeEventStore(paid)
    engine := NewEngine(events, newFakeReservationStore(), nil)

    _, err := engine.Reserve(context.Background(), Request{
        EventID: 1, UserID: 1, BookingDate: bookingDate(), GuestCount: 1, Flow: FlowFree,
    })
    assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestReserve_PaidFlowStartsPendingUnpaid(t *testing.T) {
    paid := freeEvent()
    paid.TicketType = model.TicketTypePaid
    paid.PriceCents = 1500
    events := newFakeEventStore(paid)
    engine := NewEngine(events, newFakeReservationStore(), nil)

    res, err := engine.Reserve(context.Background(), Request{
        EventID: 1, UserID: 7, BookingDate: bookingDate(), GuestCount: 2,
        Seats: []string{"A1", "A2"}, Flow: FlowPaid,
    })
    require.NoError(t, err)
    assert.Equal(t, model.StatusPending, res.Status)
    assert.Equal(t, model.PaymentUnpaid, res.PaymentStatus)
    assert.Equal(t, uint32(3000), res.TotalAmountCents)
}

func TestReserve_UnknownEvent(t *testing.T) {
    engine := NewEngine(newFakeEventStore(), newFakeReservationStore(), nil)
    _, err := engine.Reserve(context.Background(), Request{
        EventID: 99, UserID: 1, BookingDate: bookingDate(), GuestCount: 1, Flow: FlowFree,
    })
    assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestReserve_GuestCountValidation(t *testing.T) {
    reservations := newFakeReservationStore()
    engine := NewEngine(newFakeEventStore(freeEvent()), reservations, nil)

    cases := map[string]int{
        "zero":          0,
        "negative":      -3,
        "above the cap": maxGuestCount + 1,
        "astronomical":  math.MaxInt,
    }
    for name, guests := range cases {
        t.Run(name, func(t *testing.T) {
            _, err := engine.Reserve(context.Background(), Request{
                EventID: 1, UserID: 1, BookingDate: bookingDate(), GuestCount: guests, Flow: FlowFree,
            })
            assert.ErrorIs(t, err, ErrInvalidRequest)
        })
    }
    assert.Empty(t, reservations.items, "no reservation may be created for a rejected guest count")
}

func TestReserve_PaidTotalMustFitCentsColumn(t *testing.T) {
    pricey := freeEvent()
    pricey.TicketType = model.TicketTypePaid
    pricey.PriceCents = math.MaxUint32
    events := newFakeEventStore(pricey)
    reservations := newFakeReservationStore()
    engine := NewEngine(events, reservations, nil)

    _, err := engine.Reserve(context.Background(), Request{
        EventID: 1, UserID: 1, BookingDate: bookingDate(), GuestCount: 2,
        Seats: []string{"A1"}, Flow: FlowPaid,
    })
    assert.ErrorIs(t, err, ErrInvalidRequest)
    assert.Empty(t, reservations.items)

    // The rejection happens before any inventory mutation.
    ev, getErr := events.GetByID(context.Background(), 1)
    require.NoError(t, getErr)
    assert.Equal(t, []string{"A1", "A2"}, ev.AvailableSeats)
}

func TestReserve_SeatLabelsNormalized(t *testing.T) {
    events := newFakeEventStore(freeEvent())
    engine := NewEngine(events, newFakeReservationStore(), nil)

    res, err := engine.Reserve(context.Background(), Request{
        EventID: 1, UserID: 1, BookingDate: bookingDate(), GuestCount: 1,
        Seats: []string{" a1 ", "A1", "a1"}, Flow: FlowFree,
    })
    require.NoError(t, err)
    assert.Equal(t, []string{"A1"}, res.Seats)
}

func TestReserve_InsertFailureRestoresSeats(t *testing.T) {
    events := newFakeEventStore(freeEvent())
    reservations := newFakeReservationStore()
    reservations.failInsert = errors.New("connection reset")
    engine := NewEngine(events, reservations, nil)

    _, err := engine.Reserve(context.Background(), Request{
        EventID: 1, UserID: 1, BookingDate: bookingDate(), GuestCount: 1,
        Seats: []string{"A1"}, Flow: FlowFree,
    })
    var perr *PersistenceError
    require.ErrorAs(t, err, &perr)
    assert.Equal(t, "reservation insert", perr.Op)

    // No partial seat consumption survives the failed attempt.
    ev, getErr := events.GetByID(context.Background(), 1)
    require.NoError(t, getErr)
    assert.Equal(t, []string{"A1", "A2"}, ev.AvailableSeats)
}

func TestReserve_SeatUpdateFailurePropagates(t *testing.T) {
    events := newFakeEventStore(freeEvent())
    events.failUpdate = errors.New("deadlock")
    reservations := newFakeReservationStore()
    engine := NewEngine(events, reservations, nil)

    _, err := engine.Reserve(context.Background(), Request{
        EventID: 1, UserID: 1, BookingDate: bookingDate(), GuestCount: 1,
        Seats: []string{"A1"}, Flow: FlowFree,
    })
    var perr *PersistenceError
    require.ErrorAs(t, err, &perr)
    assert.Equal(t, "seat consumption", perr.Op)
    assert.Empty(t, reservations.items)
}

func TestReserve_ConcurrentRequestsSameSeat(t *testing.T) {
    events := newFakeEventStore(freeEvent())
    reservations := newFakeReservationStore()
    engine := NewEngine(events, reservations, nil)

    const workers = 16
    var wg sync.WaitGroup
    results := make([]error, workers)
    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, err := engine.Reserve(context.Background(), Request{
                EventID: 1, UserID: uint64(i + 1), BookingDate: bookingDate(), GuestCount: 1,
                Seats: []string{"A1"}, Flow: FlowFree,
            })
            results[i] = err
        }(i)
    }
    wg.Wait()

    succeeded := 0
    conflicted := 0
    for _, err := range results {
        var conflict *SeatConflictError
        switch {
        case err == nil:
            succeeded++
        case errors.As(err, &conflict):
            conflicted++
            assert.Equal(t, []string{"A1"}, conflict.Seats)
        default:
            t.Fatalf("unexpected error: %v", err)
        }
    }
    assert.Equal(t, 1, succeeded, "exactly one request may win the seat")
    assert.Equal(t, workers-1, conflicted)
}

func TestReserve_GeneralAdmissionSkipsConflictCheck(t *testing.T) {
    ga := freeEvent()
    ga.AvailableSeats = []string{}
    events := newFakeEventStore(ga)
    engine := NewEngine(events, newFakeReservationStore(), nil)
    ctx := context.Background()

    for user := uint64(1); user <= 3; user++ {
        res, err := engine.Reserve(ctx, Request{
            EventID: 1, UserID: user, BookingDate: bookingDate(), GuestCount: 2, Flow: FlowFree,
        })
        require.NoError(t, err)
        assert.Empty(t, res.Seats)
        assert.Equal(t, model.StatusConfirmed, res.Status)
    }
}
