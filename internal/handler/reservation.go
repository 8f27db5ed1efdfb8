package handler

import (
    "context"  // context type for the publish helpers
    "errors"   // errors.Is/As comparisons against engine error kinds
    "log"      // issuance failures are logged, never returned as reservation failures
    "net/http" // HTTP status codes
    "time"     // booking date parsing

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/event-ticketing/internal/booking"
    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/queue"
    queue_publisher "github.com/iliyamo/event-ticketing/internal/service"
    "github.com/iliyamo/event-ticketing/internal/ticket"
)

// ReservationHandler exposes the reservation engine and the ticket
// issuance pipeline over HTTP.  JWT authentication has already been
// performed by middleware; methods return 401 when the user ID cannot
// be extracted from the context.
type ReservationHandler struct {
    Engine       *booking.Engine          // admission decisions and seat consumption
    Issuer       *ticket.Issuer           // turns confirmed reservations into artifacts
    Reservations booking.ReservationStore // lookup for the issuance retry path
    Events       ticket.EventDirectory    // event names for published messages
}

// NewReservationHandler constructs a ReservationHandler.  All
// dependencies must be non-nil.
func NewReservationHandler(engine *booking.Engine, issuer *ticket.Issuer, reservations booking.ReservationStore, events ticket.EventDirectory) *ReservationHandler {
    if engine == nil || issuer == nil || reservations == nil || events == nil {
        panic("nil dependency passed to NewReservationHandler")
    }
    return &ReservationHandler{Engine: engine, Issuer: issuer, Reservations: reservations, Events: events}
}

// freeReservationRequest is the JSON body of the free-reservation
// endpoint.  Seats may be empty for general-admission events.
type freeReservationRequest struct {
    BookingDate string   `json:"booking_date"`
    GuestCount  int      `json:"guest_count"`
    Seats       []string `json:"seats"`
}

// CreateFreeReservation handles POST /v1/events/:id/reservations/free.
// It runs the free reservation flow: conflict-checked admission,
// immediate confirmation with a zero price, then ticket issuance.  A
// failed issuance is reported in the response as a null ticket_url but
// never rolls the reservation back; clients recover through the retry
// endpoint.  Seat conflicts return 409 with the full colliding seat list.
func (h *ReservationHandler) CreateFreeReservation(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body freeReservationRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    bookingDate, err := time.Parse("2006-01-02", body.BookingDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking_date, expected YYYY-MM-DD"})
    }

    ctx := c.Request().Context()
    res, err := h.Engine.Reserve(ctx, booking.Request{
        EventID:     eventID,
        UserID:      userID,
        BookingDate: bookingDate,
        GuestCount:  body.GuestCount,
        Seats:       body.Seats,
        Flow:        booking.FlowFree,
    })
    if err != nil {
        var conflict *booking.SeatConflictError
        switch {
        case errors.Is(err, booking.ErrEventNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        case errors.Is(err, booking.ErrInvalidRequest):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        case errors.As(err, &conflict):
            return c.JSON(http.StatusConflict, echo.Map{
                "error":             "seats already reserved",
                "conflicting_seats": conflict.Seats,
            })
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
        }
    }

    // The reservation is durably confirmed; issuance runs outside the
    // seat critical section and its failure leaves a valid, recoverable
    // state.
    ticketURL, issueErr := h.Issuer.Issue(ctx, res)
    if issueErr != nil {
        log.Printf("reservation %d confirmed but ticket issuance failed: %v", res.ID, issueErr)
    }

    h.publishConfirmed(ctx, res)
    if issueErr == nil {
        h.publishIssued(ctx, res, ticketURL)
    }

    resp := echo.Map{"reservation": res}
    if issueErr == nil {
        resp["ticket_url"] = ticketURL
    } else {
        resp["ticket_url"] = nil
    }
    return c.JSON(http.StatusCreated, resp)
}

// RetryTicketIssuance handles POST /v1/reservations/:id/ticket.  It
// re-runs the issuance pipeline for a Confirmed reservation owned by the
// caller.  The artifact is overwritten under its deterministic key, so
// retries never accumulate duplicates.
func (h *ReservationHandler) RetryTicketIssuance(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    ctx := c.Request().Context()
    res, err := h.Reservations.GetByID(ctx, resID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
    }
    if res.UserID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    ticketURL, err := h.Issuer.Issue(ctx, res)
    if err != nil {
        if errors.Is(err, ticket.ErrNotConfirmed) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not confirmed"})
        }
        log.Printf("ticket issuance retry failed for reservation %d: %v", res.ID, err)
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "ticket issuance failed"})
    }
    h.publishIssued(ctx, res, ticketURL)
    return c.JSON(http.StatusOK, echo.Map{"ticket_url": ticketURL})
}

// publishConfirmed emits the reservation.confirmed event.  Broker
// failures are logged by the publisher and ignored here: messaging is
// best-effort and never blocks a booking response.
func (h *ReservationHandler) publishConfirmed(ctx context.Context, res *model.Reservation) {
    eventName := ""
    if ev, err := h.Events.GetByID(ctx, res.EventID); err == nil {
        eventName = ev.Name
    }
    _ = queue_publisher.PublishReservationConfirmed(ctx, queue.ReservationConfirmedEvent{
        ReservationID:    res.ID,
        Reference:        res.Reference,
        UserID:           res.UserID,
        EventID:          res.EventID,
        EventName:        eventName,
        BookingDate:      res.BookingDate.Format("2006-01-02"),
        Seats:            res.Seats,
        GuestCount:       res.GuestCount,
        TotalAmountCents: res.TotalAmountCents,
        ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
    })
}

func (h *ReservationHandler) publishIssued(ctx context.Context, res *model.Reservation, url string) {
    _ = queue_publisher.PublishTicketIssued(ctx, queue.TicketIssuedEvent{
        ReservationID: res.ID,
        Reference:     res.Reference,
        TicketURL:     url,
        IssuedAt:      time.Now().UTC().Format(time.RFC3339),
    })
}
