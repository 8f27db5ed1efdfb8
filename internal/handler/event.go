package handler

import (
    "encoding/json" // cache entries are stored as serialized JSON
    "net/http"      // HTTP status codes

    "github.com/labstack/echo/v4"  // Echo web framework
    "github.com/redis/go-redis/v9" // read-through availability cache

    "github.com/iliyamo/event-ticketing/internal/booking"
    "github.com/iliyamo/event-ticketing/internal/config"
    "github.com/iliyamo/event-ticketing/internal/ticket"
)

// EventHandler serves read-only event availability.  Lookups go through
// a Redis cache that the reservation engine invalidates whenever seats
// are consumed, so hot events during a booking rush do not hammer the
// database.
type EventHandler struct {
    Events   ticket.EventDirectory
    Cache    *redis.Client // may be nil; caching is then disabled
    CacheCfg config.AvailabilityCacheConfig
}

// NewEventHandler constructs an EventHandler.  The event directory must
// be non-nil; the cache client may be nil.
func NewEventHandler(events ticket.EventDirectory, cache *redis.Client, cacheCfg config.AvailabilityCacheConfig) *EventHandler {
    if events == nil {
        panic("nil event directory passed to NewEventHandler")
    }
    return &EventHandler{Events: events, Cache: cache, CacheCfg: cacheCfg}
}

// availabilityView is the cached/serialized shape of an availability
// response.
type availabilityView struct {
    EventID        uint64   `json:"event_id"`
    Name           string   `json:"name"`
    TicketType     string   `json:"ticket_type"`
    TotalSeats     uint32   `json:"total_seats"`
    AvailableSeats []string `json:"available_seats"`
}

// Availability handles GET /v1/events/:id/availability.  Cache hits are
// returned verbatim; misses are loaded from the catalog and written back
// with the configured TTL.  Cache errors degrade to database reads.
func (h *EventHandler) Availability(c echo.Context) error {
    eventID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    key := booking.AvailabilityCacheKey(eventID)

    if h.cacheEnabled() {
        if raw, err := h.Cache.Get(ctx, key).Bytes(); err == nil {
            var view availabilityView
            if json.Unmarshal(raw, &view) == nil {
                return c.JSON(http.StatusOK, view)
            }
        }
    }

    ev, err := h.Events.GetByID(ctx, eventID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
    }
    view := availabilityView{
        EventID:        ev.ID,
        Name:           ev.Name,
        TicketType:     ev.TicketType,
        TotalSeats:     ev.TotalSeats,
        AvailableSeats: ev.AvailableSeats,
    }

    if h.cacheEnabled() {
        if raw, err := json.Marshal(view); err == nil {
            // Best effort; a failed SET only costs the next request a DB read.
            _ = h.Cache.Set(ctx, key, raw, h.CacheCfg.TTL).Err()
        }
    }
    return c.JSON(http.StatusOK, view)
}

func (h *EventHandler) cacheEnabled() bool {
    return h.Cache != nil && h.CacheCfg.Enabled
}
