package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/ticket"
)

func verifyRecorder(t *testing.T, h *TicketHandler, body string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/tickets/verify", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    require.NoError(t, h.Verify(e.NewContext(req, rec)))
    return rec
}

func TestVerifyValidTicket(t *testing.T) {
    codec, err := ticket.NewCodec("unit-test-secret", false)
    require.NoError(t, err)
    h := NewTicketHandler(codec)

    res := &model.Reservation{
        ID:            501,
        BookingDate:   time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
        Status:        model.StatusConfirmed,
        PaymentStatus: model.PaymentPaid,
    }
    payload, err := codec.Encode(res, "Open Air Cinema", "Jamie Doe")
    require.NoError(t, err)

    body, err := json.Marshal(map[string]string{"data": payload})
    require.NoError(t, err)
    rec := verifyRecorder(t, h, string(body))

    assert.Equal(t, http.StatusOK, rec.Code)
    var out struct {
        Ticket ticket.Claims `json:"ticket"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    assert.Equal(t, uint64(501), out.Ticket.ReservationID)
    assert.Equal(t, "Open Air Cinema", out.Ticket.EventName)
    assert.Equal(t, "2026-09-12", out.Ticket.Date)
}

func TestVerifyRejectionsAreGeneric(t *testing.T) {
    codec, err := ticket.NewCodec("unit-test-secret", false)
    require.NoError(t, err)
    h := NewTicketHandler(codec)

    cases := map[string]string{
        "empty body":      `{}`,
        "not json":        `not-json`,
        "empty data":      `{"data":""}`,
        "no separator":    `{"data":"deadbeef"}`,
        "garbage payload": `{"data":"abababababababababababab:deadbeefdeadbeefdeadbeefdeadbeef"}`,
    }
    for name, body := range cases {
        t.Run(name, func(t *testing.T) {
            rec := verifyRecorder(t, h, body)
            assert.Equal(t, http.StatusBadRequest, rec.Code)
            // Every rejection reads identically regardless of cause.
            assert.JSONEq(t, `{"error":"invalid ticket"}`, rec.Body.String())
        })
    }
}
