package handler

import (
    "net/http" // HTTP status codes

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/event-ticketing/internal/ticket"
)

// TicketHandler verifies scanned ticket payloads.  Verification is a
// public operation: venue scanners authenticate at the network layer,
// not with user tokens.
type TicketHandler struct {
    Codec *ticket.Codec // decrypts and validates payloads
}

// NewTicketHandler constructs a TicketHandler.  The codec must be non-nil.
func NewTicketHandler(codec *ticket.Codec) *TicketHandler {
    if codec == nil {
        panic("nil codec passed to NewTicketHandler")
    }
    return &TicketHandler{Codec: codec}
}

// verifyRequest carries the wire payload extracted from a scanned code.
// Scanners may post either the inner payload or the whole envelope; the
// envelope's data field is what ends up here.
type verifyRequest struct {
    Data string `json:"data"`
}

// Verify handles POST /v1/tickets/verify.  A valid payload returns the
// decoded claims; any failure returns a single generic "invalid ticket"
// error.  No detail about why decoding failed is ever exposed, so a
// forger learns nothing from probing this endpoint.
func (h *TicketHandler) Verify(c echo.Context) error {
    var body verifyRequest
    if err := c.Bind(&body); err != nil || body.Data == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket"})
    }
    claims, err := h.Codec.Decode(body.Data)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket"})
    }
    return c.JSON(http.StatusOK, echo.Map{"ticket": claims})
}
