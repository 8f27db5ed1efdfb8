package ticket

import (
    "context"
    "errors"
    "fmt"

    qrcode "github.com/skip2/go-qrcode"

    "github.com/iliyamo/event-ticketing/internal/artifact"
    "github.com/iliyamo/event-ticketing/internal/model"
)

// Pipeline stage names recorded on IssuanceError so operators can see
// exactly where a retry should pick up.
const (
    StageEncode  = "encode"
    StageRender  = "render"
    StageUpload  = "upload"
    StagePersist = "persist"
)

// ErrNotConfirmed is returned when issuance is attempted for a
// reservation that is not durably Confirmed.  The payload embeds the
// reservation's identity, so minting it earlier would certify a claim
// that may never commit.
var ErrNotConfirmed = errors.New("reservation is not confirmed")

// IssuanceError reports a failure of one pipeline stage.  The
// reservation involved stays Confirmed without an artifact reference; a
// later retry re-runs the whole pipeline idempotently.
type IssuanceError struct {
    Stage string
    Err   error
}

func (e *IssuanceError) Error() string {
    return fmt.Sprintf("ticket issuance failed at %s: %v", e.Stage, e.Err)
}

func (e *IssuanceError) Unwrap() error { return e.Err }

// EventDirectory resolves event names for payloads.
type EventDirectory interface {
    GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// UserDirectory resolves user names for payloads.
type UserDirectory interface {
    GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// ReservationPatcher attaches the artifact reference to a reservation.
type ReservationPatcher interface {
    UpdateTicketURL(ctx context.Context, id uint64, url string) error
}

// Issuer renders a confirmed reservation into a scannable QR artifact:
// encode the encrypted payload, render it, upload the image under a
// deterministic key and persist the resulting URL on the reservation.
// Issuance never touches seat inventory, so it runs outside the
// reservation critical section and can be retried freely.
type Issuer struct {
    codec        *Codec
    store        artifact.Store
    reservations ReservationPatcher
    events       EventDirectory
    users        UserDirectory
    qrSize       int
}

// NewIssuer constructs an Issuer.  All dependencies must be non-nil.
func NewIssuer(codec *Codec, store artifact.Store, reservations ReservationPatcher, events EventDirectory, users UserDirectory) *Issuer {
    if codec == nil || store == nil || reservations == nil || events == nil || users == nil {
        panic("nil dependency passed to NewIssuer")
    }
    return &Issuer{
        codec:        codec,
        store:        store,
        reservations: reservations,
        events:       events,
        users:        users,
        qrSize:       256,
    }
}

// ArtifactKey is the deterministic store key for a reservation's ticket.
// Re-issuing overwrites the object at this key, so retries never create
// duplicate artifacts.
func ArtifactKey(reservationID uint64) string {
    return fmt.Sprintf("tickets/%d.png", reservationID)
}

// Issue runs the pipeline for a Confirmed reservation and returns the
// artifact URL.  Each stage failure is wrapped in an IssuanceError
// naming the stage; the reservation itself is left untouched except for
// the ticket URL written by the final stage.
func (i *Issuer) Issue(ctx context.Context, res *model.Reservation) (string, error) {
    if res.Status != model.StatusConfirmed {
        return "", ErrNotConfirmed
    }

    ev, err := i.events.GetByID(ctx, res.EventID)
    if err != nil {
        return "", &IssuanceError{Stage: StageEncode, Err: err}
    }
    user, err := i.users.GetByID(ctx, res.UserID)
    if err != nil {
        return "", &IssuanceError{Stage: StageEncode, Err: err}
    }
    payload, err := i.codec.Encode(res, ev.Name, user.FullName)
    if err != nil {
        return "", &IssuanceError{Stage: StageEncode, Err: err}
    }
    wrapped, err := WrapEnvelope(payload)
    if err != nil {
        return "", &IssuanceError{Stage: StageEncode, Err: err}
    }

    png, err := qrcode.Encode(string(wrapped), qrcode.Medium, i.qrSize)
    if err != nil {
        return "", &IssuanceError{Stage: StageRender, Err: err}
    }

    url, err := i.store.Upload(ctx, ArtifactKey(res.ID), png)
    if err != nil {
        return "", &IssuanceError{Stage: StageUpload, Err: err}
    }

    if err := i.reservations.UpdateTicketURL(ctx, res.ID, url); err != nil {
        return "", &IssuanceError{Stage: StagePersist, Err: err}
    }
    res.TicketURL = &url
    return url, nil
}
