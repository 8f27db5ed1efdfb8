// Package ticket implements the encrypted ticket payload codec and the
// issuance pipeline that turns a confirmed reservation into a scannable
// artifact.
package ticket

import (
    "crypto/aes"
    "crypto/cipher"
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "errors"
    "io"
    "strings"

    "golang.org/x/crypto/hkdf"

    "github.com/iliyamo/event-ticketing/internal/model"
)

// ErrMisconfiguredSecret is returned by NewCodec when no ticket secret is
// configured and the development fallback key is not allowed.  Production
// deployments must always supply TICKET_SECRET.
var ErrMisconfiguredSecret = errors.New("ticket secret missing or invalid")

// ErrInvalidTicket is returned by Decode for any malformed, undecryptable
// or tampered payload.  The error deliberately carries no detail about
// which check failed: verification-time responses must never explain why
// a code was rejected.
var ErrInvalidTicket = errors.New("invalid ticket")

// fallbackSecret is the documented development-only key applied when no
// secret is configured and the caller explicitly allows the fallback.
const fallbackSecret = "event-ticketing-dev-secret"

// hkdfInfo binds derived keys to this payload scheme so the same secret
// used elsewhere never yields the same AES key.
const hkdfInfo = "ticket-payload-v1"

// nonceSize is the fixed length of the random IV generated per encode call.
const nonceSize = 12

// Claims is the fixed schema carried inside an encrypted ticket payload.
// It holds exactly the identifying data a venue scanner needs to verify
// a reservation offline.
type Claims struct {
    ReservationID uint64 `json:"reservationId"`
    EventName     string `json:"eventName"`
    UserName      string `json:"userName"`
    Date          string `json:"date"`
    TotalPrice    uint32 `json:"totalPrice"`
    IsFree        bool   `json:"isFree"`
}

// Envelope is the outer JSON contract embedded in the rendered code.  A
// scanner that cannot parse or decrypt Data can still render
// ErrorMessage instead of raw garbage.
type Envelope struct {
    ErrorMessage string `json:"errorMessage"`
    Data         string `json:"data"`
}

// Codec encrypts and decrypts ticket payloads with AES-256-GCM.  The key
// is derived once at construction from an injected secret; there is no
// ambient configuration lookup at encode time.
type Codec struct {
    aead cipher.AEAD
}

// NewCodec derives the payload encryption key from secret.  When secret
// is empty the development fallback key is used only if allowFallback is
// set; otherwise ErrMisconfiguredSecret is returned and no codec is
// constructed, so encoding can never silently proceed unkeyed.
func NewCodec(secret string, allowFallback bool) (*Codec, error) {
    if strings.TrimSpace(secret) == "" {
        if !allowFallback {
            return nil, ErrMisconfiguredSecret
        }
        secret = fallbackSecret
    }
    key := make([]byte, 32)
    kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
    if _, err := io.ReadFull(kdf, key); err != nil {
        return nil, err
    }
    block, err := aes.NewCipher(key)
    if err != nil {
        return nil, err
    }
    aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
    if err != nil {
        return nil, err
    }
    return &Codec{aead: aead}, nil
}

// Encode serialises the reservation's identifying fields and encrypts
// them under a fresh random IV.  The wire form is "ivHex:cipherHex"; the
// random IV makes every call non-deterministic even for identical
// payloads.
func (c *Codec) Encode(res *model.Reservation, eventName, userName string) (string, error) {
    claims := Claims{
        ReservationID: res.ID,
        EventName:     eventName,
        UserName:      userName,
        Date:          res.BookingDate.UTC().Format("2006-01-02"),
        TotalPrice:    res.TotalAmountCents,
        IsFree:        res.TotalAmountCents == 0 && res.PaymentStatus == model.PaymentPaid,
    }
    plain, err := json.Marshal(claims)
    if err != nil {
        return "", err
    }
    iv := make([]byte, nonceSize)
    if _, err := rand.Read(iv); err != nil {
        return "", err
    }
    sealed := c.aead.Seal(nil, iv, plain, nil)
    return hex.EncodeToString(iv) + ":" + hex.EncodeToString(sealed), nil
}

// Decode reverses Encode.  Any malformed separator, wrong IV length,
// failed authentication or schema mismatch yields ErrInvalidTicket; the
// AEAD tag guarantees that a single flipped ciphertext character fails
// authentication rather than decoding to wrong data.
func (c *Codec) Decode(payload string) (*Claims, error) {
    ivHex, cipherHex, ok := strings.Cut(payload, ":")
    if !ok {
        return nil, ErrInvalidTicket
    }
    iv, err := hex.DecodeString(ivHex)
    if err != nil || len(iv) != nonceSize {
        return nil, ErrInvalidTicket
    }
    sealed, err := hex.DecodeString(cipherHex)
    if err != nil {
        return nil, ErrInvalidTicket
    }
    plain, err := c.aead.Open(nil, iv, sealed, nil)
    if err != nil {
        return nil, ErrInvalidTicket
    }
    var claims Claims
    dec := json.NewDecoder(strings.NewReader(string(plain)))
    dec.DisallowUnknownFields()
    if err := dec.Decode(&claims); err != nil {
        return nil, ErrInvalidTicket
    }
    if claims.ReservationID == 0 || claims.Date == "" {
        return nil, ErrInvalidTicket
    }
    return &claims, nil
}

// WrapEnvelope builds the outer artifact JSON around an encoded payload.
func WrapEnvelope(payload string) ([]byte, error) {
    env := Envelope{
        ErrorMessage: "This ticket could not be verified. Please contact the venue staff.",
        Data:         payload,
    }
    return json.Marshal(env)
}
