package ticket

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/event-ticketing/internal/artifact"
    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/repository"
)

type stubEventDirectory struct {
    event *model.Event
}

func (s *stubEventDirectory) GetByID(_ context.Context, id uint64) (*model.Event, error) {
    if s.event == nil || s.event.ID != id {
        return nil, repository.ErrEventNotFound
    }
    return s.event, nil
}

type stubUserDirectory struct {
    user *model.User
}

func (s *stubUserDirectory) GetByID(_ context.Context, id uint64) (*model.User, error) {
    if s.user == nil || s.user.ID != id {
        return nil, repository.ErrUserNotFound
    }
    return s.user, nil
}

type recordingPatcher struct {
    urls map[uint64]string
    err  error
}

func (p *recordingPatcher) UpdateTicketURL(_ context.Context, id uint64, url string) error {
    if p.err != nil {
        return p.err
    }
    if p.urls == nil {
        p.urls = make(map[uint64]string)
    }
    p.urls[id] = url
    return nil
}

type failingStore struct {
    err error
}

func (f *failingStore) Upload(context.Context, string, []byte) (string, error) {
    return "", f.err
}

func confirmedReservation() *model.Reservation {
    return &model.Reservation{
        ID:            501,
        EventID:       1,
        UserID:        42,
        BookingDate:   time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
        GuestCount:    1,
        Status:        model.StatusConfirmed,
        PaymentStatus: model.PaymentPaid,
    }
}

func testIssuer(t *testing.T, store artifact.Store, patcher *recordingPatcher) *Issuer {
    t.Helper()
    return NewIssuer(
        testCodec(t),
        store,
        patcher,
        &stubEventDirectory{event: &model.Event{ID: 1, Name: "Open Air Cinema", TicketType: model.TicketTypeFree}},
        &stubUserDirectory{user: &model.User{ID: 42, FullName: "Jamie Doe"}},
    )
}

func TestIssueProducesArtifactAndPersistsURL(t *testing.T) {
    store := artifact.NewMemoryStore()
    patcher := &recordingPatcher{}
    issuer := testIssuer(t, store, patcher)
    res := confirmedReservation()

    url, err := issuer.Issue(context.Background(), res)
    require.NoError(t, err)
    assert.Equal(t, "memory://tickets/501.png", url)
    assert.Equal(t, url, patcher.urls[501])
    require.NotNil(t, res.TicketURL)
    assert.Equal(t, url, *res.TicketURL)

    png, ok := store.Get(ArtifactKey(501))
    require.True(t, ok)
    assert.NotEmpty(t, png)
    // PNG magic bytes confirm a real rendered image, not the raw payload.
    assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestIssueRejectsUnconfirmedReservation(t *testing.T) {
    issuer := testIssuer(t, artifact.NewMemoryStore(), &recordingPatcher{})

    for _, status := range []string{model.StatusPending, model.StatusCancelled} {
        res := confirmedReservation()
        res.Status = status
        _, err := issuer.Issue(context.Background(), res)
        assert.ErrorIs(t, err, ErrNotConfirmed)
        assert.Nil(t, res.TicketURL)
    }
}

func TestIssueIsIdempotentPerReservation(t *testing.T) {
    store := artifact.NewMemoryStore()
    patcher := &recordingPatcher{}
    issuer := testIssuer(t, store, patcher)
    res := confirmedReservation()

    first, err := issuer.Issue(context.Background(), res)
    require.NoError(t, err)
    second, err := issuer.Issue(context.Background(), res)
    require.NoError(t, err)

    assert.Equal(t, first, second)
    assert.Equal(t, 1, store.Len(), "re-issuing overwrites the same key")
}

func TestIssueUploadFailureLeavesReservationRetryable(t *testing.T) {
    patcher := &recordingPatcher{}
    broken := testIssuer(t, &failingStore{err: errors.New("bucket unreachable")}, patcher)
    res := confirmedReservation()

    _, err := broken.Issue(context.Background(), res)
    var ierr *IssuanceError
    require.ErrorAs(t, err, &ierr)
    assert.Equal(t, StageUpload, ierr.Stage)
    assert.Nil(t, res.TicketURL)
    assert.Empty(t, patcher.urls)

    // The reservation stayed Confirmed without a URL, so a retry against
    // a healthy store completes the pipeline.
    healthy := testIssuer(t, artifact.NewMemoryStore(), patcher)
    url, err := healthy.Issue(context.Background(), res)
    require.NoError(t, err)
    assert.Equal(t, url, patcher.urls[501])
}

func TestIssuePersistFailureIsStageTagged(t *testing.T) {
    store := artifact.NewMemoryStore()
    patcher := &recordingPatcher{err: errors.New("connection reset")}
    issuer := testIssuer(t, store, patcher)
    res := confirmedReservation()

    _, err := issuer.Issue(context.Background(), res)
    var ierr *IssuanceError
    require.ErrorAs(t, err, &ierr)
    assert.Equal(t, StagePersist, ierr.Stage)
    assert.Nil(t, res.TicketURL)
}

func TestIssueMissingDirectoryEntriesFailAtEncode(t *testing.T) {
    issuer := NewIssuer(
        testCodec(t),
        artifact.NewMemoryStore(),
        &recordingPatcher{},
        &stubEventDirectory{},
        &stubUserDirectory{},
    )

    _, err := issuer.Issue(context.Background(), confirmedReservation())
    var ierr *IssuanceError
    require.ErrorAs(t, err, &ierr)
    assert.Equal(t, StageEncode, ierr.Stage)
    assert.ErrorIs(t, err, repository.ErrEventNotFound)
}
