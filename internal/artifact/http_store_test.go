package artifact

import (
    "context"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestHTTPStoreUpload(t *testing.T) {
    var gotMethod, gotPath, gotContentType string
    var gotBody []byte
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotMethod = r.Method
        gotPath = r.URL.Path
        gotContentType = r.Header.Get("Content-Type")
        gotBody, _ = io.ReadAll(r.Body)
        w.WriteHeader(http.StatusCreated)
    }))
    defer srv.Close()

    store := NewHTTPStore(srv.URL+"/", "https://cdn.example.com")
    url, err := store.Upload(context.Background(), "tickets/501.png", []byte("png-bytes"))
    require.NoError(t, err)

    assert.Equal(t, "https://cdn.example.com/tickets/501.png", url)
    assert.Equal(t, http.MethodPut, gotMethod)
    assert.Equal(t, "/tickets/501.png", gotPath)
    assert.Equal(t, "image/png", gotContentType)
    assert.Equal(t, []byte("png-bytes"), gotBody)
}

func TestHTTPStoreUploadRejectsErrorStatus(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
        http.Error(w, "denied", http.StatusForbidden)
    }))
    defer srv.Close()

    store := NewHTTPStore(srv.URL, "")
    _, err := store.Upload(context.Background(), "tickets/501.png", []byte("x"))
    assert.Error(t, err)
    assert.Contains(t, err.Error(), "403")
}

func TestHTTPStorePublicURLDefaultsToBase(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
        w.WriteHeader(http.StatusOK)
    }))
    defer srv.Close()

    store := NewHTTPStore(srv.URL, "")
    url, err := store.Upload(context.Background(), "tickets/1.png", nil)
    require.NoError(t, err)
    assert.Equal(t, srv.URL+"/tickets/1.png", url)
}

func TestMemoryStoreCopiesData(t *testing.T) {
    store := NewMemoryStore()
    data := []byte{1, 2, 3}
    url, err := store.Upload(context.Background(), "k", data)
    require.NoError(t, err)
    assert.Equal(t, "memory://k", url)

    data[0] = 9
    got, ok := store.Get("k")
    require.True(t, ok)
    assert.Equal(t, []byte{1, 2, 3}, got, "stored object must not alias the caller's slice")
}
