package artifact

import (
    "bytes"
    "context"
    "fmt"
    "net/http"
    "strings"
    "time"
)

// HTTPStore uploads ticket images to a blob store that accepts
// authenticated PUT requests, such as an S3-compatible gateway or a
// static file server fronting the CDN.  The upload URL is baseURL/key;
// the returned public URL is publicURL/key so the serving host can
// differ from the ingest host.
type HTTPStore struct {
    baseURL   string
    publicURL string
    client    *http.Client
}

// NewHTTPStore constructs an HTTPStore.  publicURL may be empty, in
// which case baseURL doubles as the public location.  Uploads are
// bounded by a request timeout so issuance latency stays predictable
// even when the store is slow.
func NewHTTPStore(baseURL, publicURL string) *HTTPStore {
    base := strings.TrimRight(baseURL, "/")
    public := strings.TrimRight(publicURL, "/")
    if public == "" {
        public = base
    }
    return &HTTPStore{
        baseURL:   base,
        publicURL: public,
        client:    &http.Client{Timeout: 15 * time.Second},
    }
}

// Upload PUTs data under key and returns the public URL.  Any transport
// failure or non-2xx response is reported as an error; callers decide
// whether to retry, the store itself never does.
func (s *HTTPStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
    target := s.baseURL + "/" + key
    req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
    if err != nil {
        return "", err
    }
    req.Header.Set("Content-Type", "image/png")
    req.ContentLength = int64(len(data))

    resp, err := s.client.Do(req)
    if err != nil {
        return "", fmt.Errorf("artifact upload: %w", err)
    }
    defer func() { _ = resp.Body.Close() }()
    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return "", fmt.Errorf("artifact upload: store returned %s", resp.Status)
    }
    return s.publicURL + "/" + key, nil
}
