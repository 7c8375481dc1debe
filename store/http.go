package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/ipfs/go-cid"
)

// RawContentType is the Content-Type of a single raw block.
const RawContentType = "application/vnd.ipld.raw"

// HTTPOption is an option configuring a HTTP store.
type HTTPOption func(cfg *httpConfig)

type httpConfig struct {
	client   *http.Client
	statuses []int
}

// WithClient configures the HTTP client the store should use to make
// requests.
func WithClient(c *http.Client) HTTPOption {
	return func(cfg *httpConfig) {
		cfg.client = c
	}
}

// WithSuccessStatusCode configures the HTTP status code(s) that indicate a
// successful upload.
func WithSuccessStatusCode(codes ...int) HTTPOption {
	return func(cfg *httpConfig) {
		cfg.statuses = codes
	}
}

// HTTPError is a request that completed with an unexpected status.
type HTTPError struct {
	Message string
	Status  int
	Headers http.Header
}

func (err *HTTPError) Error() string {
	return err.Message
}

// HTTPStore reads and writes blocks at {endpoint}/{cid}. The identifier is
// computed locally, so a server can not substitute content: uploads are
// addressed by it and downloads are re-hashed against it.
type HTTPStore struct {
	endpoint *url.URL
	client   *http.Client
	statuses []int
}

var _ Store = (*HTTPStore)(nil)

func NewHTTPStore(endpoint *url.URL, options ...HTTPOption) *HTTPStore {
	cfg := httpConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{}
	}
	if len(cfg.statuses) == 0 {
		cfg.statuses = []int{http.StatusOK, http.StatusCreated, http.StatusNoContent}
	}
	return &HTTPStore{endpoint, cfg.client, cfg.statuses}
}

func (s *HTTPStore) blockURL(id cid.Cid) string {
	return s.endpoint.JoinPath(id.String()).String()
}

func (s *HTTPStore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	id, err := Prefix.Sum(data)
	if err != nil {
		return cid.Undef, fmt.Errorf("hashing content: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.blockURL(id), bytes.NewReader(data))
	if err != nil {
		return cid.Undef, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", RawContentType)
	res, err := s.client.Do(req)
	if err != nil {
		return cid.Undef, fmt.Errorf("doing HTTP request: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if !slices.Contains(s.statuses, res.StatusCode) {
		return cid.Undef, &HTTPError{
			Message: fmt.Sprintf("HTTP Request failed. %s %s → %d", req.Method, req.URL, res.StatusCode),
			Status:  res.StatusCode,
			Headers: res.Header,
		}
	}
	return id, nil
}

func (s *HTTPStore) Get(ctx context.Context, id cid.Cid) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.blockURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", RawContentType)
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("doing HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, failure.NotFound("content not found: %s", id)
	}
	if res.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			Message: fmt.Sprintf("HTTP Request failed. %s %s → %d", req.Method, req.URL, res.StatusCode),
			Status:  res.StatusCode,
			Headers: res.Header,
		}
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	hashed, err := id.Prefix().Sum(data)
	if err != nil {
		return nil, fmt.Errorf("hashing content: %w", err)
	}
	if !hashed.Equals(id) {
		return nil, fmt.Errorf("mismatch in content integrity, name: %s, data: %s", id, hashed)
	}
	return data, nil
}
