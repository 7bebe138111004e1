package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RequestTimeout is the fixed ceiling for every backend call.
const RequestTimeout = 120 * time.Second

const defaultContentType = "application/json"

// maxResponseBody caps how much of a response is read (10 MiB).
const maxResponseBody int64 = 10 << 20

type Request struct {
	Path        string
	Method      string
	Body        any
	Params      url.Values
	Headers     map[string]string
	ContentType string
}

// Doer is the contract the data-fetching layer depends on.
type Doer interface {
	Do(ctx context.Context, req Request) (json.RawMessage, error)
}

// Adapter issues requests against {baseURL}/api[/{version}]. It is the only
// component that talks to the backend over the network.
type Adapter struct {
	base   string
	client *http.Client
	logger *zap.Logger
}

type Option func(*Adapter)

func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

func NewAdapter(apiURL, version string, opts ...Option) (*Adapter, error) {
	u, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url must be http(s), got %q", apiURL)
	}

	base := strings.TrimRight(u.String(), "/") + "/api"
	if v := strings.Trim(version, "/ "); v != "" {
		base += "/" + v
	}

	a := &Adapter{
		base:   base,
		client: &http.Client{Timeout: RequestTimeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// BaseURL is the versioned API prefix every path is appended to.
func (a *Adapter) BaseURL() string { return a.base }

// Do sends one request. A 2xx response yields its body (possibly empty);
// anything else yields *Error.
func (a *Adapter) Do(ctx context.Context, r Request) (json.RawMessage, error) {
	endpoint := a.base + r.Path
	if len(r.Params) > 0 {
		endpoint += "?" + r.Params.Encode()
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &Error{Method: method, URL: endpoint, Err: fmt.Errorf("encode body: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &Error{Method: method, URL: endpoint, Err: err}
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	contentType := r.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "0")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, &Error{Method: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, &Error{Method: method, URL: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > maxResponseBody {
		a.logger.Warn("api response too large",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode))
		return nil, &Error{
			Method: method,
			URL:    endpoint,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, maxResponseBody),
		}
	}

	a.logger.Debug("api response",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Method: method,
			URL:    endpoint,
			Status: resp.StatusCode,
			Body:   data,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return json.RawMessage(data), nil
}
