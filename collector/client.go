package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// Span explainer endpoints
const (
	RegisterPath    = "/register"
	UploadTracePath = "/upload-trace"
	ExplainSpanPath = "/explain-span"
)

// HTTPError is a non-2xx reply from the span explainer
type HTTPError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("POST %s: HTTP %d: %s", e.Path, e.StatusCode, strings.TrimSpace(e.Body))
}

// Temporary reports whether the request may succeed when retried
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Session is the identity returned by Register
type Session struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// Client talks to the span explainer HTTP API
type Client struct {
	baseURL         string
	httpClient      *http.Client
	maxTries        uint
	initialInterval time.Duration
	logger          zerolog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetry sets how many attempts a request gets and the first backoff interval
func WithRetry(maxTries uint, initialInterval time.Duration) ClientOption {
	return func(c *Client) {
		c.maxTries = maxTries
		c.initialInterval = initialInterval
	}
}

// WithClientLogger sets the logger used for retry notices
func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the span explainer at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      &http.Client{Timeout: 5 * time.Minute},
		maxTries:        3,
		initialInterval: 500 * time.Millisecond,
		logger:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register creates a user and returns its bearer token
func (c *Client) Register(ctx context.Context) (Session, error) {
	var s Session
	if err := c.post(ctx, RegisterPath, "", nil, &s); err != nil {
		return Session{}, err
	}
	if s.Token == "" {
		return Session{}, fmt.Errorf("register: response carries no token")
	}
	return s, nil
}

// UploadTrace stores an OTLP trace and returns its upload id
func (c *Client) UploadTrace(ctx context.Context, token string, trace json.RawMessage) (string, error) {
	var resp struct {
		UploadID string `json:"upload_id"`
	}
	if err := c.post(ctx, UploadTracePath, token, trace, &resp); err != nil {
		return "", err
	}
	if resp.UploadID == "" {
		return "", fmt.Errorf("upload trace: response carries no upload_id")
	}
	return resp.UploadID, nil
}

type explainRequest struct {
	UploadID string `json:"upload_id"`
	SpanID   string `json:"span_id"`
	Question string `json:"question"`
}

// ExplainSpan asks for an explanation of one span of an uploaded trace.
// It returns the "answer" member of the reply, or the whole reply when there is none.
func (c *Client) ExplainSpan(ctx context.Context, token, uploadID, spanID, question string) (json.RawMessage, error) {
	var resp json.RawMessage
	req := explainRequest{UploadID: uploadID, SpanID: spanID, Question: question}
	if err := c.post(ctx, ExplainSpanPath, token, req, &resp); err != nil {
		return nil, err
	}

	var wrapped struct {
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(resp, &wrapped); err == nil && len(wrapped.Answer) > 0 {
		return wrapped.Answer, nil
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path, token string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode %s request: %w", path, err)
		}
	}

	operation := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(ctx.Err())
			}
			return struct{}{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to read %s response: %w", path, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			herr := &HTTPError{Path: path, StatusCode: resp.StatusCode, Body: string(data)}
			if herr.Temporary() {
				return struct{}{}, herr
			}
			return struct{}{}, backoff.Permanent(herr)
		}
		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return struct{}{}, backoff.Permanent(fmt.Errorf("failed to decode %s response: %w", path, err))
			}
		}
		return struct{}{}, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn().Err(err).Str("path", path).Dur("retry_in", next).Msg("span explainer request failed, retrying")
		}),
	)
	var perr *backoff.PermanentError
	if errors.As(err, &perr) {
		return perr.Unwrap()
	}
	return err
}
