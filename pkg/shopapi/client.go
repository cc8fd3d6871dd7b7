package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/talgatbekov/bazarline-backend/pkg/config"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 4096

var errBaseURLRequired = errors.New("shop api base url is required")

type bearerKey struct{}

// WithBearer stores the caller's upstream credential on the context. Every
// request forwards it; the upstream APIs authenticate the shopper or
// manager, not this service.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerFromContext returns the stored credential, or empty when none was
// attached. The polling scheduler captures it when a task is armed.
func BearerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(bearerKey{}).(string); ok {
		return v
	}
	return ""
}

// Client wraps the shop platform APIs: order creation, profile reads,
// manager status, and the manager-scoped order-management surface.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	retryAttempts  int
	retryBaseDelay time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the shop API client from upstream configuration.
func NewClient(cfg config.UpstreamConfig, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(cfg.BaseURL)
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		baseURL:        strings.TrimRight(trimmed, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		retryAttempts:  cfg.RetryAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
	if client.retryAttempts <= 0 {
		client.retryAttempts = 1
	}
	if client.retryBaseDelay <= 0 {
		client.retryBaseDelay = 200 * time.Millisecond
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Ping verifies upstream reachability for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "shop api client not configured")
	}
	return c.getJSON(ctx, "/health", nil, nil)
}

// getJSON issues a GET with bounded exponential backoff. Only transport
// failures and 5xx responses are retried; 4xx responses map to terminal
// taxonomy errors.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	backoff := retry.WithMaxRetries(uint64(c.retryAttempts-1), retry.NewExponential(c.retryBaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.doJSON(ctx, http.MethodGet, path, query, nil, dest)
		if err == nil {
			return nil
		}
		if meta := pkgerrors.MetadataFor(pkgerrors.As(err).Code()); meta.Retryable {
			return retry.RetryableError(err)
		}
		return err
	})
}

// postJSON issues a mutating call exactly once. Mutations are left to the
// caller to retry so a flaky network cannot double-submit an order.
func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, dest)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil || c.httpClient == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "shop api client not configured")
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := BearerFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "shop api call timed out")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute shop api request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.mapErrorResponse(resp)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode shop api response")
	}
	return nil
}

// mapErrorResponse converts upstream failures into the local taxonomy so
// callers can tell a rejected payload from an unreachable backend.
func (c *Client) mapErrorResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	message := upstreamMessage(raw)
	if message == "" {
		message = fmt.Sprintf("shop api returned status %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	case resp.StatusCode == http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, message)
	case resp.StatusCode == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeForbidden, message)
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case resp.StatusCode == http.StatusConflict:
		return pkgerrors.New(pkgerrors.CodeConflict, message)
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return pkgerrors.New(pkgerrors.CodeTimeout, message)
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, message)
	}
}

func upstreamMessage(raw []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return envelope.Message
}
