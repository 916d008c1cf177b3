package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

const defaultUserAgent = "brotherhood-console/1.0"

// Config describes how to reach the backend.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// Client is the single HTTP client used for every backend read and write. It never
// retries; callers decide whether to re-trigger an action.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// New builds an unauthenticated client. Use WithToken to bind a credential.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("gateway: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, errors.New("gateway: invalid base url")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		userAgent:  ua,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.With().Str("component", "gateway").Logger(),
	}, nil
}

// WithToken returns a client sending the bearer credential. Transport and throttle are shared.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// Authenticated reports whether a credential is bound.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	requestID := util.NewRequestID()

	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, RequestID: requestID, Err: err}
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, RequestID: requestID, Err: err}
	}
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return &Error{Kind: KindTransport, Method: method, Path: path, RequestID: requestID, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).Str("request_id", requestID).Msg("backend call")

	if resp.StatusCode >= 400 {
		gwErr := decodeError(resp, method, path, requestID)
		c.logger.Warn().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
			Str("kind", gwErr.Kind.String()).Str("request_id", requestID).Msg("backend rejected request")
		return gwErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Method: method, Path: path, RequestID: requestID,
			Message: "malformed response", Err: err}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}
