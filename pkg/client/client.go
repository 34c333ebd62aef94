// Package client provides the HTTP client for the hosted site API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/fruitsalade/sitedeck/internal/metrics"
	"github.com/fruitsalade/sitedeck/pkg/protocol"
)

// Client talks to the site API. The API keeps its session in cookies, so a
// Client is one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger

	mu       sync.RWMutex
	online   bool
	lastSeen time.Time
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	// cookiejar.New never returns a non-nil error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		log:    cfg.Logger,
		online: true,
	}
}

// BaseURL returns the API origin the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsOnline returns false after a transport failure until the next call
// reaches the server.
func (c *Client) IsOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// LastSeen returns when the server last answered, zero if never.
func (c *Client) LastSeen() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSeen
}

func (c *Client) setOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.online != online {
		if online {
			c.log.Info("site API reachable again", zap.String("base", c.baseURL))
		} else {
			c.log.Error("site API unreachable", zap.String("base", c.baseURL))
		}
	}
	c.online = online
	if online {
		c.lastSeen = time.Now()
	}
}

// APIError is an application-level failure: the envelope said "error", or
// an auth call came back with success=false.
type APIError struct {
	Op      string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Op + ": request failed"
	}
	return e.Op + ": " + e.Message
}

// AsAPIError checks if an error is an APIError and returns it.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ServerMessage returns the server-supplied message carried by err, or ""
// for transport failures and local validation errors.
func ServerMessage(err error) string {
	if ae, ok := AsAPIError(err); ok {
		return ae.Message
	}
	return ""
}

// Local validation errors. No request is sent when these are returned.
var (
	ErrEmptyFilename    = errors.New("file name is required")
	ErrNoFiles          = errors.New("no files selected")
	ErrNoCredentials    = errors.New("credentials are required")
	ErrMixedCredentials = errors.New("use either username/password or an API key, not both")
)

func callResult(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}
	if _, ok := AsAPIError(err); ok {
		return metrics.ResultError
	}
	if errors.Is(err, context.Canceled) {
		return metrics.ResultCanceled
	}
	return metrics.ResultTransport
}

func checkEnvelope(op string, env protocol.Envelope) error {
	if env.OK() {
		return nil
	}
	return &APIError{Op: op, Message: env.Message}
}

// do sends req, decodes the JSON body into out and then runs check, which
// inspects the decoded envelope. Transport and decode failures are wrapped.
func (c *Client) do(op string, req *http.Request, out any, check func() error) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordAPICall(op, time.Since(start), callResult(err))
	}()

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A caller giving up says nothing about the API.
		if !errors.Is(err, context.Canceled) {
			c.setOnline(false)
		}
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()
	c.setOnline(true)

	c.log.Debug("site API call",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read response: %w", op, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s parse response (%d): %w", op, resp.StatusCode, err)
	}
	if check != nil {
		return check()
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any, check func() error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(op, req, out, check)
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any, check func() error) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, out, check)
}
