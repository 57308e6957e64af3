// Package feed fetches the raw results payloads over HTTP
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"escrutinio/internal/models"
)

// DefaultDispatch is used when the dispatch check returns nothing usable
const DefaultDispatch = "001"

const (
	dispatchPlaceholder = "{dispatch}"
	maxDispatchBytes    = 64
)

// StatusError reports a non-2xx response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Client fetches the payloads of one contest
type Client struct {
	httpClient *http.Client
	contest    models.Contest
	enc        encoding.Encoding
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithEncoding sets the character encoding of the payloads
func WithEncoding(enc encoding.Encoding) Option {
	return func(c *Client) {
		c.enc = enc
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a feed client for contest
func NewClient(contest models.Contest, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		contest:    contest,
		enc:        charmap.ISO8859_1,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("feed").With(zap.String("contest", contest.ID))
	return c
}

// Dispatch returns the identifier of the latest payload.
// Without a dispatch URL, or when the answer is empty, "0" or not numeric,
// the DefaultDispatch sentinel is returned.
func (c *Client) Dispatch(ctx context.Context) (string, error) {
	if c.contest.DispatchURL == "" {
		return DefaultDispatch, nil
	}

	body, err := c.get(ctx, c.contest.DispatchURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, maxDispatchBytes))
	if err != nil {
		return "", fmt.Errorf("read dispatch: %w", err)
	}
	return normalizeDispatch(string(raw)), nil
}

func normalizeDispatch(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return DefaultDispatch
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return DefaultDispatch
		}
	}
	return s
}

// Payload fetches the results payload for dispatch
func (c *Client) Payload(ctx context.Context, dispatch string) (string, error) {
	return c.fetchText(ctx, expand(c.contest.PayloadURL, dispatch))
}

// Baseline fetches the comparison payload.
// ok is false when the contest has no baseline configured.
func (c *Client) Baseline(ctx context.Context) (text string, ok bool, err error) {
	if c.contest.BaselineURL == "" {
		return "", false, nil
	}
	text, err = c.fetchText(ctx, c.contest.BaselineURL)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// Turnout fetches the participation payload for dispatch.
// ok is false when the contest has no turnout feed.
func (c *Client) Turnout(ctx context.Context, dispatch string) (text string, ok bool, err error) {
	if c.contest.TurnoutURL == "" {
		return "", false, nil
	}
	text, err = c.fetchText(ctx, expand(c.contest.TurnoutURL, dispatch))
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *Client) fetchText(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	text, err := decodeBody(body, c.enc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	c.logger.Debug("fetched payload", zap.String("url", url), zap.Int("bytes", len(text)))
	return text, nil
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain, */*")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func expand(tmpl, dispatch string) string {
	return strings.ReplaceAll(tmpl, dispatchPlaceholder, dispatch)
}
