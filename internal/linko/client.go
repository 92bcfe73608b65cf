// Package linko is a client for the Linko link shortening API
// (POST /api/url/add).
package linko

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sundayezeilo/linkbatch/internal/errx"
	"github.com/sundayezeilo/linkbatch/internal/httpx"
	"github.com/sundayezeilo/linkbatch/internal/idgen"
	"github.com/sundayezeilo/linkbatch/internal/shortener"
)

const (
	DefaultURL     = "https://linko.me/api/url/add"
	DefaultTimeout = 20 * time.Second
)

// Options holds configuration for the Client.
type Options struct {
	APIKey    string            // required
	URL       string            // default DefaultURL
	Timeout   time.Duration     // default DefaultTimeout
	Transport http.RoundTripper // default http.DefaultTransport
	IDs       idgen.Generator   // X-Request-ID source, default UUID v7
	Logger    *slog.Logger      // default discard
}

// Client shortens URLs with the Linko API. It never returns a short URL
// together with an error.
type Client struct {
	hc     *http.Client
	url    string
	apiKey string
	logger *slog.Logger
}

var _ shortener.Client = (*Client)(nil)

// New creates a Client. A missing API key is an errx.Config error.
func New(opts Options) (*Client, error) {
	const op = "linko.New"

	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errx.E(op, errx.Config, errors.New("missing api key"))
	}
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.IDs == nil {
		opts.IDs = idgen.NewV7()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	transport := httpx.Chain(opts.Transport,
		httpx.Recovery(opts.Logger),
		httpx.RequestID(opts.IDs),
		httpx.Logger(opts.Logger),
	)

	return &Client{
		hc:     &http.Client{Timeout: opts.Timeout, Transport: transport},
		url:    opts.URL,
		apiKey: opts.APIKey,
		logger: opts.Logger,
	}, nil
}

type addRequest struct {
	URL string `json:"url"`
}

type addResponse struct {
	Error    json.RawMessage `json:"error"`
	ShortURL string          `json:"shorturl"`
	Message  json.RawMessage `json:"message"`
}

// succeeded mirrors the API contract: error must be 0 and shorturl set.
func (r addResponse) succeeded() bool {
	return errorIsZero(r.Error) && r.ShortURL != ""
}

func (r addResponse) message() string {
	var s string
	if err := json.Unmarshal(r.Message, &s); err == nil && s != "" {
		return s
	}
	if len(r.Message) > 0 && string(r.Message) != "null" {
		return httpx.Snippet(r.Message)
	}
	return "invalid response"
}

// errorIsZero reports whether the raw "error" field equals 0. A missing or
// null field is not zero; false counts as zero.
func errorIsZero(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n == 0
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return !b
	}
	return false
}

// Shorten submits longURL and returns the short URL. Every failure is an
// errx error:
//
//	429                   RateLimited
//	401 / 403             Unauthorized / Forbidden
//	other non-200         Remote
//	200, bad JSON         Protocol
//	200, error != 0       Remote (API message)
//	transport, timeout    Unavailable
//	ctx done              Canceled
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	const op = "linko.Client.Shorten"

	payload, err := json.Marshal(addRequest{URL: longURL})
	if err != nil {
		return "", errx.E(op, errx.Unknown, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", errx.E(op, errx.Unknown, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errx.E(op, errx.Canceled, ctxErr)
		}
		return "", errx.E(op, errx.Unavailable, fmt.Errorf("network error: %w", err))
	}

	body, readErr := httpx.ReadBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		kind := httpx.StatusToKind(resp.StatusCode)
		return "", errx.E(op, kind, fmt.Errorf("%s: http %d: %s",
			statusReason(kind), resp.StatusCode, httpx.Snippet(body)))
	}

	if readErr != nil {
		if errors.Is(readErr, httpx.ErrBodyTooLarge) {
			return "", errx.E(op, errx.Protocol, readErr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errx.E(op, errx.Canceled, ctxErr)
		}
		return "", errx.E(op, errx.Unavailable, readErr)
	}

	data, err := httpx.DecodeJSON[addResponse](body)
	if err != nil {
		return "", errx.E(op, errx.Protocol, fmt.Errorf("response is not valid JSON: %w: %s", err, httpx.Snippet(body)))
	}
	if !data.succeeded() {
		return "", errx.E(op, errx.Remote, fmt.Errorf("api error: %s", data.message()))
	}

	return strings.ReplaceAll(data.ShortURL, `\/`, "/"), nil
}

func statusReason(kind errx.Kind) string {
	switch kind {
	case errx.RateLimited:
		return "rate limited"
	case errx.Unauthorized:
		return "unauthorized"
	case errx.Forbidden:
		return "forbidden"
	default:
		return "unexpected status"
	}
}
