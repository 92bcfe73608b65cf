package httpx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sundayezeilo/linkbatch/internal/idgen"
)

const (
	// RequestIDHeader is the header name for request ID.
	RequestIDHeader = "X-Request-ID"
)

// contextKey is the type for context keys to avoid collisions.
type contextKey string

const requestIDContextKey contextKey = "request_id"

// Middleware wraps an outbound http.RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with the middlewares, the first one being outermost.
// A nil base means http.DefaultTransport.
// Example: Chain(nil, Recovery(log), RequestID(gen), Logger(log))
func Chain(base http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		base = middlewares[i](base)
	}
	return base
}

// RequestID stamps every outbound request with an X-Request-ID header.
// An ID already in the request context (see WithRequestID) or header wins,
// otherwise one is generated with gen.
func RequestID(gen idgen.Generator) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			requestID := GetRequestID(r.Context())
			if requestID == "" {
				requestID = r.Header.Get(RequestIDHeader)
			}
			if requestID == "" {
				requestID = idgen.MustNewID(gen)
			}

			// RoundTrippers must not mutate the caller's request.
			r = r.Clone(WithRequestID(r.Context(), requestID))
			r.Header.Set(RequestIDHeader, requestID)

			return next.RoundTrip(r)
		})
	}
}

// GetRequestID extracts the request ID from context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds a request ID to the context.
// This is useful for testing or manually setting request IDs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// Logger logs outbound requests at debug level. Headers are never logged,
// the Authorization header carries the API key.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			duration := time.Since(start)

			attrs := []any{
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"host", r.URL.Host,
				"path", r.URL.Path,
				"duration_ms", duration.Milliseconds(),
			}
			if err != nil {
				logger.DebugContext(r.Context(), "http request failed", append(attrs, "error", err)...)
				return nil, err
			}
			logger.DebugContext(r.Context(), "http request", append(attrs, "status", resp.StatusCode)...)
			return resp, nil
		})
	}
}

// Recovery converts a panic in the wrapped transport into an error.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (resp *http.Response, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered in transport",
						"request_id", GetRequestID(r.Context()),
						"error", rec,
						"stack", string(debug.Stack()),
					)
					resp = nil
					err = fmt.Errorf("transport panic: %v", rec)
				}
			}()

			return next.RoundTrip(r)
		})
	}
}
