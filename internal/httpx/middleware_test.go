package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// captureTransport records the last request it saw and answers 200.
type captureTransport struct {
	last *http.Request
}

func (c *captureTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.last = r
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("ok")),
		Header:     make(http.Header),
		Request:    r,
	}, nil
}

type fixedGen struct{ id string }

func (g fixedGen) NewID() (string, error) { return g.id, nil }

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{
			name: "request ID exists",
			ctx:  context.WithValue(context.Background(), requestIDContextKey, "test-123"),
			want: "test-123",
		},
		{
			name: "request ID missing",
			ctx:  context.Background(),
			want: "",
		},
		{
			name: "wrong type in context",
			ctx:  context.WithValue(context.Background(), requestIDContextKey, 12345),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetRequestID(tt.ctx)
			if got != tt.want {
				t.Errorf("GetRequestID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithRequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	newCtx := WithRequestID(ctx, requestID)

	got := GetRequestID(newCtx)
	if got != requestID {
		t.Errorf("expected request ID %q, got %q", requestID, got)
	}

	// Verify original context is unchanged
	if GetRequestID(ctx) != "" {
		t.Error("original context should not have request ID")
	}
}

func TestRequestID(t *testing.T) {
	t.Run("generates request ID when none present", func(t *testing.T) {
		base := &captureTransport{}
		rt := Chain(base, RequestID(nil))

		req := httptest.NewRequest(http.MethodPost, "http://linko.test/api/url/add", nil)
		if _, err := rt.RoundTrip(req); err != nil {
			t.Fatalf("RoundTrip() unexpected error: %v", err)
		}

		got := base.last.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("generated request ID %q is not a valid UUID: %v", got, err)
		}
		if GetRequestID(base.last.Context()) != got {
			t.Error("request ID not propagated to context")
		}
	})

	t.Run("uses generator", func(t *testing.T) {
		base := &captureTransport{}
		rt := Chain(base, RequestID(fixedGen{id: "gen-1"}))

		req := httptest.NewRequest(http.MethodPost, "http://linko.test/", nil)
		if _, err := rt.RoundTrip(req); err != nil {
			t.Fatalf("RoundTrip() unexpected error: %v", err)
		}
		if got := base.last.Header.Get(RequestIDHeader); got != "gen-1" {
			t.Errorf("X-Request-ID = %q, want %q", got, "gen-1")
		}
	})

	t.Run("context ID wins over generator", func(t *testing.T) {
		base := &captureTransport{}
		rt := Chain(base, RequestID(fixedGen{id: "gen-1"}))

		req := httptest.NewRequest(http.MethodPost, "http://linko.test/", nil)
		req = req.WithContext(WithRequestID(req.Context(), "ctx-1"))
		if _, err := rt.RoundTrip(req); err != nil {
			t.Fatalf("RoundTrip() unexpected error: %v", err)
		}
		if got := base.last.Header.Get(RequestIDHeader); got != "ctx-1" {
			t.Errorf("X-Request-ID = %q, want %q", got, "ctx-1")
		}
	})

	t.Run("does not mutate caller request", func(t *testing.T) {
		base := &captureTransport{}
		rt := Chain(base, RequestID(fixedGen{id: "gen-1"}))

		req := httptest.NewRequest(http.MethodPost, "http://linko.test/", nil)
		if _, err := rt.RoundTrip(req); err != nil {
			t.Fatalf("RoundTrip() unexpected error: %v", err)
		}
		if req.Header.Get(RequestIDHeader) != "" {
			t.Error("caller request header was modified")
		}
	})
}

func TestLogger(t *testing.T) {
	t.Run("logs successful request without headers", func(t *testing.T) {
		var buf bytes.Buffer
		rt := Chain(&captureTransport{}, Logger(newTestLogger(&buf)))

		req := httptest.NewRequest(http.MethodPost, "http://linko.test/api/url/add", nil)
		req.Header.Set("Authorization", "Bearer top-secret")
		resp, err := rt.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() unexpected error: %v", err)
		}
		_ = resp.Body.Close()

		out := buf.String()
		if !strings.Contains(out, "status=200") {
			t.Errorf("log missing status: %s", out)
		}
		if !strings.Contains(out, "path=/api/url/add") {
			t.Errorf("log missing path: %s", out)
		}
		if strings.Contains(out, "top-secret") {
			t.Errorf("log leaked authorization header: %s", out)
		}
	})

	t.Run("logs and returns transport error", func(t *testing.T) {
		var buf bytes.Buffer
		boom := errors.New("connection refused")
		failing := RoundTripperFunc(func(*http.Request) (*http.Response, error) { return nil, boom })
		rt := Chain(failing, Logger(newTestLogger(&buf)))

		req := httptest.NewRequest(http.MethodPost, "http://linko.test/", nil)
		_, err := rt.RoundTrip(req)
		if !errors.Is(err, boom) {
			t.Fatalf("RoundTrip() error = %v, want %v", err, boom)
		}
		if !strings.Contains(buf.String(), "http request failed") {
			t.Errorf("log missing failure line: %s", buf.String())
		}
	})
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	panicking := RoundTripperFunc(func(*http.Request) (*http.Response, error) { panic("nil map") })
	rt := Chain(panicking, Recovery(newTestLogger(&buf)))

	req := httptest.NewRequest(http.MethodPost, "http://linko.test/", nil)
	resp, err := rt.RoundTrip(req)
	if err == nil {
		t.Fatal("RoundTrip() expected error after panic, got nil")
	}
	if resp != nil {
		t.Error("RoundTrip() returned non-nil response after panic")
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("log missing panic line: %s", buf.String())
	}
}

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	rt := Chain(&captureTransport{}, mark("first"), mark("second"), mark("third"))
	req := httptest.NewRequest(http.MethodGet, "http://linko.test/", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip() unexpected error: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}
