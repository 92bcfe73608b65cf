package shortener

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Client shortens a single URL against a remote service.
// Any failure is returned as an error classified with errx kinds; a Client
// never panics on remote misbehavior.
type Client interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, longURL string) (string, error)

func (f ClientFunc) Shorten(ctx context.Context, longURL string) (string, error) {
	return f(ctx, longURL)
}

// Waiter blocks for a duration or until ctx is done.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// WaiterFunc adapts a function to Waiter.
type WaiterFunc func(ctx context.Context, d time.Duration) error

func (f WaiterFunc) Wait(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// sleepWaiter waits on a real timer.
type sleepWaiter struct{}

// NewSleepWaiter returns the production Waiter.
func NewSleepWaiter() Waiter { return sleepWaiter{} }

func (sleepWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Pacer spaces consecutive requests.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer returns a Pacer allowing one request per interval, or nil when
// interval is not positive. The first request is never delayed.
func NewPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
