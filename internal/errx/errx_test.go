package errx

import (
	"errors"
	"fmt"
	"testing"
)

// TestE tests the E function constructor
func TestE(t *testing.T) {
	t.Run("returns nil when error is nil", func(t *testing.T) {
		got := E("op", Remote, nil)
		if got != nil {
			t.Errorf("E() with nil error = %v, want nil", got)
		}
	})

	t.Run("constructs Error with all fields", func(t *testing.T) {
		root := errors.New("root cause")
		err := E("linko.Client.Shorten", RateLimited, root)

		var e *Error
		if !errors.As(err, &e) {
			t.Fatal("expected error to be of type *errx.Error")
		}

		if got, want := e.Op, "linko.Client.Shorten"; got != want {
			t.Errorf("Op = %q, want %q", got, want)
		}
		if got, want := e.Kind, RateLimited; got != want {
			t.Errorf("Kind = %v, want %v", got, want)
		}
		if !errors.Is(e.Err, root) {
			t.Errorf("Err = %v, want %v", e.Err, root)
		}
	})

	t.Run("preserves all error kinds", func(t *testing.T) {
		kinds := []Kind{
			Unknown, Config, Input, Output, RateLimited, Unauthorized,
			Forbidden, Remote, Protocol, Unavailable, Canceled,
		}
		root := errors.New("test error")

		for _, kind := range kinds {
			t.Run(fmt.Sprintf("kind_%d", kind), func(t *testing.T) {
				err := E("operation", kind, root)
				if got := KindOf(err); got != kind {
					t.Errorf("KindOf() = %v, want %v", got, kind)
				}
			})
		}
	})
}

// TestError_Error tests the Error method
func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "nil inner error returns op",
			err:  &Error{Op: "linkfile.ReadFile", Kind: Input, Err: nil},
			want: "linkfile.ReadFile",
		},
		{
			name: "empty op returns inner error message",
			err:  &Error{Op: "", Kind: Unknown, Err: errors.New("root cause")},
			want: "root cause",
		},
		{
			name: "normal case formats op and error",
			err:  &Error{Op: "config.Load", Kind: Config, Err: errors.New("root cause")},
			want: "config.Load: root cause",
		},
		{
			name: "both empty returns empty op",
			err:  &Error{Op: "", Kind: Unknown, Err: nil},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestError_Unwrap tests error unwrapping
func TestError_Unwrap(t *testing.T) {
	t.Run("unwraps to inner error", func(t *testing.T) {
		root := errors.New("root")
		err := E("linkfile.ReadFile", Input, root)

		if !errors.Is(err, root) {
			t.Error("errors.Is() failed to identify root error through unwrapping")
		}
	})

	t.Run("supports nested wrapping", func(t *testing.T) {
		root := errors.New("connection reset")
		layer1 := E("linko.Client.Shorten", Unavailable, root)
		layer2 := E("shortener.Processor.Run", KindOf(layer1), layer1)

		if !errors.Is(layer2, root) {
			t.Error("errors.Is() failed with nested errors")
		}
		if got := KindOf(layer2); got != Unavailable {
			t.Errorf("KindOf() = %v, want %v", got, Unavailable)
		}
	})

	t.Run("returns nil when Err is nil", func(t *testing.T) {
		err := &Error{Op: "test", Kind: Unknown, Err: nil}
		if unwrapped := err.Unwrap(); unwrapped != nil {
			t.Errorf("Unwrap() = %v, want nil", unwrapped)
		}
	})
}

func TestKindOf(t *testing.T) {
	t.Run("returns Unknown for plain errors", func(t *testing.T) {
		if got := KindOf(errors.New("plain")); got != Unknown {
			t.Errorf("KindOf() = %v, want %v", got, Unknown)
		}
	})

	t.Run("returns Unknown for nil", func(t *testing.T) {
		if got := KindOf(nil); got != Unknown {
			t.Errorf("KindOf(nil) = %v, want %v", got, Unknown)
		}
	})

	t.Run("finds kind through fmt.Errorf wrapping", func(t *testing.T) {
		err := fmt.Errorf("context: %w", E("op", Forbidden, errors.New("nope")))
		if got := KindOf(err); got != Forbidden {
			t.Errorf("KindOf() = %v, want %v", got, Forbidden)
		}
	})
}

func TestOpOf(t *testing.T) {
	t.Run("returns outermost op", func(t *testing.T) {
		inner := E("linko.Client.Shorten", Remote, errors.New("boom"))
		outer := E("app.Run", KindOf(inner), inner)
		if got, want := OpOf(outer), "app.Run"; got != want {
			t.Errorf("OpOf() = %q, want %q", got, want)
		}
	})

	t.Run("returns empty string for plain errors", func(t *testing.T) {
		if got := OpOf(errors.New("plain")); got != "" {
			t.Errorf("OpOf() = %q, want empty string", got)
		}
	})
}

func TestKind_Fatal(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{Config, true},
		{Input, true},
		{Output, false},
		{RateLimited, false},
		{Protocol, false},
		{Unavailable, false},
		{Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Fatal(); got != tt.want {
				t.Errorf("Fatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Unknown, "Unknown"},
		{Config, "Config"},
		{Input, "Input"},
		{Output, "Output"},
		{RateLimited, "RateLimited"},
		{Unauthorized, "Unauthorized"},
		{Forbidden, "Forbidden"},
		{Remote, "Remote"},
		{Protocol, "Protocol"},
		{Unavailable, "Unavailable"},
		{Canceled, "Canceled"},
		{Kind(99), "Kind(99)"}, // Unknown kind value
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.kind.String()
			if got != tt.want {
				t.Errorf("Kind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}
