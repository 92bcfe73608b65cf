// Package errx provides application error kinds for the batch shortener.
// Config and Input kinds are fatal to a run; the per-request kinds are
// recorded against a single link and the run continues.

package errx

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Unknown Kind = iota
	Config
	Input
	Output
	RateLimited
	Unauthorized
	Forbidden
	Remote
	Protocol
	Unavailable
	Canceled
)

type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Config:
		return "Config"
	case Input:
		return "Input"
	case Output:
		return "Output"
	case RateLimited:
		return "RateLimited"
	case Unauthorized:
		return "Unauthorized"
	case Forbidden:
		return "Forbidden"
	case Remote:
		return "Remote"
	case Protocol:
		return "Protocol"
	case Unavailable:
		return "Unavailable"
	case Canceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Fatal reports whether errors of this kind must stop the process.
func (k Kind) Fatal() bool {
	return k == Config || k == Input
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
