package httpx

import (
	"net/http"

	"github.com/sundayezeilo/linkbatch/internal/errx"
)

// StatusToKind maps a non-success HTTP status from a remote API to an errx.Kind.
func StatusToKind(status int) errx.Kind {
	switch status {
	case http.StatusTooManyRequests:
		return errx.RateLimited
	case http.StatusUnauthorized:
		return errx.Unauthorized
	case http.StatusForbidden:
		return errx.Forbidden
	default:
		return errx.Remote
	}
}

// KindToCode maps errx.Kind to short codes used in log lines.
func KindToCode(kind errx.Kind) string {
	switch kind {
	case errx.Config:
		return "config_error"
	case errx.Input:
		return "input_error"
	case errx.Output:
		return "output_error"
	case errx.RateLimited:
		return "rate_limited"
	case errx.Unauthorized:
		return "unauthorized"
	case errx.Forbidden:
		return "forbidden"
	case errx.Remote:
		return "remote_error"
	case errx.Protocol:
		return "invalid_response"
	case errx.Unavailable:
		return "network_error"
	case errx.Canceled:
		return "canceled"
	default:
		return "unknown_error"
	}
}
