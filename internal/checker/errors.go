package checker

import (
	"errors"
	"strings"
)

var (
	// ErrCheckInProgress is returned by Run when another batch owns the checker.
	ErrCheckInProgress = errors.New("check already in progress")

	// ErrCancelled wraps every error caused by cancelling a check.
	ErrCancelled = errors.New("link check cancelled")
)

// describeError simplifies verbose transport errors into readable categories.
func describeError(err error) string {
	if err == nil {
		return "unknown error"
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "no route to host"):
		return "Host unreachable"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "timed out"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	default:
		return msg
	}
}
