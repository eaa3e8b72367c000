// Package apierr maps raw transport failures to the fixed set of failure
// kinds the flows surface to the driver.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"wms/internal/api"
)

// Kind is the bucket a transport failure falls into.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNoConnectivity
	KindTimeout
	KindHTTPStatus
)

func (k Kind) String() string {
	switch k {
	case KindNoConnectivity:
		return "no_connectivity"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	default:
		return "unexpected"
	}
}

// Failure is a classified transport failure.
type Failure struct {
	Kind       Kind
	StatusCode int    // set for KindHTTPStatus
	Raw        string // original error text
}

// StatusMessages maps HTTP status codes to the text shown to the driver.
type StatusMessages map[int]string

// LoginMessages is the default status table.
var LoginMessages = StatusMessages{
	400: "Invalid credentials",
	401: "Invalid email or password",
	403: "Account locked",
	404: "Account not found",
	500: "Server error",
}

// SignUpMessages is the status table used by registration.
var SignUpMessages = StatusMessages{
	400: "Invalid request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not found",
	500: "Server error",
}

const (
	MsgNoConnectivity = "No internet connection"
	MsgTimeout        = "Connection timed out"
)

// Classify buckets err. It is total: every error, nil included, lands in
// exactly one kind.
func Classify(err error) Failure {
	if err == nil {
		return Failure{Kind: KindUnexpected}
	}

	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return Failure{Kind: KindHTTPStatus, StatusCode: httpErr.StatusCode, Raw: err.Error()}
	}

	if isTimeout(err) {
		return Failure{Kind: KindTimeout, Raw: err.Error()}
	}

	if isNoConnectivity(err) {
		return Failure{Kind: KindNoConnectivity, Raw: err.Error()}
	}

	return Failure{Kind: KindUnexpected, Raw: err.Error()}
}

// Message renders the failure with the default status table.
func (f Failure) Message() string {
	return f.MessageWith(LoginMessages)
}

// MessageWith renders the failure using table for HTTP statuses.
func (f Failure) MessageWith(table StatusMessages) string {
	switch f.Kind {
	case KindNoConnectivity:
		return MsgNoConnectivity
	case KindTimeout:
		return MsgTimeout
	case KindHTTPStatus:
		if msg, ok := table[f.StatusCode]; ok {
			return msg
		}
		return fmt.Sprintf("Network error: %d", f.StatusCode)
	default:
		return "An unexpected error occurred: " + f.Raw
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNoConnectivity(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
