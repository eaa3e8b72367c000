package apierr_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"

	"wms/internal/api"
	"wms/internal/apierr"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	dial := func(errno syscall.Errno) error {
		return &url.Error{Op: "Get", URL: "http://x/api/bins", Err: &net.OpError{
			Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", errno),
		}}
	}

	cases := []struct {
		name string
		err  error
		kind apierr.Kind
		msg  string
	}{
		{"unknown host", &url.Error{Op: "Post", URL: "http://nohost", Err: &net.DNSError{Err: "no such host", Name: "nohost"}}, apierr.KindNoConnectivity, "No internet connection"},
		{"no route to host", dial(syscall.EHOSTUNREACH), apierr.KindNoConnectivity, "No internet connection"},
		{"network unreachable", dial(syscall.ENETUNREACH), apierr.KindNoConnectivity, "No internet connection"},
		{"connection refused", dial(syscall.ECONNREFUSED), apierr.KindNoConnectivity, "No internet connection"},
		{"client timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, apierr.KindTimeout, "Connection timed out"},
		{"deadline", fmt.Errorf("login: %w", context.DeadlineExceeded), apierr.KindTimeout, "Connection timed out"},
		{"400", &api.HTTPError{StatusCode: 400}, apierr.KindHTTPStatus, "Invalid credentials"},
		{"401", &api.HTTPError{StatusCode: 401}, apierr.KindHTTPStatus, "Invalid email or password"},
		{"403", &api.HTTPError{StatusCode: 403}, apierr.KindHTTPStatus, "Account locked"},
		{"404", &api.HTTPError{StatusCode: 404}, apierr.KindHTTPStatus, "Account not found"},
		{"500", &api.HTTPError{StatusCode: 500}, apierr.KindHTTPStatus, "Server error"},
		{"502", &api.HTTPError{StatusCode: 502}, apierr.KindHTTPStatus, "Network error: 502"},
		{"wrapped http", fmt.Errorf("x: %w", &api.HTTPError{StatusCode: 418}), apierr.KindHTTPStatus, "Network error: 418"},
		{"other", errors.New("boom"), apierr.KindUnexpected, "An unexpected error occurred: boom"},
		{"nil", nil, apierr.KindUnexpected, "An unexpected error occurred: "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := apierr.Classify(tc.err)
			if f.Kind != tc.kind {
				t.Fatalf("kind = %v, want %v", f.Kind, tc.kind)
			}
			if got := f.Message(); got != tc.msg {
				t.Fatalf("message = %q, want %q", got, tc.msg)
			}
		})
	}
}

func TestSignUpMessages(t *testing.T) {
	want := map[int]string{
		400: "Invalid request",
		401: "Unauthorized",
		403: "Forbidden",
		404: "Not found",
		500: "Server error",
		503: "Network error: 503",
	}
	for code, msg := range want {
		f := apierr.Classify(&api.HTTPError{StatusCode: code})
		if got := f.MessageWith(apierr.SignUpMessages); got != msg {
			t.Errorf("%d: got %q, want %q", code, got, msg)
		}
	}
}
