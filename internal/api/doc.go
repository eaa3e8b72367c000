// Package api is the transport to the bin monitoring backend.
//
// A single Client carries the base URL, the JSON codec, request logging and
// the bearer token of the current session. Every endpoint is one blocking
// call taking a context; callers that need asynchrony run it on their own
// goroutine (see package flows).
//
// Non-2xx answers are returned as *HTTPError with the raw body attached so
// that callers can decode server error payloads. Network failures are
// returned unwrapped so they can be classified by package apierr.
package api
