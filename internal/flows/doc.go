// Package flows holds the state machines behind every driver action: login,
// sign up, the bin list, bin details and the profile.
//
// Each flow publishes its state through an Observable and runs transport
// calls on a goroutine of its own. Actions return a channel that receives the
// terminal state once, so callers can either wait on it or subscribe to the
// state.
//
// Transport failures never escape as errors: they are turned into the
// message shown to the driver. The only errors returned directly are local
// ones (invalid input, no session) raised before anything is dispatched.
package flows
