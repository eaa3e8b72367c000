// Package session stores the identity of the logged-in driver.
//
// A login or sign up writes the session; a profile update rewrites its
// identity fields; logout clears it. The file store keeps two JSON
// namespaces under the configured home directory: app_prefs.json with the
// bearer token alone and user_prefs.json with the full identity.
package session
