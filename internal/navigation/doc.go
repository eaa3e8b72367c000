// Package navigation guides a driver to a bin: bearing and distance between
// two points, and a websocket tracker that streams the driver's position to
// the backend while en route.
package navigation
