// Package server assembles the HTTP surface of the development backend: the
// REST routes the client calls, the tracking websocket, health and metrics.
package server
