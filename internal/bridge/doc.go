// Package bridge owns the broker connection lifecycle: connecting,
// subscribing each configured camera's event topic, feeding notifications
// into the worker pool, and reconnecting after a loss.
//
// # Connection state machine
//
// The bridge moves through four states:
//
//	Disconnected -> Connecting -> Connected -> Subscribed
//
// Only Subscribed means event delivery is live. A subscription failure
// after connect drops the connection deliberately rather than running
// half-subscribed, so a later attempt retries every camera.
//
// # Reconnect pacing
//
// The underlying client's automatic reconnection is disabled; the bridge's
// run loop is the single authority on reconnects. While disconnected it
// attempts at most one connect per reconnect interval, so a dead broker
// costs one TCP dial per interval and recovery happens within one interval
// of the broker returning.
package bridge
