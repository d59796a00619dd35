package metrics

import "errors"

// Sentinel errors for metrics operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected indicates the writer is not connected to InfluxDB.
	ErrNotConnected = errors.New("metrics: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("metrics: connection failed")

	// ErrDisabled indicates metrics export is disabled in config.
	ErrDisabled = errors.New("metrics: disabled in configuration")
)
