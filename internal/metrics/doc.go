// Package metrics exports pipeline processing results to InfluxDB as
// time-series points.
//
// Writes are non-blocking and batched: the worker pool hands each result to
// the writer and moves on, and the InfluxDB client flushes batches in the
// background. Write failures surface through an error callback, never
// through the processing path.
package metrics
