// Package pipeline contains the event-processing core: the per-notification
// fetch → transcode → publish sequence and the bounded worker pool that
// executes it off the broker's network callback path.
//
// # Failure policy
//
// Per-event failures (unknown camera, missing source clip, transcoder
// failure, publish failure) are logged, recorded and dropped; they never
// tear down the broker connection. Connection-level failures are the
// bridge package's concern.
//
// # Concurrency
//
// Inbound notifications are enqueued onto a bounded queue; a fixed-size
// pool of workers drains it. A slow ffmpeg run therefore blocks at most one
// worker, not message delivery. When the queue is full the event is dropped
// with a log entry rather than blocking the network goroutine.
package pipeline
