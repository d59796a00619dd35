package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/motionbridge/internal/infrastructure/config"
	"github.com/nerrad567/motionbridge/internal/pipeline"
)

// Default timeouts for InfluxDB operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second

	// millisecondsPerSecond converts seconds to milliseconds for the InfluxDB API.
	millisecondsPerSecond = 1000
)

// resultMeasurement is the measurement name for processed-event points.
const resultMeasurement = "motion_events"

// Writer exports pipeline results to InfluxDB. It satisfies
// pipeline.MetricsWriter.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Write operations are non-blocking and batched.
type Writer struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	cfg      config.MetricsConfig

	connected bool
	mu        sync.RWMutex

	// onError is called when async write errors occur.
	onError func(err error)
}

// Connect establishes a connection to the InfluxDB server.
//
// It verifies connectivity with a ping and configures the non-blocking
// write API with batching.
//
// Parameters:
//   - cfg: Metrics configuration from the main config file
//
// Returns:
//   - *Writer: Connected writer ready for use
//   - error: ErrDisabled if metrics are off, ErrConnectionFailed otherwise
func Connect(cfg config.MetricsConfig) (*Writer, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	// #nosec G115 -- values validated above to be positive
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)

	w := &Writer{
		client:    client,
		writeAPI:  writeAPI,
		cfg:       cfg,
		connected: true,
	}

	// Async write failures arrive on a channel; fan them out to the callback.
	errorsCh := writeAPI.Errors()
	go w.handleWriteErrors(errorsCh)

	return w, nil
}

func (w *Writer) handleWriteErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		w.mu.RLock()
		callback := w.onError
		w.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// WriteResult exports one processing result as a point. Non-blocking; the
// point is batched and sent asynchronously.
func (w *Writer) WriteResult(res pipeline.Result) {
	if !w.IsConnected() {
		return
	}
	w.writeAPI.WritePoint(resultPoint(res, time.Now()))
}

// resultPoint builds the InfluxDB point for one processing result.
//
// Camera and outcome are tags (low cardinality, queryable); the event
// identifier and timings are fields.
func resultPoint(res pipeline.Result, at time.Time) *write.Point {
	success := 0
	if res.Succeeded() {
		success = 1
	}

	return write.NewPoint(
		resultMeasurement,
		map[string]string{
			"camera":  res.Camera,
			"outcome": string(res.Outcome),
		},
		map[string]interface{}{
			"event_id":    res.EventID,
			"duration_ms": res.Duration.Milliseconds(),
			"success":     success,
		},
		at,
	)
}

// Close flushes pending writes and shuts down the InfluxDB connection.
func (w *Writer) Close() error {
	if w.client == nil {
		return nil
	}

	w.mu.Lock()
	w.connected = false
	w.mu.Unlock()

	w.writeAPI.Flush()
	w.client.Close()

	return nil
}

// HealthCheck verifies the InfluxDB connection is alive.
func (w *Writer) HealthCheck(ctx context.Context) error {
	if !w.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := w.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("metrics health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("metrics health check failed: server not healthy")
	}

	return nil
}

// IsConnected returns the last known connection state. For an active probe
// use HealthCheck.
func (w *Writer) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// SetOnError sets a callback invoked when async write errors occur.
func (w *Writer) SetOnError(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Flush forces all pending writes to be sent. Blocks until the buffer is
// drained. Safe to call after Close (no-op).
func (w *Writer) Flush() {
	if w.writeAPI == nil {
		return
	}

	w.mu.RLock()
	connected := w.connected
	w.mu.RUnlock()

	if !connected {
		return
	}

	w.writeAPI.Flush()
}
