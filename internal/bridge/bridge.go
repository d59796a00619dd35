package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nerrad567/motionbridge/internal/infrastructure/config"
	"github.com/nerrad567/motionbridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/motionbridge/internal/pipeline"
)

// ErrSubscriptionSetup is returned through the disconnect path when the
// bridge could not subscribe every configured camera after a connect.
var ErrSubscriptionSetup = errors.New("bridge: subscription setup failed")

// Broker is the slice of the MQTT client the bridge depends on.
// Satisfied by *mqtt.Client.
type Broker interface {
	Connect() error
	Close() error
	IsConnected() bool
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	QoS() byte
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
}

// Enqueuer accepts notifications for asynchronous processing.
// Satisfied by *pipeline.Pool.
type Enqueuer interface {
	Enqueue(n pipeline.Notification) error
}

// Logger is the minimal logging interface the bridge depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Bridge connects the broker to the processing pool and keeps the
// connection alive for the process lifetime.
//
// Thread Safety: State is safe to read from any goroutine. Run must be
// called exactly once.
type Bridge struct {
	cfg    *config.Config
	broker Broker
	pool   Enqueuer
	logger Logger

	state atomic.Int32

	// disconnects carries connection-loss notifications from the client's
	// callback goroutine to the run loop. Buffered so the callback never
	// blocks; a second loss before the loop reacts adds no information.
	disconnects chan error

	now func() time.Time
}

// New creates a Bridge over the given broker and pool.
func New(cfg *config.Config, broker Broker, pool Enqueuer) *Bridge {
	return &Bridge{
		cfg:         cfg,
		broker:      broker,
		pool:        pool,
		logger:      noopLogger{},
		disconnects: make(chan error, 1),
		now:         time.Now,
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.logger = logger
}

// State returns the current connection state.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

func (b *Bridge) setState(s State) {
	old := State(b.state.Swap(int32(s)))
	if old != s {
		b.logger.Debug("connection state changed",
			"from", old.String(),
			"to", s.String(),
		)
	}
}

// Run drives the connection lifecycle until the context is cancelled.
//
// The loop attempts an initial connect immediately, then reacts to
// disconnect notifications and retries on a fixed interval. It always
// returns nil after closing the broker connection; connection failures are
// retried forever, not surfaced.
func (b *Bridge) Run(ctx context.Context) error {
	b.broker.SetOnConnect(b.handleConnected)
	b.broker.SetOnDisconnect(b.handleDisconnected)

	b.tryConnect()

	ticker := time.NewTicker(b.cfg.ReconnectInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.setState(StateDisconnected)
			if err := b.broker.Close(); err != nil {
				b.logger.Warn("closing broker connection", "error", err)
			}
			b.logger.Info("bridge stopped")
			return nil

		case err := <-b.disconnects:
			b.setState(StateDisconnected)
			b.logger.Warn("broker connection lost",
				"error", err,
				"retry_interval", b.cfg.ReconnectInterval(),
			)

		case <-ticker.C:
			if b.State() == StateDisconnected {
				b.tryConnect()
			}
		}
	}
}

// tryConnect performs one connect attempt. Success is observed through the
// client's connect callback, not here.
func (b *Bridge) tryConnect() {
	b.setState(StateConnecting)
	b.logger.Info("connecting to broker",
		"server", b.cfg.MQTTServer,
		"port", b.cfg.MQTTPort,
	)

	if err := b.broker.Connect(); err != nil {
		b.setState(StateDisconnected)
		b.logger.Warn("broker connect failed",
			"error", err,
			"retry_interval", b.cfg.ReconnectInterval(),
		)
	}
}

// handleConnected runs on the client's callback goroutine after each
// successful connect, including reconnects. The session is opened clean, so
// every camera subscription is re-established here.
func (b *Bridge) handleConnected() {
	b.setState(StateConnected)

	if err := b.subscribeAll(); err != nil {
		b.logger.Error("camera subscription failed, dropping connection", "error", err)
		if closeErr := b.broker.Close(); closeErr != nil {
			b.logger.Warn("closing broker connection", "error", closeErr)
		}
		b.setState(StateDisconnected)
		b.notifyDisconnect(fmt.Errorf("%w: %w", ErrSubscriptionSetup, err))
		return
	}

	b.setState(StateSubscribed)
	b.logger.Info("bridge live", "cameras", len(b.cfg.Cameras))
}

// handleDisconnected runs on the client's callback goroutine when an
// established connection is lost.
func (b *Bridge) handleDisconnected(err error) {
	b.setState(StateDisconnected)
	b.notifyDisconnect(err)
}

func (b *Bridge) notifyDisconnect(err error) {
	select {
	case b.disconnects <- err:
	default:
	}
}

// subscribeAll subscribes every configured camera's event topic. The first
// failure aborts: a partial subscription set would silently ignore cameras.
func (b *Bridge) subscribeAll() error {
	for _, cam := range b.cfg.Cameras {
		topic := mqtt.EventTopic(b.cfg.BaseEventsTopic, cam.ID)
		if err := b.broker.Subscribe(topic, b.broker.QoS(), b.handleMessage); err != nil {
			return fmt.Errorf("subscribing %q: %w", topic, err)
		}
		b.logger.Info("subscribed to camera events", "camera", cam.ID, "topic", topic)
	}
	return nil
}

// handleMessage converts one inbound broker message into a pool
// notification. Delivery problems are per-event: they are logged (via the
// returned error) and dropped without touching the connection.
func (b *Bridge) handleMessage(topic string, payload []byte) error {
	cameraID, ok := mqtt.CameraFromEventTopic(b.cfg.BaseEventsTopic, topic)
	if !ok {
		return fmt.Errorf("unroutable event topic %q", topic)
	}

	n := pipeline.Notification{
		Camera:     cameraID,
		EventID:    string(payload),
		ReceivedAt: b.now(),
	}

	if err := b.pool.Enqueue(n); err != nil {
		return fmt.Errorf("enqueueing event %q from %q: %w", n.EventID, cameraID, err)
	}

	b.logger.Debug("event queued", "camera", cameraID, "event_id", n.EventID)
	return nil
}
