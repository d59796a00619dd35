package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nerrad567/motionbridge/internal/clips"
	"github.com/nerrad567/motionbridge/internal/infrastructure/config"
)

// Notification is one inbound motion event, as delivered by the broker
// subscription.
type Notification struct {
	// Camera is the camera identifier derived from the event topic.
	Camera string

	// EventID is the raw message payload, expected to be the surveillance
	// platform's event identifier.
	EventID string

	// ReceivedAt is the local receipt time, used to resolve the
	// date-partitioned recording directory.
	ReceivedAt time.Time
}

// Outcome classifies the result of processing one notification.
type Outcome string

// Processing outcomes, recorded in the journal and tagged on metrics.
const (
	OutcomeSuccess        Outcome = "success"
	OutcomeInvalidPayload Outcome = "invalid_payload"
	OutcomeUnknownCamera  Outcome = "unknown_camera"
	OutcomeFetchFailed    Outcome = "fetch_failed"
	OutcomeConvertFailed  Outcome = "convert_failed"
	OutcomePublishFailed  Outcome = "publish_failed"
)

// Result is the record of one processed notification.
type Result struct {
	Notification

	// Outcome classifies how processing ended.
	Outcome Outcome

	// Artifact is the published preview filename. Empty unless the outcome
	// is OutcomeSuccess.
	Artifact string

	// Err holds the failure, if any.
	Err error

	// Duration covers the whole fetch-convert-publish sequence.
	Duration time.Duration
}

// Succeeded reports whether the notification produced a published preview.
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Fetcher copies an event's source recording into the working directory
// and returns the working-copy path.
type Fetcher interface {
	Fetch(cam config.CameraProfile, eventID string, receivedAt time.Time) (string, error)
}

// Transcoder converts a working copy into a preview artifact, returning the
// tool's exit status.
type Transcoder interface {
	Convert(ctx context.Context, req clips.ConvertRequest) (int, error)
}

// Publisher announces a finished preview artifact to consumers.
type Publisher interface {
	PublishPreview(cameraID, artifact string) error
}

// Recorder persists processing results. Implemented by the journal.
type Recorder interface {
	Record(ctx context.Context, res Result) error
}

// MetricsWriter exports processing results as time-series points.
type MetricsWriter interface {
	WriteResult(res Result)
}

// Logger is the minimal logging interface the pipeline depends on.
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

// Processor executes the fetch-convert-publish sequence for one
// notification at a time.
//
// Every failure inside Process is a per-event failure: it is logged,
// recorded and dropped. Process never returns an error to its caller, so a
// bad event cannot disturb the broker connection or the rest of the queue.
//
// Thread Safety: Process is safe for concurrent use; the Processor holds no
// per-event state.
type Processor struct {
	cfg        *config.Config
	fetcher    Fetcher
	transcoder Transcoder
	publisher  Publisher
	recorder   Recorder
	metrics    MetricsWriter
	logger     Logger
	now        func() time.Time
}

// NewProcessor creates a Processor over the given collaborators.
func NewProcessor(cfg *config.Config, fetcher Fetcher, transcoder Transcoder, publisher Publisher) *Processor {
	return &Processor{
		cfg:        cfg,
		fetcher:    fetcher,
		transcoder: transcoder,
		publisher:  publisher,
		logger:     noopLogger{},
		now:        time.Now,
	}
}

// SetLogger sets the logger for the processor.
func (p *Processor) SetLogger(logger Logger) {
	p.logger = logger
}

// SetRecorder attaches a journal. A nil recorder disables journalling.
func (p *Processor) SetRecorder(recorder Recorder) {
	p.recorder = recorder
}

// SetMetrics attaches a metrics writer. A nil writer disables metrics.
func (p *Processor) SetMetrics(metrics MetricsWriter) {
	p.metrics = metrics
}

// Process handles one notification end to end:
//
//  1. Validate the payload as an event identifier.
//  2. Look up the camera profile.
//  3. Copy the source recording into the working directory.
//  4. Convert the copy into a preview artifact.
//  5. Publish the artifact filename on the previews topic.
//
// The returned Result is also handed to the attached recorder and metrics
// writer before Process returns.
func (p *Processor) Process(ctx context.Context, n Notification) Result {
	start := p.now()

	res := p.run(ctx, n)
	res.Duration = p.now().Sub(start)

	if res.Succeeded() {
		p.logger.Info("event processed",
			"camera", n.Camera,
			"event_id", n.EventID,
			"artifact", res.Artifact,
			"duration", res.Duration,
		)
	} else {
		p.logger.Error("event dropped",
			"camera", n.Camera,
			"event_id", n.EventID,
			"outcome", string(res.Outcome),
			"error", res.Err,
		)
	}

	p.record(ctx, res)

	return res
}

func (p *Processor) run(ctx context.Context, n Notification) Result {
	res := Result{Notification: n}

	eventID := strings.TrimSpace(n.EventID)
	if eventID == "" {
		res.Outcome = OutcomeInvalidPayload
		res.Err = ErrEmptyEventID
		return res
	}
	res.EventID = eventID

	profile, ok := p.cfg.Profile(n.Camera)
	if !ok {
		res.Outcome = OutcomeUnknownCamera
		res.Err = fmt.Errorf("%w: %q", ErrUnknownCamera, n.Camera)
		return res
	}

	input, err := p.fetcher.Fetch(profile, eventID, n.ReceivedAt)
	if err != nil {
		res.Outcome = OutcomeFetchFailed
		res.Err = err
		return res
	}

	artifact := clips.ArtifactName(eventID)
	exitCode, err := p.transcoder.Convert(ctx, clips.ConvertRequest{
		Input:    input,
		Output:   filepath.Join(p.cfg.WorkingFolder, artifact),
		Scale:    profile.Scale,
		SkipSecs: profile.SkipFirstNSecs,
		MaxSecs:  profile.MaxLengthSecs,
	})
	if err != nil {
		res.Outcome = OutcomeConvertFailed
		res.Err = err
		return res
	}
	if exitCode != 0 {
		res.Outcome = OutcomeConvertFailed
		res.Err = fmt.Errorf("%w: exit status %d", ErrConvertFailed, exitCode)
		return res
	}

	if err := p.publisher.PublishPreview(n.Camera, artifact); err != nil {
		res.Outcome = OutcomePublishFailed
		res.Err = err
		return res
	}

	res.Outcome = OutcomeSuccess
	res.Artifact = artifact
	return res
}

// record hands the result to the attached sinks. Sink failures are logged
// and otherwise ignored; observability must not affect processing.
func (p *Processor) record(ctx context.Context, res Result) {
	if p.recorder != nil {
		if err := p.recorder.Record(ctx, res); err != nil {
			p.logger.Warn("recording result failed",
				"event_id", res.EventID,
				"error", err,
			)
		}
	}
	if p.metrics != nil {
		p.metrics.WriteResult(res)
	}
}
