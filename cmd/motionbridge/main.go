// Motion Bridge - surveillance event preview bridge
//
// This is the main entry point for the Motion Bridge application.
// Motion Bridge subscribes to per-camera motion event topics on an MQTT
// broker, copies the matching ZoneMinder recording, renders an animated
// GIF preview with ffmpeg, and publishes the preview's filename for
// dashboards and notification consumers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nerrad567/motionbridge/internal/bridge"
	"github.com/nerrad567/motionbridge/internal/clips"
	"github.com/nerrad567/motionbridge/internal/infrastructure/config"
	"github.com/nerrad567/motionbridge/internal/infrastructure/logging"
	"github.com/nerrad567/motionbridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/motionbridge/internal/journal"
	"github.com/nerrad567/motionbridge/internal/metrics"
	"github.com/nerrad567/motionbridge/internal/pipeline"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// dirPermissions is the permission mode for the working directory.
const dirPermissions = 0750

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing a startup failure
func run(ctx context.Context) error {
	// Load .env if present; secrets like MOTIONBRIDGE_MQTT_PWD live there
	// in development deployments.
	_ = godotenv.Load() //nolint:errcheck // Missing .env is the normal case

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Motion Bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath(os.Args[1:])
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "cameras", len(cfg.Cameras))

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// The working folder holds source copies and finished previews; it is
	// shared with preview consumers and must exist before processing starts.
	if err := os.MkdirAll(cfg.WorkingFolder, dirPermissions); err != nil {
		return fmt.Errorf("creating working folder: %w", err)
	}

	// Open the processed-event journal (optional)
	var eventJournal *journal.Journal
	if cfg.Journal.Enabled {
		eventJournal, err = journal.Open(cfg.Journal)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer func() {
			log.Info("closing journal")
			if closeErr := eventJournal.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()

		if healthErr := eventJournal.HealthCheck(ctx); healthErr != nil {
			return fmt.Errorf("journal health check: %w", healthErr)
		}
		log.Info("journal opened", "path", eventJournal.Path())
	} else {
		log.Info("journal disabled")
	}

	// Connect to InfluxDB (optional)
	var metricsWriter *metrics.Writer
	if cfg.Metrics.Enabled {
		metricsWriter, err = metrics.Connect(cfg.Metrics)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := metricsWriter.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()

		metricsWriter.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.Metrics.URL,
			"org", cfg.Metrics.Org,
			"bucket", cfg.Metrics.Bucket,
		)
	} else {
		log.Info("metrics disabled")
	}

	// Assemble the processing pipeline
	fetcher := clips.NewFetcher(cfg.SourceVideoFolder, cfg.WorkingFolder)
	fetcher.SetLogger(log)

	transcoder := clips.NewTranscoder(cfg.KeepFailedSources)
	transcoder.SetLogger(log)

	broker := mqtt.New(cfg)
	broker.SetLogger(log)

	publisher := bridge.NewPublisher(broker, cfg.BaseGifsTopic)

	processor := pipeline.NewProcessor(cfg, fetcher, transcoder, publisher)
	processor.SetLogger(log)
	if eventJournal != nil {
		processor.SetRecorder(eventJournal)
	}
	if metricsWriter != nil {
		processor.SetMetrics(metricsWriter)
	}

	pool := pipeline.NewPool(processor, cfg.Workers, cfg.QueueSize)
	pool.SetLogger(log)
	pool.Start(ctx)
	defer pool.Stop()

	// The bridge owns the broker connection for the rest of the process
	// lifetime; Run blocks until the context is cancelled.
	b := bridge.New(cfg, broker, pool)
	b.SetLogger(log)

	log.Info("initialisation complete")

	if err := b.Run(ctx); err != nil {
		return fmt.Errorf("running bridge: %w", err)
	}

	log.Info("Motion Bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
//
// Resolution order: first positional argument, MOTIONBRIDGE_CONFIG
// environment variable, then the default path. Flag-like arguments are
// ignored so the resolution also works under `go test`.
func getConfigPath(args []string) string {
	if len(args) > 0 && args[0] != "" && !strings.HasPrefix(args[0], "-") {
		return args[0]
	}
	if path := os.Getenv("MOTIONBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
