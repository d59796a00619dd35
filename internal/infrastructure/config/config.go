package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Motion Bridge.
// It is loaded once at startup and immutable for the process lifetime.
//
// The document keys mirror the historical flat schema used by earlier
// deployments, so existing JSON config files load unchanged (YAML 1.2 is a
// superset of JSON). Values can be overridden by environment variables.
type Config struct {
	// Broker connection settings.
	MQTTServer   string `yaml:"mqtt_server"`
	MQTTPort     int    `yaml:"mqtt_port"`
	MQTTUser     string `yaml:"mqtt_user"`
	MQTTPassword string `yaml:"mqtt_pwd"`
	MQTTClientID string `yaml:"mqtt_client_id"`
	MQTTQoS      int    `yaml:"mqtt_qos"`
	MQTTTLS      bool   `yaml:"mqtt_tls"`

	// Topic prefixes: inbound motion events and outbound preview references.
	BaseEventsTopic string `yaml:"mqtt_base_events_topic"`
	BaseGifsTopic   string `yaml:"mqtt_base_gifs_topic"`

	// Filesystem layout: working area for copies/artifacts and the
	// surveillance platform's date-partitioned recording root.
	WorkingFolder     string `yaml:"ffmpeg_working_folder"`
	SourceVideoFolder string `yaml:"zoneminder_events_video_folder"`

	// Cameras is the ordered set of per-camera profiles. Camera IDs must be
	// unique; the ID determines both the topic suffix and the recording
	// filename prefix lookup.
	Cameras []CameraProfile `yaml:"zoneminder_cameras"`

	// ReconnectIntervalSecs paces broker reconnect attempts while
	// disconnected. Default: 10.
	ReconnectIntervalSecs int `yaml:"reconnect_interval_secs"`

	// Workers and QueueSize bound the processing pool so a slow ffmpeg run
	// cannot block message delivery. Defaults: 2 workers, 16 queued events.
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`

	// KeepFailedSources retains the working copy of the source clip when
	// transcoding fails, for retry or inspection. Default false: the copy is
	// always removed, matching the historical behaviour.
	KeepFailedSources bool `yaml:"keep_failed_sources"`

	Journal JournalConfig `yaml:"journal"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// CameraProfile contains per-camera settings governing recording-path
// resolution and preview generation parameters.
type CameraProfile struct {
	// ID is the unique camera identifier. It is also the subscription topic
	// suffix and the key for inbound event routing.
	ID string `yaml:"id"`

	// EventVideoPrefix is prepended to the event identifier when building
	// the source recording filename.
	EventVideoPrefix string `yaml:"event_video_prefix"`

	// Scale is the preview pixel width. Height is computed by ffmpeg to
	// preserve aspect ratio.
	Scale int `yaml:"scale"`

	// SkipFirstNSecs is the seek offset into the clip before capture starts.
	SkipFirstNSecs int `yaml:"skip_first_n_secs"`

	// MaxLengthSecs caps the preview duration.
	MaxLengthSecs int `yaml:"max_length_secs"`
}

// JournalConfig contains settings for the SQLite processed-event journal.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MetricsConfig contains InfluxDB connection settings for pipeline metrics.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML (or JSON) file and applies
// environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. File values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MOTIONBRIDGE_KEY
// For example: MOTIONBRIDGE_MQTT_SERVER, MOTIONBRIDGE_MQTT_PWD
//
// Parameters:
//   - path: Path to the configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTTServer:            "localhost",
		MQTTPort:              1883,
		MQTTClientID:          "motionbridge",
		BaseEventsTopic:       "zoneminder/events",
		BaseGifsTopic:         "zoneminder/gifs",
		ReconnectIntervalSecs: 10,
		Workers:               2,
		QueueSize:             16,
		Journal: JournalConfig{
			Path:        "./data/motionbridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Metrics: MetricsConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Secrets (broker password, metrics token) should be supplied
// this way rather than in the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MOTIONBRIDGE_MQTT_SERVER"); v != "" {
		cfg.MQTTServer = v
	}
	if v := os.Getenv("MOTIONBRIDGE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTTPort = port
		}
	}
	if v := os.Getenv("MOTIONBRIDGE_MQTT_USER"); v != "" {
		cfg.MQTTUser = v
	}
	if v := os.Getenv("MOTIONBRIDGE_MQTT_PWD"); v != "" {
		cfg.MQTTPassword = v
	}
	if v := os.Getenv("MOTIONBRIDGE_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("MOTIONBRIDGE_METRICS_TOKEN"); v != "" {
		cfg.Metrics.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Malformed configuration fails fast at startup rather than mid-pipeline:
// every field the processing path depends on is checked here.
//
// Returns:
//   - error: Description of all validation failures, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.MQTTServer == "" {
		errs = append(errs, "mqtt_server is required")
	}
	if c.MQTTPort < 1 || c.MQTTPort > 65535 {
		errs = append(errs, "mqtt_port must be between 1 and 65535")
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		errs = append(errs, "mqtt_qos must be 0, 1, or 2")
	}
	if c.BaseEventsTopic == "" {
		errs = append(errs, "mqtt_base_events_topic is required")
	}
	if c.BaseGifsTopic == "" {
		errs = append(errs, "mqtt_base_gifs_topic is required")
	}
	if c.WorkingFolder == "" {
		errs = append(errs, "ffmpeg_working_folder is required")
	}
	if c.SourceVideoFolder == "" {
		errs = append(errs, "zoneminder_events_video_folder is required")
	}
	if len(c.Cameras) == 0 {
		errs = append(errs, "zoneminder_cameras must contain at least one camera")
	}

	seen := make(map[string]bool, len(c.Cameras))
	for i, cam := range c.Cameras {
		field := fmt.Sprintf("zoneminder_cameras[%d]", i)
		if cam.ID == "" {
			errs = append(errs, field+".id is required")
		} else if seen[cam.ID] {
			errs = append(errs, fmt.Sprintf("%s.id %q is not unique", field, cam.ID))
		}
		seen[cam.ID] = true
		if cam.Scale <= 0 {
			errs = append(errs, field+".scale must be positive")
		}
		if cam.SkipFirstNSecs < 0 {
			errs = append(errs, field+".skip_first_n_secs must not be negative")
		}
		if cam.MaxLengthSecs <= 0 {
			errs = append(errs, field+".max_length_secs must be positive")
		}
	}

	if c.ReconnectIntervalSecs <= 0 {
		errs = append(errs, "reconnect_interval_secs must be positive")
	}
	if c.Workers <= 0 {
		errs = append(errs, "workers must be positive")
	}
	if c.QueueSize <= 0 {
		errs = append(errs, "queue_size must be positive")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when journal is enabled")
	}
	if c.Metrics.Enabled {
		if c.Metrics.URL == "" {
			errs = append(errs, "metrics.url is required when metrics are enabled")
		}
		if c.Metrics.Bucket == "" {
			errs = append(errs, "metrics.bucket is required when metrics are enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Profile returns the camera profile for the given camera identifier.
// There is no default profile: an unknown identifier is a processing failure.
func (c *Config) Profile(cameraID string) (CameraProfile, bool) {
	for _, cam := range c.Cameras {
		if cam.ID == cameraID {
			return cam, true
		}
	}
	return CameraProfile{}, false
}

// ReconnectInterval returns the broker reconnect pacing as a Duration.
func (c *Config) ReconnectInterval() time.Duration {
	return time.Duration(c.ReconnectIntervalSecs) * time.Second
}
