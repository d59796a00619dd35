package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
mqtt_server: "broker.local"
mqtt_port: 1883
mqtt_user: "zm"
mqtt_pwd: "secret"
mqtt_base_events_topic: "zoneminder/events"
mqtt_base_gifs_topic: "zoneminder/gifs"
ffmpeg_working_folder: "/tmp/work"
zoneminder_events_video_folder: "/var/cache/zoneminder/events"
zoneminder_cameras:
  - id: "cam1"
    event_video_prefix: "cam1-"
    scale: 480
    skip_first_n_secs: 2
    max_length_secs: 8
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTTServer != "broker.local" {
		t.Errorf("MQTTServer = %q, want %q", cfg.MQTTServer, "broker.local")
	}
	if cfg.WorkingFolder != "/tmp/work" {
		t.Errorf("WorkingFolder = %q, want %q", cfg.WorkingFolder, "/tmp/work")
	}
	if len(cfg.Cameras) != 1 || cfg.Cameras[0].Scale != 480 {
		t.Errorf("Cameras = %+v, want one camera with scale 480", cfg.Cameras)
	}
	if cfg.ReconnectIntervalSecs != 10 {
		t.Errorf("ReconnectIntervalSecs = %d, want default 10", cfg.ReconnectIntervalSecs)
	}
}

func TestLoad_JSONDocument(t *testing.T) {
	// Historical deployments use flat JSON; YAML 1.2 parses it unchanged.
	content := `{
  "mqtt_server": "10.0.0.5",
  "mqtt_port": 1883,
  "mqtt_user": "zm",
  "mqtt_pwd": "pw",
  "mqtt_base_events_topic": "zoneminder/events",
  "mqtt_base_gifs_topic": "zoneminder/gifs",
  "ffmpeg_working_folder": "/tmp/gifs",
  "zoneminder_events_video_folder": "/zm/events",
  "zoneminder_cameras": [
    {"id": "garden", "event_video_prefix": "garden-", "scale": 320, "skip_first_n_secs": 1, "max_length_secs": 5}
  ]
}`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MQTTServer != "10.0.0.5" {
		t.Errorf("MQTTServer = %q, want %q", cfg.MQTTServer, "10.0.0.5")
	}
	if cfg.Cameras[0].EventVideoPrefix != "garden-" {
		t.Errorf("EventVideoPrefix = %q, want %q", cfg.Cameras[0].EventVideoPrefix, "garden-")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
mqtt_server: ""
ffmpeg_working_folder: "/tmp/work"
zoneminder_events_video_folder: "/zm/events"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected validation error, got nil")
	}
}

func validTestConfig() *Config {
	cfg := defaultConfig()
	cfg.WorkingFolder = "/tmp/work"
	cfg.SourceVideoFolder = "/zm/events"
	cfg.Cameras = []CameraProfile{
		{ID: "cam1", EventVideoPrefix: "cam1-", Scale: 480, SkipFirstNSecs: 2, MaxLengthSecs: 8},
	}
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing broker",
			mutate:  func(c *Config) { c.MQTTServer = "" },
			wantErr: true,
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.MQTTPort = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTTQoS = 3 },
			wantErr: true,
		},
		{
			name:    "missing events topic",
			mutate:  func(c *Config) { c.BaseEventsTopic = "" },
			wantErr: true,
		},
		{
			name:    "missing working folder",
			mutate:  func(c *Config) { c.WorkingFolder = "" },
			wantErr: true,
		},
		{
			name:    "no cameras",
			mutate:  func(c *Config) { c.Cameras = nil },
			wantErr: true,
		},
		{
			name: "duplicate camera id",
			mutate: func(c *Config) {
				c.Cameras = append(c.Cameras, c.Cameras[0])
			},
			wantErr: true,
		},
		{
			name: "zero scale",
			mutate: func(c *Config) {
				c.Cameras[0].Scale = 0
			},
			wantErr: true,
		},
		{
			name: "negative skip",
			mutate: func(c *Config) {
				c.Cameras[0].SkipFirstNSecs = -1
			},
			wantErr: true,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "zero reconnect interval",
			mutate:  func(c *Config) { c.ReconnectIntervalSecs = 0 },
			wantErr: true,
		},
		{
			name: "journal enabled without path",
			mutate: func(c *Config) {
				c.Journal.Enabled = true
				c.Journal.Path = ""
			},
			wantErr: true,
		},
		{
			name: "metrics enabled without url",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Bucket = "events"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("MOTIONBRIDGE_MQTT_SERVER", "mqtt.example.com")
	t.Setenv("MOTIONBRIDGE_MQTT_PORT", "8883")
	t.Setenv("MOTIONBRIDGE_MQTT_USER", "testuser")
	t.Setenv("MOTIONBRIDGE_MQTT_PWD", "testpass")
	t.Setenv("MOTIONBRIDGE_JOURNAL_PATH", "/custom/journal.db")
	t.Setenv("MOTIONBRIDGE_METRICS_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.MQTTServer != "mqtt.example.com" {
		t.Errorf("MQTTServer = %q, want %q", cfg.MQTTServer, "mqtt.example.com")
	}
	if cfg.MQTTPort != 8883 {
		t.Errorf("MQTTPort = %d, want 8883", cfg.MQTTPort)
	}
	if cfg.MQTTUser != "testuser" {
		t.Errorf("MQTTUser = %q, want %q", cfg.MQTTUser, "testuser")
	}
	if cfg.MQTTPassword != "testpass" {
		t.Errorf("MQTTPassword = %q, want %q", cfg.MQTTPassword, "testpass")
	}
	if cfg.Journal.Path != "/custom/journal.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "/custom/journal.db")
	}
	if cfg.Metrics.Token != "secret-token" {
		t.Errorf("Metrics.Token = %q, want %q", cfg.Metrics.Token, "secret-token")
	}
}

func TestConfig_Profile(t *testing.T) {
	cfg := validTestConfig()

	profile, ok := cfg.Profile("cam1")
	if !ok {
		t.Fatal("Profile(cam1) not found")
	}
	if profile.EventVideoPrefix != "cam1-" {
		t.Errorf("EventVideoPrefix = %q, want %q", profile.EventVideoPrefix, "cam1-")
	}

	if _, ok := cfg.Profile("unknown"); ok {
		t.Error("Profile(unknown) should not be found")
	}
}

func TestConfig_ReconnectInterval(t *testing.T) {
	cfg := validTestConfig()
	if got := cfg.ReconnectInterval(); got != 10*time.Second {
		t.Errorf("ReconnectInterval() = %v, want 10s", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.MQTTPort != 1883 {
		t.Errorf("defaultConfig MQTTPort = %d, want 1883", cfg.MQTTPort)
	}
	if cfg.Workers != 2 {
		t.Errorf("defaultConfig Workers = %d, want 2", cfg.Workers)
	}
	if cfg.MQTTClientID == "" {
		t.Error("defaultConfig should have non-empty MQTTClientID")
	}
}
