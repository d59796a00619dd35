package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("MOTIONBRIDGE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_ValidationFailure verifies run fails when required settings are
// missing from the config file.
func TestRun_ValidationFailure(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
mqtt_server: "127.0.0.1"
mqtt_port: 1883
# No topics, folders, or cameras configured.
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("MOTIONBRIDGE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when validation fails")
	}
}

// TestRun_ShutdownWithUnreachableBroker verifies run retries an unreachable
// broker until cancelled, then shuts down cleanly.
func TestRun_ShutdownWithUnreachableBroker(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
mqtt_server: "127.0.0.1"
mqtt_port: 19999
mqtt_base_events_topic: "zoneminder/events"
mqtt_base_gifs_topic: "zoneminder/gifs"
ffmpeg_working_folder: "` + filepath.Join(tmpDir, "work") + `"
zoneminder_events_video_folder: "` + filepath.Join(tmpDir, "events") + `"
reconnect_interval_secs: 1
zoneminder_cameras:
  - id: cam1
    event_video_prefix: "cam1-"
    scale: 480
    skip_first_n_secs: 2
    max_length_secs: 8
journal:
  enabled: true
  path: "` + filepath.Join(tmpDir, "journal.db") + `"
  wal_mode: true
  busy_timeout: 5
logging:
  level: error
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("MOTIONBRIDGE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Errorf("run() error = %v, want nil on cancellation", err)
	}
}

// TestGetConfigPath verifies the resolution order: argument, environment,
// default.
func TestGetConfigPath(t *testing.T) {
	t.Setenv("MOTIONBRIDGE_CONFIG", "")

	if got := getConfigPath(nil); got != defaultConfigPath {
		t.Errorf("getConfigPath(nil) = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("MOTIONBRIDGE_CONFIG", "/env/config.yaml")
	if got := getConfigPath(nil); got != "/env/config.yaml" {
		t.Errorf("getConfigPath(nil) = %q, want env override", got)
	}

	if got := getConfigPath([]string{"/arg/config.yaml"}); got != "/arg/config.yaml" {
		t.Errorf("getConfigPath(arg) = %q, want argument to win", got)
	}
}
