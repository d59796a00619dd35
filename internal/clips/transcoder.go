package clips

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Transcoding constants.
const (
	// defaultFFmpegBinary is the transcoding tool invoked for conversions.
	defaultFFmpegBinary = "ffmpeg"

	// outputFrameRate is the fixed preview frame rate.
	outputFrameRate = 15

	// artifactExt is the extension of generated preview artifacts.
	artifactExt = ".gif"
)

// ConvertRequest describes one clip-to-preview conversion.
type ConvertRequest struct {
	// Input is the path of the working copy produced by the Fetcher.
	Input string

	// Output is the target artifact path.
	Output string

	// Scale is the target pixel width; height is derived by ffmpeg to
	// preserve aspect ratio.
	Scale int

	// SkipSecs is the seek offset into the clip, in seconds.
	SkipSecs int

	// MaxSecs caps the output duration, in seconds.
	MaxSecs int
}

// Transcoder converts working copies of event clips into GIF previews by
// invoking the external ffmpeg tool.
//
// Source-copy lifecycle: the working copy is removed after a successful
// conversion. On failure it is also removed unless keepFailedSources is set,
// which retains it for retry or inspection.
type Transcoder struct {
	binary            string
	keepFailedSources bool
	logger            Logger
}

// NewTranscoder creates a Transcoder using the ffmpeg binary found on PATH.
func NewTranscoder(keepFailedSources bool) *Transcoder {
	return &Transcoder{
		binary:            defaultFFmpegBinary,
		keepFailedSources: keepFailedSources,
		logger:            noopLogger{},
	}
}

// SetLogger sets the logger for the transcoder.
func (t *Transcoder) SetLogger(logger Logger) {
	t.logger = logger
}

// SetBinary overrides the transcoding tool path. Used by tests and by
// deployments where ffmpeg is not on PATH.
func (t *Transcoder) SetBinary(binary string) {
	t.binary = binary
}

// ArtifactName returns the deterministic artifact filename for an event.
// This is the filename published to consumers, relative to the shared
// working directory.
func ArtifactName(eventID string) string {
	return eventID + artifactExt
}

// BuildArgs returns the ffmpeg argument list for a conversion.
//
// The invocation is a pure function of the request: fixed 15 fps output,
// lanczos rescale to the requested width with derived height, HH:MM:SS seek
// offset, hard duration cap, and overwrite of any previous artifact at the
// same path.
func BuildArgs(req ConvertRequest) []string {
	return []string{
		"-stats",
		"-i", req.Input,
		"-vf", fmt.Sprintf("fps=%d,scale=%d:-1:flags=lanczos", outputFrameRate, req.Scale),
		"-ss", FormatSeek(req.SkipSecs),
		"-t", strconv.Itoa(req.MaxSecs),
		"-y",
		req.Output,
	}
}

// FormatSeek formats a seek offset in seconds as HH:MM:SS.
func FormatSeek(secs int) string {
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// Convert runs the transcoding tool for the given request and returns its
// exit status.
//
// The working copy named by req.Input is removed before Convert returns,
// regardless of outcome, unless the transcoder was configured to keep failed
// sources and the conversion did not succeed.
//
// Parameters:
//   - ctx: Context for cancellation; a cancelled context kills the tool
//   - req: Conversion parameters
//
// Returns:
//   - int: The tool's exit status (0 on success)
//   - error: ErrTranscodeStart if the tool could not be invoked at all
func (t *Transcoder) Convert(ctx context.Context, req ConvertRequest) (int, error) {
	args := BuildArgs(req)

	t.logger.Info("converting clip to preview",
		"input", req.Input,
		"output", req.Output,
		"scale", req.Scale,
		"skip_secs", req.SkipSecs,
		"max_secs", req.MaxSecs,
	)

	cmd := exec.CommandContext(ctx, t.binary, args...)

	// ffmpeg writes progress and diagnostics to stderr.
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			t.removeSource(req.Input, false)
			return -1, fmt.Errorf("%w: %w", ErrTranscodeStart, err)
		}
	}

	if exitCode == 0 {
		t.logger.Debug("transcoder output", "stderr", stderr.String())
	} else {
		t.logger.Error("transcoder exited with failure",
			"exit_code", exitCode,
			"stderr", stderr.String(),
		)
	}

	t.removeSource(req.Input, exitCode == 0)

	return exitCode, nil
}

// removeSource deletes the working copy according to the retention policy.
func (t *Transcoder) removeSource(path string, succeeded bool) {
	if !succeeded && t.keepFailedSources {
		t.logger.Warn("keeping source copy of failed conversion", "path", path)
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		t.logger.Warn("removing source copy failed", "path", path, "error", err)
	}
}
