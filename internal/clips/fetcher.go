package clips

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nerrad567/motionbridge/internal/infrastructure/config"
)

// dateDirLayout is the surveillance platform's date-partition format.
const dateDirLayout = "2006-01-02"

// sourceExt is the container extension the platform records clips with.
const sourceExt = ".mp4"

// filePermissions is the permission mode for working copies.
const filePermissions = 0600

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Fetcher resolves and copies recorded event clips into the working area.
//
// The platform stores clips under date-partitioned directories keyed by the
// recording date. Notifications normally arrive moments after recording, so
// the directory for the notification's receipt date is tried first; if the
// file is absent there (processing delayed across midnight), the previous
// day's directory is tried before giving up.
type Fetcher struct {
	sourceRoot string
	workingDir string
	logger     Logger
}

// NewFetcher creates a Fetcher reading from sourceRoot and writing working
// copies into workingDir.
func NewFetcher(sourceRoot, workingDir string) *Fetcher {
	return &Fetcher{
		sourceRoot: sourceRoot,
		workingDir: workingDir,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the fetcher.
func (f *Fetcher) SetLogger(logger Logger) {
	f.logger = logger
}

// WorkPath returns the deterministic working-copy path for an event.
func (f *Fetcher) WorkPath(eventID string) string {
	return filepath.Join(f.workingDir, eventID+sourceExt)
}

// sourcePath builds the platform's recording path for an event on a given day.
func (f *Fetcher) sourcePath(cam config.CameraProfile, eventID string, day time.Time) string {
	return filepath.Join(f.sourceRoot, day.Format(dateDirLayout), cam.EventVideoPrefix+eventID+sourceExt)
}

// Fetch copies the recorded clip for the given event into the working
// directory and returns the path of the copy.
//
// Parameters:
//   - cam: Camera profile providing the recording filename prefix
//   - eventID: Opaque event identifier assigned by the platform
//   - receivedAt: Time the notification was received; determines which date
//     directories are searched
//
// Returns:
//   - string: Path of the working copy (<working-dir>/<event-id>.mp4)
//   - error: ErrSourceNotFound if no date directory holds the clip, or a
//     wrapped I/O error if the copy fails
func (f *Fetcher) Fetch(cam config.CameraProfile, eventID string, receivedAt time.Time) (string, error) {
	dest := f.WorkPath(eventID)

	// Receipt date first, previous day as the midnight-boundary fallback.
	candidates := []string{
		f.sourcePath(cam, eventID, receivedAt),
		f.sourcePath(cam, eventID, receivedAt.AddDate(0, 0, -1)),
	}

	var source string
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			source = candidate
			break
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: stat %s: %w", ErrCopyFailed, candidate, err)
		}
	}
	if source == "" {
		return "", fmt.Errorf("%w: event %s camera %s (searched %d date directories)",
			ErrSourceNotFound, eventID, cam.ID, len(candidates))
	}

	f.logger.Info("copying event clip",
		"event_id", eventID,
		"camera", cam.ID,
		"source", source,
		"dest", dest,
	)

	if err := copyFile(source, dest); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}

	return dest, nil
}

// copyFile copies src to dst, truncating dst if it exists.
// The source file is never modified.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close() //nolint:errcheck // Read-only handle

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if err != nil {
		return fmt.Errorf("creating working copy: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("copying clip data: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing working copy: %w", err)
	}

	return nil
}
