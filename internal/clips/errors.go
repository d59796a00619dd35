package clips

import "errors"

// Domain-specific errors for clip handling.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrSourceNotFound is returned when the recorded clip cannot be located
	// in the expected date directories.
	ErrSourceNotFound = errors.New("clips: source clip not found")

	// ErrCopyFailed is returned when copying the source clip into the
	// working directory fails.
	ErrCopyFailed = errors.New("clips: copying source clip failed")

	// ErrTranscodeStart is returned when the transcoding tool cannot be
	// started at all (missing binary, bad permissions).
	ErrTranscodeStart = errors.New("clips: starting transcoder failed")
)
