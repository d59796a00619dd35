package clips

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	req := ConvertRequest{
		Input:    "/tmp/work/123.mp4",
		Output:   "/tmp/work/123.gif",
		Scale:    480,
		SkipSecs: 2,
		MaxSecs:  8,
	}

	want := []string{
		"-stats",
		"-i", "/tmp/work/123.mp4",
		"-vf", "fps=15,scale=480:-1:flags=lanczos",
		"-ss", "00:00:02",
		"-t", "8",
		"-y",
		"/tmp/work/123.gif",
	}

	if got := BuildArgs(req); !reflect.DeepEqual(got, want) {
		t.Errorf("BuildArgs() = %v, want %v", got, want)
	}
}

// TestBuildArgs_ParameterIsolation verifies that changing one camera
// parameter changes exactly the corresponding invocation argument.
func TestBuildArgs_ParameterIsolation(t *testing.T) {
	base := ConvertRequest{
		Input:    "/tmp/work/123.mp4",
		Output:   "/tmp/work/123.gif",
		Scale:    480,
		SkipSecs: 2,
		MaxSecs:  8,
	}
	baseArgs := BuildArgs(base)

	tests := []struct {
		name     string
		mutate   func(r *ConvertRequest)
		wantDiff []int // indices into the argv expected to change
	}{
		{
			name:     "scale changes only the filter argument",
			mutate:   func(r *ConvertRequest) { r.Scale = 320 },
			wantDiff: []int{4},
		},
		{
			name:     "skip changes only the seek argument",
			mutate:   func(r *ConvertRequest) { r.SkipSecs = 5 },
			wantDiff: []int{6},
		},
		{
			name:     "max length changes only the duration argument",
			mutate:   func(r *ConvertRequest) { r.MaxSecs = 12 },
			wantDiff: []int{8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			args := BuildArgs(req)

			if len(args) != len(baseArgs) {
				t.Fatalf("argv length changed: %d, want %d", len(args), len(baseArgs))
			}

			diffSet := make(map[int]bool, len(tt.wantDiff))
			for _, i := range tt.wantDiff {
				diffSet[i] = true
			}

			for i := range args {
				changed := args[i] != baseArgs[i]
				if changed != diffSet[i] {
					t.Errorf("argv[%d] = %q (base %q): changed=%v, want changed=%v",
						i, args[i], baseArgs[i], changed, diffSet[i])
				}
			}
		})
	}
}

func TestFormatSeek(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00:00"},
		{2, "00:00:02"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3605, "01:00:05"},
	}

	for _, tt := range tests {
		if got := FormatSeek(tt.secs); got != tt.want {
			t.Errorf("FormatSeek(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestArtifactName(t *testing.T) {
	if got := ArtifactName("123"); got != "123.gif" {
		t.Errorf("ArtifactName(123) = %q, want %q", got, "123.gif")
	}
}

// writeWorkCopy creates a fake working copy for conversion tests.
func writeWorkCopy(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "123.mp4")
	if err := os.WriteFile(path, []byte("clip"), 0600); err != nil {
		t.Fatalf("writing work copy: %v", err)
	}
	return path
}

func TestConvert_SuccessRemovesSource(t *testing.T) {
	input := writeWorkCopy(t)

	tr := NewTranscoder(false)
	tr.SetBinary("true") // stand-in for ffmpeg: exits 0, produces nothing

	code, err := tr.Convert(context.Background(), ConvertRequest{
		Input:    input,
		Output:   filepath.Join(filepath.Dir(input), "123.gif"),
		Scale:    480,
		SkipSecs: 2,
		MaxSecs:  8,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if code != 0 {
		t.Errorf("Convert() exit code = %d, want 0", code)
	}

	if _, statErr := os.Stat(input); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("source copy should be removed after successful conversion")
	}
}

func TestConvert_FailureRemovesSourceByDefault(t *testing.T) {
	input := writeWorkCopy(t)

	tr := NewTranscoder(false)
	tr.SetBinary("false") // stand-in for ffmpeg: exits 1

	code, err := tr.Convert(context.Background(), ConvertRequest{Input: input, Output: "out.gif", Scale: 480, MaxSecs: 8})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if code == 0 {
		t.Error("Convert() exit code = 0, want non-zero")
	}

	if _, statErr := os.Stat(input); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("source copy should be removed after failed conversion by default")
	}
}

func TestConvert_FailureKeepsSourceWhenConfigured(t *testing.T) {
	input := writeWorkCopy(t)

	tr := NewTranscoder(true)
	tr.SetBinary("false")

	code, err := tr.Convert(context.Background(), ConvertRequest{Input: input, Output: "out.gif", Scale: 480, MaxSecs: 8})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if code == 0 {
		t.Error("Convert() exit code = 0, want non-zero")
	}

	if _, statErr := os.Stat(input); statErr != nil {
		t.Errorf("source copy should be kept for inspection: %v", statErr)
	}
}

func TestConvert_MissingBinary(t *testing.T) {
	input := writeWorkCopy(t)

	tr := NewTranscoder(false)
	tr.SetBinary("/nonexistent/ffmpeg")

	_, err := tr.Convert(context.Background(), ConvertRequest{Input: input, Output: "out.gif", Scale: 480, MaxSecs: 8})
	if !errors.Is(err, ErrTranscodeStart) {
		t.Errorf("Convert() error = %v, want ErrTranscodeStart", err)
	}
}
