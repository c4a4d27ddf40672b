package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/careerflow/internal/interview"
)

func TestClassifyCaptureError(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   interview.PermissionKind
	}{
		{"denied", "default: Permission denied", interview.PermissionDenied},
		{"not permitted", "Operation not permitted", interview.PermissionDenied},
		{"missing device", "hw:1: No such file or directory", interview.NoMicrophone},
		{"no device", "No such device", interview.NoMicrophone},
		{"busy", "Device or resource busy", interview.NoMicrophone},
		{"other", "Unknown input format: 'pulse'", interview.PermissionOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyCaptureError(errors.New("exit status 1"), tt.stderr)
			if got.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.want)
			}
			if got.Reason == "" {
				t.Error("Reason should not be empty")
			}
		})
	}
}

func TestClassifyCaptureError_OtherUsesLastStderrLine(t *testing.T) {
	got := classifyCaptureError(errors.New("exit status 1"), "line one\nUnknown input format: 'pulse'\n")
	if got.Reason != "Unknown input format: 'pulse'" {
		t.Errorf("Reason = %q", got.Reason)
	}
}

func TestFFmpegCapture_StartReadAndStop(t *testing.T) {
	script := writeScript(t, "capture.sh", "#!/usr/bin/env bash\nprintf 'hello'\nsleep 2\n")
	capture := NewFFmpegCapture(CaptureConfig{Command: script, StartupGrace: 50 * time.Millisecond})

	src, err := capture.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	buf := make([]byte, 8)
	n, _ := src.Read(buf)
	if !strings.Contains(string(buf[:n]), "hello") {
		t.Fatalf("unexpected bytes: %q", buf[:n])
	}
	if err := src.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := src.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestFFmpegCapture_PermissionDenied(t *testing.T) {
	script := writeScript(t, "denied.sh", "#!/usr/bin/env bash\necho 'default: Permission denied' 1>&2\nexit 1\n")
	capture := NewFFmpegCapture(CaptureConfig{Command: script, StartupGrace: time.Second})

	_, err := capture.Start(context.Background())
	var perm *interview.PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
	if perm.Kind != interview.PermissionDenied {
		t.Errorf("Kind = %q, want denied", perm.Kind)
	}
}

func TestFFmpegCapture_Available(t *testing.T) {
	capture := NewFFmpegCapture(CaptureConfig{Command: filepath.Join(t.TempDir(), "missing-ffmpeg")})
	if err := capture.Available(); err == nil {
		t.Error("expected missing binary to be unavailable")
	}
}

func writeScript(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o700); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}
