package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/careerflow/internal/interview"
)

// AudioSource is a live PCM stream from the microphone.
type AudioSource interface {
	io.Reader
	Stop() error
}

// Capturer opens the microphone.
type Capturer interface {
	// Available returns an error when capture can never work on this
	// system, for example because the capture binary is missing.
	Available() error
	Start(ctx context.Context) (AudioSource, error)
}

// CaptureConfig selects the ffmpeg input.
type CaptureConfig struct {
	Command     string
	InputFormat string
	InputDevice string
	SampleRate  int
	Channels    int

	// StartupGrace is how long ffmpeg must survive before capture counts as
	// started. Device and permission failures surface within this window.
	StartupGrace time.Duration
}

// FFmpegCapture records signed 16-bit little-endian PCM through an ffmpeg
// subprocess.
type FFmpegCapture struct {
	cfg CaptureConfig
}

// NewFFmpegCapture fills in defaults for 16 kHz mono capture from the
// default PulseAudio source.
func NewFFmpegCapture(cfg CaptureConfig) *FFmpegCapture {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.StartupGrace <= 0 {
		cfg.StartupGrace = 250 * time.Millisecond
	}
	return &FFmpegCapture{cfg: cfg}
}

func (c *FFmpegCapture) Available() error {
	if _, err := exec.LookPath(c.cfg.Command); err != nil {
		return fmt.Errorf("%s not found: %w", c.cfg.Command, err)
	}
	return nil
}

// Start launches ffmpeg and waits out the startup grace period. Failures to
// open the device are returned as *interview.PermissionError.
func (c *FFmpegCapture) Start(ctx context.Context) (AudioSource, error) {
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", c.cfg.InputFormat,
		"-i", c.cfg.InputDevice,
		"-ac", strconv.Itoa(c.cfg.Channels),
		"-ar", strconv.Itoa(c.cfg.SampleRate),
		"-f", "s16le",
		"-",
	}

	cmd := exec.CommandContext(ctx, c.cfg.Command, args...)
	stderr := &syncBuffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, classifyCaptureError(err, "")
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	timer := time.NewTimer(c.cfg.StartupGrace)
	defer timer.Stop()

	select {
	case err := <-waitErr:
		if err == nil {
			err = errors.New("ffmpeg exited before capture started")
		}
		return nil, classifyCaptureError(err, stderr.String())
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		return nil, ctx.Err()
	case <-timer.C:
	}

	return &ffmpegSource{
		stdout:  stdout,
		stderr:  stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

type ffmpegSource struct {
	stdout  io.ReadCloser
	stderr  *syncBuffer
	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *ffmpegSource) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

// Stop interrupts ffmpeg, killing it if it does not exit promptly.
func (s *ffmpegSource) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeExit(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			if err, ok := <-s.waitErr; ok {
				s.stopErr = normalizeExit(err)
			}
		}

		if err := s.stdout.Close(); err != nil && !errors.Is(err, os.ErrClosed) && s.stopErr == nil {
			s.stopErr = err
		}
		if s.stopErr != nil {
			if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
				s.stopErr = fmt.Errorf("%w: %s", s.stopErr, msg)
			}
		}
	})
	return s.stopErr
}

func normalizeExit(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// classifyCaptureError maps ffmpeg diagnostics onto the permission kinds
// the UI distinguishes.
func classifyCaptureError(err error, stderr string) *interview.PermissionError {
	detail := strings.TrimSpace(stderr)
	haystack := detail
	if err != nil {
		haystack += " " + err.Error()
	}

	perm := &interview.PermissionError{Kind: interview.PermissionOther, Err: err}
	switch {
	case containsAny(haystack, "Permission denied", "Operation not permitted"):
		perm.Kind = interview.PermissionDenied
		perm.Reason = "access to the capture device was denied"
	case containsAny(haystack, "No such file or directory", "No such device", "Device or resource busy", "Connection refused"):
		perm.Kind = interview.NoMicrophone
		perm.Reason = "no usable capture device"
	default:
		perm.Reason = lastLine(detail)
		if perm.Reason == "" {
			perm.Reason = "ffmpeg could not open the microphone"
		}
	}
	return perm
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// syncBuffer is a bytes.Buffer that may be written by exec's copier while
// being read from another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
