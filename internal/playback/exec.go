package playback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Runner plays a local audio file and returns when playback ends or ctx is
// cancelled.
type Runner func(ctx context.Context, path string) error

// Exec downloads clips over HTTP and plays them with an external player.
type Exec struct {
	httpClient *http.Client
	run        Runner
	logger     *slog.Logger
	cacheDir   string

	mu      sync.Mutex
	seq     uint64
	url     string
	current *Clip
	cancel  context.CancelFunc

	cacheMu   sync.Mutex
	cache     map[string]string
	downloads singleflight.Group
}

// ExecOption configures an Exec controller.
type ExecOption func(*Exec)

// WithRunner replaces the player invocation.
func WithRunner(r Runner) ExecOption {
	return func(e *Exec) { e.run = r }
}

// WithHTTPClient sets the client used to fetch clips.
func WithHTTPClient(c *http.Client) ExecOption {
	return func(e *Exec) { e.httpClient = c }
}

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) ExecOption {
	return func(e *Exec) { e.logger = l }
}

// CommandRunner runs player with args followed by the clip path.
func CommandRunner(player string, args ...string) Runner {
	return func(ctx context.Context, path string) error {
		cmdArgs := append(append([]string(nil), args...), path)
		cmd := exec.CommandContext(ctx, player, cmdArgs...)
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%s: %w", player, err)
		}
		return nil
	}
}

// DefaultRunner plays clips with ffplay without opening a window.
func DefaultRunner() Runner {
	return CommandRunner("ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet")
}

// NewExec creates a controller with a private download cache directory.
func NewExec(opts ...ExecOption) (*Exec, error) {
	dir, err := os.MkdirTemp("", "careerflow-audio-")
	if err != nil {
		return nil, fmt.Errorf("create audio cache: %w", err)
	}
	e := &Exec{
		httpClient: http.DefaultClient,
		run:        DefaultRunner(),
		logger:     slog.New(slog.DiscardHandler),
		cacheDir:   dir,
		cache:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Exec) Play(url string) *Clip {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.url = url
	return e.startLocked()
}

func (e *Exec) Replay() (*Clip, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.url == "" {
		return nil, ErrNoClip
	}
	if e.current != nil && e.current.Playing() {
		return nil, ErrPlaying
	}
	return e.startLocked(), nil
}

func (e *Exec) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.url = ""
}

// Close stops playback and removes downloaded clips.
func (e *Exec) Close() error {
	e.Stop()
	return os.RemoveAll(e.cacheDir)
}

func (e *Exec) stopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.current = nil
}

func (e *Exec) startLocked() *Clip {
	e.seq++
	clip := newClip(e.seq, e.url)
	ctx, cancel := context.WithCancel(context.Background())
	e.current = clip
	e.cancel = cancel

	go func() {
		defer cancel()
		err := e.playClip(ctx, clip.URL)
		if ctx.Err() != nil {
			err = nil
		}
		if err != nil {
			e.logger.Warn("clip playback failed", "url", clip.URL, "seq", clip.Seq, "error", err)
		}
		clip.finish(err)
	}()
	return clip
}

func (e *Exec) playClip(ctx context.Context, url string) error {
	path, err := e.fetch(ctx, url)
	if err != nil {
		return err
	}
	return e.run(ctx, path)
}

// fetch returns the local path of url, downloading it at most once per
// controller. Overlapping calls for the same url share one download, which
// is detached from any single caller's cancellation.
func (e *Exec) fetch(ctx context.Context, url string) (string, error) {
	if path, ok := e.cached(url); ok {
		return path, nil
	}

	ch := e.downloads.DoChan(url, func() (any, error) {
		if path, ok := e.cached(url); ok {
			return path, nil
		}
		path, err := e.download(context.WithoutCancel(ctx), url)
		if err != nil {
			return "", err
		}
		e.cacheMu.Lock()
		e.cache[url] = path
		e.cacheMu.Unlock()
		return path, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (e *Exec) cached(url string) (string, bool) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	path, ok := e.cache[url]
	return path, ok
}

func (e *Exec) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build clip request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch clip: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch clip: unexpected status %d", resp.StatusCode)
	}

	sum := sha256.Sum256([]byte(url))
	path := filepath.Join(e.cacheDir, hex.EncodeToString(sum[:8])+filepath.Ext(req.URL.Path))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create clip file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("download clip: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", errors.Join(fmt.Errorf("write clip: %w", err), os.Remove(path))
	}
	return path, nil
}
