package playback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func waitDone(t *testing.T, c *Clip) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("clip %d did not finish", c.Seq)
	}
}

func audioServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/audio/missing.mp3" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ID3fake"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestExec(t *testing.T, run Runner) *Exec {
	t.Helper()
	e, err := NewExec(WithRunner(run))
	if err != nil {
		t.Fatalf("NewExec: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestExec_PlayFetchesAndRuns(t *testing.T) {
	var hits atomic.Int32
	srv := audioServer(t, &hits)

	var played atomic.Value
	e := newTestExec(t, func(ctx context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		played.Store(string(data))
		return nil
	})

	clip := e.Play(srv.URL + "/audio/S1_q1.mp3")
	waitDone(t, clip)
	if err := clip.Err(); err != nil {
		t.Fatalf("clip error: %v", err)
	}
	if played.Load() != "ID3fake" {
		t.Errorf("played %v, want downloaded bytes", played.Load())
	}

	replay, err := e.Replay()
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	waitDone(t, replay)
	if replay.Seq <= clip.Seq {
		t.Errorf("replay seq %d should be greater than %d", replay.Seq, clip.Seq)
	}
	if hits.Load() != 1 {
		t.Errorf("clip fetched %d times, want 1", hits.Load())
	}
}

func TestExec_PlayStopsPrevious(t *testing.T) {
	var hits atomic.Int32
	srv := audioServer(t, &hits)

	e := newTestExec(t, func(ctx context.Context, path string) error {
		<-ctx.Done()
		return ctx.Err()
	})

	first := e.Play(srv.URL + "/audio/S1_q1.mp3")
	second := e.Play(srv.URL + "/audio/S1_q2.mp3")
	waitDone(t, first)
	if first.Err() != nil {
		t.Errorf("stopped clip should have no error, got %v", first.Err())
	}
	if !second.Playing() {
		t.Error("second clip should still be playing")
	}
	if _, err := e.Replay(); !errors.Is(err, ErrPlaying) {
		t.Errorf("Replay while playing = %v, want ErrPlaying", err)
	}

	e.Stop()
	waitDone(t, second)
	if _, err := e.Replay(); !errors.Is(err, ErrNoClip) {
		t.Errorf("Replay after Stop = %v, want ErrNoClip", err)
	}
}

func TestExec_FetchFailureIsClipError(t *testing.T) {
	var hits atomic.Int32
	srv := audioServer(t, &hits)

	e := newTestExec(t, func(context.Context, string) error { return nil })
	clip := e.Play(srv.URL + "/audio/missing.mp3")
	waitDone(t, clip)
	if clip.Err() == nil {
		t.Fatal("expected error for missing clip")
	}
}

func TestExec_ReplayWithoutClip(t *testing.T) {
	e := newTestExec(t, func(context.Context, string) error { return nil })
	if _, err := e.Replay(); !errors.Is(err, ErrNoClip) {
		t.Fatalf("Replay = %v, want ErrNoClip", err)
	}
}

func TestNop(t *testing.T) {
	var n Nop
	if _, err := n.Replay(); !errors.Is(err, ErrNoClip) {
		t.Fatalf("Replay = %v, want ErrNoClip", err)
	}
	clip := n.Play("http://localhost/audio/a.mp3")
	if clip.Playing() {
		t.Error("Nop clips complete immediately")
	}
	if _, err := n.Replay(); err != nil {
		t.Errorf("Replay after Play: %v", err)
	}
	n.Stop()
	if _, err := n.Replay(); !errors.Is(err, ErrNoClip) {
		t.Errorf("Replay after Stop = %v, want ErrNoClip", err)
	}
}

func TestExec_OverlappingFetchesShareOneDownload(t *testing.T) {
	var hits atomic.Int32
	gate := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-gate
		w.Write([]byte("ID3fake"))
	}))
	t.Cleanup(srv.Close)
	e := newTestExec(t, func(context.Context, string) error { return nil })
	url := srv.URL + "/audio/S1_q1.mp3"

	// The first caller gives up mid-download, as a Play replaced by
	// Replay does; the shared download must still complete.
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	type result struct {
		path string
		err  error
	}
	first := make(chan result, 1)
	go func() {
		p, err := e.fetch(firstCtx, url)
		first <- result{p, err}
	}()
	for hits.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	second := make(chan result, 1)
	go func() {
		p, err := e.fetch(context.Background(), url)
		second <- result{p, err}
	}()
	cancelFirst()
	if r := <-first; !errors.Is(r.err, context.Canceled) {
		t.Fatalf("cancelled fetch = %v, want context.Canceled", r.err)
	}

	close(gate)
	r := <-second
	if r.err != nil {
		t.Fatalf("fetch: %v", r.err)
	}
	data, err := os.ReadFile(r.path)
	if err != nil || string(data) != "ID3fake" {
		t.Fatalf("downloaded %q, %v", data, err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("clip fetched %d times, want 1", got)
	}
}
