// Package playback plays interview question audio, one clip at a time.
package playback

import (
	"errors"
	"sync"
)

var (
	// ErrNoClip is returned by Replay when nothing is loaded.
	ErrNoClip = errors.New("no clip loaded")

	// ErrPlaying is returned by Replay while the clip is still playing.
	ErrPlaying = errors.New("clip is still playing")
)

// Controller owns at most one clip. None of its methods block on I/O.
type Controller interface {
	// Play stops the current clip and starts url in the background.
	Play(url string) *Clip
	// Replay restarts the current clip from the beginning.
	Replay() (*Clip, error)
	// Stop halts and releases the current clip.
	Stop()
}

// Clip is a single playback of a clip. Done is closed when playback ends,
// whether it finished, failed, or was stopped.
type Clip struct {
	Seq uint64
	URL string

	done chan struct{}
	once sync.Once
	err  error
}

func newClip(seq uint64, url string) *Clip {
	return &Clip{Seq: seq, URL: url, done: make(chan struct{})}
}

// Done is closed once playback has ended.
func (c *Clip) Done() <-chan struct{} { return c.done }

// Err returns the playback failure, if any. It is valid after Done is
// closed. A stopped clip has no error.
func (c *Clip) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Playing reports whether the clip has not finished yet.
func (c *Clip) Playing() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *Clip) finish(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Nop completes every clip immediately.
type Nop struct {
	mu   sync.Mutex
	seq  uint64
	last string
}

func (n *Nop) Play(url string) *Clip {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	n.last = url
	c := newClip(n.seq, url)
	c.finish(nil)
	return c
}

func (n *Nop) Replay() (*Clip, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last == "" {
		return nil, ErrNoClip
	}
	n.seq++
	c := newClip(n.seq, n.last)
	c.finish(nil)
	return c, nil
}

func (n *Nop) Stop() {
	n.mu.Lock()
	n.last = ""
	n.mu.Unlock()
}
