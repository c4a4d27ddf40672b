// Package autosubmit implements the silence timer that submits a spoken
// answer once the speaker pauses.
package autosubmit

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultDelay is the pause after the last final transcript chunk before
// the answer is submitted.
const DefaultDelay = 2 * time.Second

// FiredMsg is delivered when an armed timer elapses.
type FiredMsg struct {
	Gen uint64
}

// Timer is a single-shot debounce timer. Only the most recently armed
// generation may fire. It is not safe for concurrent use; call it from the
// update loop only.
type Timer struct {
	gen   uint64
	armed bool
}

// Arm cancels any previous timer and returns a command that delivers a
// FiredMsg for the new generation after d.
func (t *Timer) Arm(d time.Duration) tea.Cmd {
	if d <= 0 {
		d = DefaultDelay
	}
	t.gen++
	t.armed = true
	gen := t.gen
	return tea.Tick(d, func(time.Time) tea.Msg {
		return FiredMsg{Gen: gen}
	})
}

// Cancel disarms the timer. Any in-flight FiredMsg becomes stale.
func (t *Timer) Cancel() {
	if t.armed {
		t.gen++
	}
	t.armed = false
}

// Fire reports whether msg belongs to the live generation. It returns true
// at most once per Arm.
func (t *Timer) Fire(msg FiredMsg) bool {
	if !t.armed || msg.Gen != t.gen {
		return false
	}
	t.armed = false
	return true
}

// Armed reports whether a timer is pending.
func (t *Timer) Armed() bool {
	return t.armed
}

// Gen returns the current generation.
func (t *Timer) Gen() uint64 {
	return t.gen
}
