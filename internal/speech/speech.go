// Package speech provides continuous speech-to-text for spoken answers.
package speech

import (
	"context"

	"github.com/abhisek/careerflow/internal/interview"
)

// Kind identifies a recognition event.
type Kind string

const (
	KindPartial Kind = "partial"
	KindFinal   Kind = "final"
	KindEnd     Kind = "end"
	KindError   Kind = "error"
)

// Event is one step of a recognition pass. Partial text is a live preview
// and must not be committed; final text is committed to the answer.
type Event struct {
	Kind Kind
	Text string
	Err  error
}

// Recognizer captures the microphone and turns speech into events.
//
// Start opens a recognition pass. The returned channel delivers events in
// order and is closed after the final end or error event. Only one pass may
// be active at a time. Stop ends the active pass and is always safe to call.
type Recognizer interface {
	IsSupported() bool
	Start(ctx context.Context) (<-chan Event, error)
	Stop() error
}

// Nop is a Recognizer for systems without speech support.
type Nop struct{}

func (Nop) IsSupported() bool { return false }

func (Nop) Start(context.Context) (<-chan Event, error) {
	return nil, &interview.UnsupportedCapabilityError{Capability: interview.CapabilitySpeech}
}

func (Nop) Stop() error { return nil }
