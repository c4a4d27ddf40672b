package speech

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/abhisek/careerflow/internal/interview"
)

const chunkSize = 3200 // 100ms of 16 kHz mono s16le

// ErrActive is returned when Start is called during an active pass.
var ErrActive = errors.New("speech recognition already active")

// Streaming pairs a microphone Capturer with a streaming Transcriber.
// A pass ends on its own when the transcriber reports the end of an
// utterance.
type Streaming struct {
	capturer    Capturer
	transcriber Transcriber
	logger      *slog.Logger

	mu     sync.Mutex
	active *pass
}

type pass struct {
	cancel context.CancelFunc
	source AudioSource
	stream TranscriptStream
	once   sync.Once
}

// NewStreaming builds a Recognizer from its two halves.
func NewStreaming(c Capturer, t Transcriber, logger *slog.Logger) *Streaming {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Streaming{capturer: c, transcriber: t, logger: logger}
}

func (s *Streaming) IsSupported() bool {
	return s.unsupportedReason() == ""
}

func (s *Streaming) unsupportedReason() string {
	if err := s.capturer.Available(); err != nil {
		return err.Error()
	}
	if err := s.transcriber.Available(); err != nil {
		return err.Error()
	}
	return ""
}

// Start opens the microphone and the transcription stream. Microphone
// failures are returned as *interview.PermissionError.
func (s *Streaming) Start(ctx context.Context) (<-chan Event, error) {
	if reason := s.unsupportedReason(); reason != "" {
		return nil, &interview.UnsupportedCapabilityError{
			Capability: interview.CapabilitySpeech,
			Reason:     reason,
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &pass{cancel: cancel}

	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		cancel()
		return nil, ErrActive
	}
	s.active = p
	s.mu.Unlock()

	source, err := s.capturer.Start(ctx)
	if err != nil {
		s.release(p)
		var perm *interview.PermissionError
		if errors.As(err, &perm) {
			return nil, perm
		}
		return nil, &interview.PermissionError{Kind: interview.PermissionOther, Reason: err.Error(), Err: err}
	}
	if !s.attach(ctx, p, func() { p.source = source }) {
		if err := source.Stop(); err != nil {
			s.logger.Debug("stop audio capture", "error", err)
		}
		return nil, s.abandon(ctx, p)
	}

	stream, err := s.transcriber.Open(ctx)
	if err != nil {
		s.release(p)
		return nil, &interview.PermissionError{
			Kind:   interview.PermissionOther,
			Reason: "speech service unavailable",
			Err:    err,
		}
	}
	if !s.attach(ctx, p, func() { p.stream = stream }) {
		if err := stream.Close(); err != nil {
			s.logger.Debug("close transcript stream", "error", err)
		}
		return nil, s.abandon(ctx, p)
	}

	events := make(chan Event, 64)
	go s.pump(p)
	go s.relay(ctx, p, events)

	s.logger.Debug("speech recognition started")
	return events, nil
}

// attach runs set while holding the lock, but only if p is still the
// active pass. Once attached, a resource is torn down by release;
// otherwise the caller owns it.
func (s *Streaming) attach(ctx context.Context, p *pass, set func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != p || ctx.Err() != nil {
		return false
	}
	set()
	return true
}

// abandon releases a pass that was stopped while Start was still opening it.
func (s *Streaming) abandon(ctx context.Context, p *pass) error {
	s.release(p)
	s.logger.Debug("speech recognition stopped while starting")
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}

// Stop ends the active pass. Teardown finishes in the background.
func (s *Streaming) Stop() error {
	s.mu.Lock()
	p := s.active
	s.mu.Unlock()
	if p == nil {
		return nil
	}
	go s.release(p)
	s.detach(p)
	return nil
}

// detach clears p as the active pass without waiting for teardown.
func (s *Streaming) detach(p *pass) {
	s.mu.Lock()
	if s.active == p {
		s.active = nil
	}
	s.mu.Unlock()
	p.cancel()
}

func (s *Streaming) release(p *pass) {
	p.once.Do(func() {
		p.cancel()

		// Clearing active in the same critical section as the snapshot
		// hands anything attached later back to Start.
		s.mu.Lock()
		if s.active == p {
			s.active = nil
		}
		source, stream := p.source, p.stream
		s.mu.Unlock()

		if source != nil {
			if err := source.Stop(); err != nil {
				s.logger.Debug("stop audio capture", "error", err)
			}
		}
		if stream != nil {
			if err := stream.Close(); err != nil {
				s.logger.Debug("close transcript stream", "error", err)
			}
		}
	})
	s.mu.Lock()
	if s.active == p {
		s.active = nil
	}
	s.mu.Unlock()
}

// pump copies microphone audio into the transcription stream.
func (s *Streaming) pump(p *pass) {
	buf := make([]byte, chunkSize)
	for {
		n, err := p.source.Read(buf)
		if n > 0 {
			if sendErr := p.stream.SendAudio(buf[:n]); sendErr != nil {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("read audio capture", "error", err)
			}
			_ = p.stream.CloseSend()
			return
		}
	}
}

// relay converts transcripts into events. It always finishes with exactly
// one end or error event unless the pass was stopped.
func (s *Streaming) relay(ctx context.Context, p *pass, events chan<- Event) {
	defer close(events)

	emit := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for t := range p.stream.Transcripts() {
		switch {
		case t.SpeechFinal:
			if t.Text != "" && !emit(Event{Kind: KindFinal, Text: t.Text}) {
				return
			}
			emit(Event{Kind: KindEnd})
			s.detach(p)
			go s.release(p)
			return
		case t.IsFinal:
			if !emit(Event{Kind: KindFinal, Text: t.Text}) {
				return
			}
		default:
			if !emit(Event{Kind: KindPartial, Text: t.Text}) {
				return
			}
		}
	}

	if ctx.Err() != nil {
		return
	}
	if err := p.stream.Err(); err != nil {
		emit(Event{Kind: KindError, Err: err})
	} else {
		emit(Event{Kind: KindEnd})
	}
	s.detach(p)
	go s.release(p)
}
