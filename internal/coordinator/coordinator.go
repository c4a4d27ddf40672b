// Package coordinator drives one mock interview: it sequences the session
// API, voice input, question audio, the silence auto-submit timer and
// history writes through a single Update function.
package coordinator

import (
	"context"
	"log/slog"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerflow/internal/autosubmit"
	"github.com/abhisek/careerflow/internal/interview"
	"github.com/abhisek/careerflow/internal/playback"
	"github.com/abhisek/careerflow/internal/speech"
)

// SessionClient is the remote interview API.
type SessionClient interface {
	Start(ctx context.Context, role string, level interview.ExperienceLevel) (*interview.Question, error)
	Answer(ctx context.Context, sessionID, answerText string) (*interview.Turn, error)
	AudioURL(ref string) string
}

// Recorder persists interview progress. Calls must not block.
type Recorder interface {
	Begin(remoteID, role string, level interview.ExperienceLevel, q interview.Question)
	Question(q interview.Question)
	Answer(text string)
	Complete(result interview.Result)
	Cancel()
}

// State is a snapshot of the coordinator for rendering.
type State struct {
	Status         interview.Status
	Role           string
	Level          interview.ExperienceLevel
	SessionID      string
	Question       *interview.Question
	QuestionNumber int
	Chat           []interview.ChatMessage
	Answer         string
	Partial        string
	Listening      bool
	MicPending     bool
	Playing        bool
	Result         *interview.Result
	Err            string
}

// Options configures a Coordinator. Nil collaborators fall back to no-op
// implementations, except Client which is required.
type Options struct {
	Client          SessionClient
	Recognizer      speech.Recognizer
	Player          playback.Controller
	Recorder        Recorder
	Logger          *slog.Logger
	AutoSubmitDelay time.Duration
	Now             func() time.Time
}

// Coordinator is the interview state machine. It is not safe for
// concurrent use; Bubble Tea calls Update from a single goroutine.
type Coordinator struct {
	client     SessionClient
	recognizer speech.Recognizer
	player     playback.Controller
	recorder   Recorder
	logger     *slog.Logger
	delay      time.Duration
	now        func() time.Time

	state State
	timer autosubmit.Timer

	epoch     uint64
	ctx       context.Context
	cancel    context.CancelFunc
	listenGen uint64
	clipSeq   uint64
}

// New creates a Coordinator in the Idle state.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		client:     opts.Client,
		recognizer: opts.Recognizer,
		player:     opts.Player,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
		delay:      opts.AutoSubmitDelay,
		now:        opts.Now,
		state: State{
			Status: interview.StatusIdle,
			Role:   interview.DefaultRole,
			Level:  interview.DefaultLevel,
		},
	}
	if c.recognizer == nil {
		c.recognizer = speech.Nop{}
	}
	if c.player == nil {
		c.player = &playback.Nop{}
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.delay <= 0 {
		c.delay = autosubmit.DefaultDelay
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// State returns a copy of the current state.
func (c *Coordinator) State() State {
	s := c.state
	s.Chat = slices.Clone(c.state.Chat)
	return s
}

// SpeechSupported reports whether voice input can be offered.
func (c *Coordinator) SpeechSupported() bool {
	return c.recognizer.IsSupported()
}

// CanReplay reports whether a replay request would be honoured.
func (c *Coordinator) CanReplay() bool {
	return c.state.Status == interview.StatusAwaitingAnswer &&
		c.state.Question != nil && c.state.Question.AudioURL != "" &&
		!c.state.Playing
}

// Update applies msg and returns the follow-up command, if any.
func (c *Coordinator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StartMsg:
		return c.handleStart(msg)
	case SetAnswerMsg:
		return c.handleSetAnswer(msg)
	case SubmitMsg:
		return c.submit()
	case ToggleListeningMsg:
		return c.handleToggleListening()
	case ReplayMsg:
		return c.handleReplay()
	case ResetMsg:
		c.reset()
		return nil

	case sessionStartedMsg:
		return c.handleSessionStarted(msg)
	case answerReceivedMsg:
		return c.handleAnswerReceived(msg)
	case speechStartedMsg:
		return c.handleSpeechStarted(msg)
	case speechEventMsg:
		return c.handleSpeechEvent(msg)
	case autosubmit.FiredMsg:
		return c.handleAutoSubmit(msg)
	case audioEndedMsg:
		return c.handleAudioEnded(msg)
	}
	return nil
}

// Close stops voice input and audio and cancels in-flight requests.
func (c *Coordinator) Close() {
	c.stopListening()
	c.timer.Cancel()
	c.player.Stop()
	c.cancel()
}

type nopRecorder struct{}

func (nopRecorder) Begin(string, string, interview.ExperienceLevel, interview.Question) {}
func (nopRecorder) Question(interview.Question)                                       {}
func (nopRecorder) Answer(string)                                                     {}
func (nopRecorder) Complete(interview.Result)                                         {}
func (nopRecorder) Cancel()                                                           {}
