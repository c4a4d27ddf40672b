package coordinator

import (
	"github.com/abhisek/careerflow/internal/interview"
	"github.com/abhisek/careerflow/internal/speech"
)

// StartMsg asks to begin an interview for the given role and level.
type StartMsg struct {
	Role  string
	Level interview.ExperienceLevel
}

// SetAnswerMsg replaces the typed answer text.
type SetAnswerMsg struct {
	Text string
}

// SubmitMsg submits the current answer.
type SubmitMsg struct{}

// ToggleListeningMsg starts or stops voice input.
type ToggleListeningMsg struct{}

// ReplayMsg replays the current question's audio.
type ReplayMsg struct{}

// ResetMsg abandons the current attempt and returns to the setup form.
type ResetMsg struct{}

// Internal result messages. Every one carries the epoch it was issued in;
// messages from an earlier epoch are dropped.

type sessionStartedMsg struct {
	epoch    uint64
	question *interview.Question
	err      error
}

type answerReceivedMsg struct {
	epoch uint64
	turn  *interview.Turn
	err   error
}

type speechStartedMsg struct {
	epoch  uint64
	gen    uint64
	events <-chan speech.Event
	err    error
}

type speechEventMsg struct {
	epoch  uint64
	gen    uint64
	events <-chan speech.Event
	event  speech.Event
	closed bool
}

type audioEndedMsg struct {
	epoch uint64
	seq   uint64
	url   string
	err   error
}
