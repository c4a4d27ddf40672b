package interview

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the coordinator's position in the interview lifecycle.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusStarting       Status = "starting"
	StatusAwaitingAnswer Status = "awaiting_answer"
	StatusSubmitting     Status = "submitting"
	StatusComplete       Status = "complete"
)

// ExperienceLevel is the candidate seniority sent to the interview API.
type ExperienceLevel string

const (
	LevelBeginner     ExperienceLevel = "Beginner"
	LevelIntermediate ExperienceLevel = "Intermediate"
	LevelExpert       ExperienceLevel = "Expert"
)

// Levels lists every experience level in display order.
var Levels = []ExperienceLevel{LevelBeginner, LevelIntermediate, LevelExpert}

// ParseLevel resolves a level name case-insensitively.
func ParseLevel(s string) (ExperienceLevel, error) {
	for _, l := range Levels {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}

// Valid reports whether l is one of the known levels.
func (l ExperienceLevel) Valid() bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}

// Speaker identifies who produced a chat message.
type Speaker string

const (
	SpeakerAI   Speaker = "ai"
	SpeakerUser Speaker = "user"
)

// ChatMessage is one entry of the interview transcript. Messages are
// append-only and never modified after creation.
type ChatMessage struct {
	ID        string
	Speaker   Speaker
	Text      string
	CreatedAt time.Time
}

// NewChatMessage stamps a message with a fresh id.
func NewChatMessage(speaker Speaker, text string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Text:      text,
		CreatedAt: at,
	}
}

// Question is a prompt issued by the interview API.
type Question struct {
	SessionID string
	Text      string
	AudioURL  string
}

// Result is the final assessment returned when an interview completes.
type Result struct {
	FinalScore int
	Feedback   string
	Strengths  []string
	Weaknesses []string
}

// Turn is the outcome of submitting an answer: either the next question or
// the final result.
type Turn struct {
	Question *Question
	Result   *Result
}

// Complete reports whether the turn ended the interview.
func (t Turn) Complete() bool {
	return t.Result != nil
}

const (
	// DefaultRole is pre-filled on the setup form.
	DefaultRole = "Senior Data Analyst"

	// DefaultLevel is pre-selected on the setup form.
	DefaultLevel = LevelIntermediate

	// VoiceSubmissionPlaceholder is sent when an answer is submitted while
	// listening but before any transcript arrived.
	VoiceSubmissionPlaceholder = "[Voice input submitted]"

	// FallbackScore is used when the API omits a final score.
	FallbackScore = 85

	// FallbackFeedback is used when the API omits overall feedback.
	FallbackFeedback = "Great job! You demonstrated strong interview skills."
)
