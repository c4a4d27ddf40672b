// Package history persists interview sessions, their questions and answers,
// and the generic activity records shown on the history screen.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/careerflow/internal/interview"
)

// Session record statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Activity record values written when an interview completes.
const (
	AgentInterview      = "interview"
	ActionMockInterview = "mock_interview"
)

// ErrNotFound is returned when a session record does not exist.
var ErrNotFound = errors.New("history record not found")

// Adapter stores interview history. Implementations must be safe for use
// from a single worker goroutine; the Journal never calls them
// concurrently for one interview.
type Adapter interface {
	CreateSession(ctx context.Context, s NewSession) (string, error)
	RecordQuestion(ctx context.Context, sessionRecordID string, number int, text, audioURL string) (string, error)
	RecordAnswer(ctx context.Context, sessionRecordID, questionID, text string) error
	CompleteSession(ctx context.Context, sessionRecordID string, result interview.Result) error
	CancelSession(ctx context.Context, sessionRecordID string) error
	AppendRecord(ctx context.Context, r Record) (string, error)
	ListRecords(ctx context.Context, userID string, page, limit int) (Page, error)
	SessionDetails(ctx context.Context, sessionRecordID string) (*Details, error)
}

// NewSession describes an interview session record at creation.
type NewSession struct {
	UserID          string
	Role            string
	ExperienceLevel interview.ExperienceLevel
	RemoteSessionID string
	StartedAt       time.Time
}

// SessionRecord is a stored interview session.
type SessionRecord struct {
	ID              string
	UserID          string
	Role            string
	ExperienceLevel interview.ExperienceLevel
	RemoteSessionID string
	Status          string
	StartedAt       time.Time
	CompletedAt     *time.Time
	FinalScore      *int
	OverallFeedback string
	Strengths       []string
	Weaknesses      []string
}

// QuestionRecord is one question asked during a session.
type QuestionRecord struct {
	ID        string
	SessionID string
	Number    int
	Text      string
	AudioURL  string
	CreatedAt time.Time
}

// AnswerRecord is the candidate's answer to a question.
type AnswerRecord struct {
	ID         string
	SessionID  string
	QuestionID string
	Text       string
	CreatedAt  time.Time
}

// Details is a session with its questions in order and all answers.
type Details struct {
	Session   SessionRecord
	Questions []QuestionRecord
	Answers   []AnswerRecord
}

// Record is a generic activity history entry.
type Record struct {
	ID          string
	UserID      string
	SessionID   string
	Timestamp   time.Time
	AgentName   string
	ActionType  string
	SummaryText string
	FullOutput  map[string]any
}

// Page is one page of records, newest first.
type Page struct {
	Records []Record
	Total   int
	Page    int
	Limit   int
}

// TotalPages returns the number of pages at the page's limit.
func (p Page) TotalPages() int {
	if p.Limit <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// NormalizePage clamps page and limit to sane values. Pages start at 1.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// CompletionRecord builds the activity record added when an interview ends.
func CompletionRecord(userID, sessionRecordID, role string, level interview.ExperienceLevel, result interview.Result) Record {
	return Record{
		UserID:      userID,
		SessionID:   sessionRecordID,
		AgentName:   AgentInterview,
		ActionType:  ActionMockInterview,
		SummaryText: summarize(role, result.FinalScore),
		FullOutput: map[string]any{
			"role":             role,
			"experience_level": string(level),
			"final_score":      result.FinalScore,
			"overall_feedback": result.Feedback,
			"strengths":        result.Strengths,
			"weaknesses":       result.Weaknesses,
		},
	}
}

func summarize(role string, score int) string {
	return fmt.Sprintf("Mock interview for %s scored %d/100", role, score)
}
