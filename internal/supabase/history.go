// Package supabase stores interview history in a Supabase project and
// signs users in through Supabase Auth.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/abhisek/careerflow/internal/history"
	"github.com/abhisek/careerflow/internal/interview"
)

const (
	tableSessions  = "interview_sessions"
	tableQuestions = "interview_questions"
	tableAnswers   = "user_answers"
	tableHistory   = "history_records"
)

// History implements history.Adapter over PostgREST. Calls are
// synchronous; the context is only checked before each request.
type History struct {
	client *supabase.Client
	now    func() time.Time
}

var _ history.Adapter = (*History)(nil)

// NewClient creates a Supabase client for the project at url.
func NewClient(url, key string) (*supabase.Client, error) {
	if url == "" || key == "" {
		return nil, errors.New("supabase url and key are required")
	}
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return client, nil
}

// NewHistory wraps an existing client.
func NewHistory(client *supabase.Client) *History {
	return &History{client: client, now: time.Now}
}

type sessionRow struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id,omitempty"`
	Role            string     `json:"role"`
	ExperienceLevel string     `json:"experience_level"`
	RemoteSessionID string     `json:"remote_session_id,omitempty"`
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	FinalScore      *int       `json:"final_score,omitempty"`
	OverallFeedback string     `json:"overall_feedback,omitempty"`
	Strengths       []string   `json:"strengths,omitempty"`
	Weaknesses      []string   `json:"weaknesses,omitempty"`
}

type questionRow struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	QuestionNumber int       `json:"question_number"`
	QuestionText   string    `json:"question_text"`
	AudioURL       string    `json:"audio_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type answerRow struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	QuestionID string    `json:"question_id"`
	AnswerText string    `json:"answer_text"`
	CreatedAt  time.Time `json:"created_at"`
}

type historyRow struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	SessionID   string         `json:"session_id,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	AgentName   string         `json:"agent_name"`
	ActionType  string         `json:"action_type"`
	SummaryText string         `json:"summary_text,omitempty"`
	FullOutput  map[string]any `json:"full_output,omitempty"`
}

// insert writes row and returns the id PostgREST echoes back.
func (h *History) insert(ctx context.Context, table, id string, row any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out []struct {
		ID string `json:"id"`
	}
	if _, err := h.client.From(table).Insert(row, false, "", "representation", "").ExecuteTo(&out); err != nil {
		return "", fmt.Errorf("insert into %s: %w", table, err)
	}
	if len(out) > 0 && out[0].ID != "" {
		return out[0].ID, nil
	}
	return id, nil
}

func (h *History) CreateSession(ctx context.Context, s history.NewSession) (string, error) {
	started := s.StartedAt
	if started.IsZero() {
		started = h.now()
	}
	id := uuid.NewString()
	return h.insert(ctx, tableSessions, id, sessionRow{
		ID:              id,
		UserID:          s.UserID,
		Role:            s.Role,
		ExperienceLevel: string(s.ExperienceLevel),
		RemoteSessionID: s.RemoteSessionID,
		Status:          history.StatusInProgress,
		StartedAt:       started.UTC(),
	})
}

func (h *History) RecordQuestion(ctx context.Context, sessionRecordID string, number int, text, audioURL string) (string, error) {
	id := uuid.NewString()
	return h.insert(ctx, tableQuestions, id, questionRow{
		ID:             id,
		SessionID:      sessionRecordID,
		QuestionNumber: number,
		QuestionText:   text,
		AudioURL:       audioURL,
		CreatedAt:      h.now().UTC(),
	})
}

func (h *History) RecordAnswer(ctx context.Context, sessionRecordID, questionID, text string) error {
	id := uuid.NewString()
	_, err := h.insert(ctx, tableAnswers, id, answerRow{
		ID:         id,
		SessionID:  sessionRecordID,
		QuestionID: questionID,
		AnswerText: text,
		CreatedAt:  h.now().UTC(),
	})
	return err
}

func (h *History) CompleteSession(ctx context.Context, sessionRecordID string, result interview.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	strengths, weaknesses := result.Strengths, result.Weaknesses
	if strengths == nil {
		strengths = []string{}
	}
	if weaknesses == nil {
		weaknesses = []string{}
	}
	update := map[string]any{
		"status":           history.StatusCompleted,
		"completed_at":     h.now().UTC(),
		"final_score":      result.FinalScore,
		"overall_feedback": result.Feedback,
		"strengths":        strengths,
		"weaknesses":       weaknesses,
	}
	var out []sessionRow
	if _, err := h.client.From(tableSessions).Update(update, "representation", "").Eq("id", sessionRecordID).ExecuteTo(&out); err != nil {
		return fmt.Errorf("complete interview session: %w", err)
	}
	if len(out) == 0 {
		return fmt.Errorf("complete interview session: %w", history.ErrNotFound)
	}
	return nil
}

func (h *History) CancelSession(ctx context.Context, sessionRecordID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	update := map[string]any{"status": history.StatusCancelled}
	_, _, err := h.client.From(tableSessions).Update(update, "minimal", "").
		Eq("id", sessionRecordID).
		Eq("status", history.StatusInProgress).
		Execute()
	if err != nil {
		return fmt.Errorf("cancel interview session: %w", err)
	}
	return nil
}

func (h *History) AppendRecord(ctx context.Context, r history.Record) (string, error) {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = h.now()
	}
	id := uuid.NewString()
	return h.insert(ctx, tableHistory, id, historyRow{
		ID:          id,
		UserID:      r.UserID,
		SessionID:   r.SessionID,
		Timestamp:   ts.UTC(),
		AgentName:   r.AgentName,
		ActionType:  r.ActionType,
		SummaryText: r.SummaryText,
		FullOutput:  r.FullOutput,
	})
}

func (h *History) ListRecords(ctx context.Context, userID string, page, limit int) (history.Page, error) {
	page, limit = history.NormalizePage(page, limit)
	out := history.Page{Page: page, Limit: limit}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	from := (page - 1) * limit
	var rows []historyRow
	count, err := h.client.From(tableHistory).
		Select("*", "exact", false).
		Eq("user_id", userID).
		Order("timestamp", &postgrest.OrderOpts{Ascending: false}).
		Range(from, from+limit-1, "").
		ExecuteTo(&rows)
	if err != nil {
		return out, fmt.Errorf("list history records: %w", err)
	}

	out.Total = int(count)
	for _, r := range rows {
		out.Records = append(out.Records, history.Record{
			ID:          r.ID,
			UserID:      r.UserID,
			SessionID:   r.SessionID,
			Timestamp:   r.Timestamp,
			AgentName:   r.AgentName,
			ActionType:  r.ActionType,
			SummaryText: r.SummaryText,
			FullOutput:  r.FullOutput,
		})
	}
	return out, nil
}

func (h *History) SessionDetails(ctx context.Context, sessionRecordID string) (*history.Details, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sessions []sessionRow
	if _, err := h.client.From(tableSessions).Select("*", "", false).Eq("id", sessionRecordID).ExecuteTo(&sessions); err != nil {
		return nil, fmt.Errorf("get interview session: %w", err)
	}
	if len(sessions) == 0 {
		return nil, history.ErrNotFound
	}
	s := sessions[0]

	var questions []questionRow
	if _, err := h.client.From(tableQuestions).
		Select("*", "", false).
		Eq("session_id", sessionRecordID).
		Order("question_number", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&questions); err != nil {
		return nil, fmt.Errorf("get interview questions: %w", err)
	}

	var answers []answerRow
	if _, err := h.client.From(tableAnswers).
		Select("*", "", false).
		Eq("session_id", sessionRecordID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&answers); err != nil {
		return nil, fmt.Errorf("get user answers: %w", err)
	}

	d := &history.Details{Session: history.SessionRecord{
		ID:              s.ID,
		UserID:          s.UserID,
		Role:            s.Role,
		ExperienceLevel: interview.ExperienceLevel(s.ExperienceLevel),
		RemoteSessionID: s.RemoteSessionID,
		Status:          s.Status,
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
		FinalScore:      s.FinalScore,
		OverallFeedback: s.OverallFeedback,
		Strengths:       s.Strengths,
		Weaknesses:      s.Weaknesses,
	}}
	for _, q := range questions {
		d.Questions = append(d.Questions, history.QuestionRecord{
			ID: q.ID, SessionID: q.SessionID, Number: q.QuestionNumber,
			Text: q.QuestionText, AudioURL: q.AudioURL, CreatedAt: q.CreatedAt,
		})
	}
	for _, a := range answers {
		d.Answers = append(d.Answers, history.AnswerRecord{
			ID: a.ID, SessionID: a.SessionID, QuestionID: a.QuestionID,
			Text: a.AnswerText, CreatedAt: a.CreatedAt,
		})
	}
	return d, nil
}
