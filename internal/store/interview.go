package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/careerflow/internal/history"
	"github.com/abhisek/careerflow/internal/interview"
)

// interviewRepo implements history.Adapter on the local database.
type interviewRepo struct {
	db  *sql.DB
	now func() time.Time
}

var _ history.Adapter = (*interviewRepo)(nil)

func (r *interviewRepo) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	return r.db.ExecContext(ctx, query, args...)
}

func (r *interviewRepo) CreateSession(ctx context.Context, s history.NewSession) (string, error) {
	id := uuid.NewString()
	started := s.StartedAt
	if started.IsZero() {
		started = r.now()
	}
	query, args := builder().Insert(tableSessions).
		Columns("id", "user_id", "role", "experience_level", "remote_session_id",
			"started_at", "status", "updated_at").
		Values(id, s.UserID, s.Role, string(s.ExperienceLevel), s.RemoteSessionID,
			started.UTC(), history.StatusInProgress, r.now().UTC()).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return "", fmt.Errorf("insert interview session: %w", err)
	}
	return id, nil
}

func (r *interviewRepo) RecordQuestion(ctx context.Context, sessionRecordID string, number int, text, audioURL string) (string, error) {
	id := uuid.NewString()
	query, args := builder().Insert(tableQuestions).
		Columns("id", "session_id", "question_number", "question_text", "audio_url", "created_at").
		Values(id, sessionRecordID, number, text, audioURL, r.now().UTC()).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return "", fmt.Errorf("insert interview question: %w", err)
	}
	return id, nil
}

func (r *interviewRepo) RecordAnswer(ctx context.Context, sessionRecordID, questionID, text string) error {
	query, args := builder().Insert(tableAnswers).
		Columns("id", "session_id", "question_id", "answer_text", "created_at").
		Values(uuid.NewString(), sessionRecordID, questionID, text, r.now().UTC()).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert user answer: %w", err)
	}
	return nil
}

func (r *interviewRepo) CompleteSession(ctx context.Context, sessionRecordID string, result interview.Result) error {
	strengths, err := json.Marshal(nonNil(result.Strengths))
	if err != nil {
		return fmt.Errorf("encode strengths: %w", err)
	}
	weaknesses, err := json.Marshal(nonNil(result.Weaknesses))
	if err != nil {
		return fmt.Errorf("encode weaknesses: %w", err)
	}

	now := r.now().UTC()
	query, args := builder().Update(tableSessions).
		Set("status", history.StatusCompleted).
		Set("completed_at", now).
		Set("final_score", result.FinalScore).
		Set("overall_feedback", result.Feedback).
		Set("strengths", string(strengths)).
		Set("weaknesses", string(weaknesses)).
		Set("updated_at", now).
		Where(entsql.EQ("id", sessionRecordID)).
		Query()
	return r.updateOne(ctx, query, args, "complete interview session")
}

func (r *interviewRepo) CancelSession(ctx context.Context, sessionRecordID string) error {
	query, args := builder().Update(tableSessions).
		Set("status", history.StatusCancelled).
		Set("updated_at", r.now().UTC()).
		Where(entsql.And(
			entsql.EQ("id", sessionRecordID),
			entsql.EQ("status", history.StatusInProgress),
		)).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return fmt.Errorf("cancel interview session: %w", err)
	}
	return nil
}

func (r *interviewRepo) updateOne(ctx context.Context, query string, args []any, what string) error {
	res, err := r.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, history.ErrNotFound)
	}
	return nil
}

func (r *interviewRepo) AppendRecord(ctx context.Context, rec history.Record) (string, error) {
	id := uuid.NewString()
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}
	output, err := json.Marshal(rec.FullOutput)
	if err != nil {
		return "", fmt.Errorf("encode full output: %w", err)
	}
	query, args := builder().Insert(tableHistory).
		Columns("id", "user_id", "session_id", "timestamp", "agent_name", "action_type", "summary_text", "full_output").
		Values(id, rec.UserID, rec.SessionID, ts.UTC(), rec.AgentName, rec.ActionType, rec.SummaryText, string(output)).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return "", fmt.Errorf("insert history record: %w", err)
	}
	return id, nil
}

func (r *interviewRepo) ListRecords(ctx context.Context, userID string, page, limit int) (history.Page, error) {
	page, limit = history.NormalizePage(page, limit)
	out := history.Page{Page: page, Limit: limit}

	countQuery, countArgs := builder().Select(entsql.Count("*")).
		From(entsql.Table(tableHistory)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count history records: %w", err)
	}

	query, args := builder().
		Select("id", "user_id", "session_id", "timestamp", "agent_name", "action_type", "summary_text", "full_output").
		From(entsql.Table(tableHistory)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("timestamp")).
		Limit(limit).
		Offset((page - 1) * limit).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return out, fmt.Errorf("query history records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec    history.Record
			output sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SessionID, &rec.Timestamp,
			&rec.AgentName, &rec.ActionType, &rec.SummaryText, &output); err != nil {
			return out, fmt.Errorf("scan history record: %w", err)
		}
		if output.Valid && output.String != "" {
			if err := json.Unmarshal([]byte(output.String), &rec.FullOutput); err != nil {
				return out, fmt.Errorf("decode full output: %w", err)
			}
		}
		out.Records = append(out.Records, rec)
	}
	return out, rows.Err()
}

func (r *interviewRepo) SessionDetails(ctx context.Context, sessionRecordID string) (*history.Details, error) {
	session, err := r.session(ctx, sessionRecordID)
	if err != nil {
		return nil, err
	}
	d := &history.Details{Session: *session}

	qQuery, qArgs := builder().
		Select("id", "session_id", "question_number", "question_text", "audio_url", "created_at").
		From(entsql.Table(tableQuestions)).
		Where(entsql.EQ("session_id", sessionRecordID)).
		OrderBy("question_number").
		Query()
	qRows, err := r.db.QueryContext(ctx, qQuery, qArgs...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer qRows.Close()
	for qRows.Next() {
		var q history.QuestionRecord
		if err := qRows.Scan(&q.ID, &q.SessionID, &q.Number, &q.Text, &q.AudioURL, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		d.Questions = append(d.Questions, q)
	}
	if err := qRows.Err(); err != nil {
		return nil, err
	}

	aQuery, aArgs := builder().
		Select("id", "session_id", "question_id", "answer_text", "created_at").
		From(entsql.Table(tableAnswers)).
		Where(entsql.EQ("session_id", sessionRecordID)).
		OrderBy("created_at").
		Query()
	aRows, err := r.db.QueryContext(ctx, aQuery, aArgs...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer aRows.Close()
	for aRows.Next() {
		var a history.AnswerRecord
		if err := aRows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.Text, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		d.Answers = append(d.Answers, a)
	}
	return d, aRows.Err()
}

func (r *interviewRepo) session(ctx context.Context, id string) (*history.SessionRecord, error) {
	query, args := builder().
		Select("id", "user_id", "role", "experience_level", "remote_session_id", "status",
			"started_at", "completed_at", "final_score", "overall_feedback", "strengths", "weaknesses").
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		s           history.SessionRecord
		level       string
		completedAt sql.NullTime
		score       sql.NullInt64
		strengths   sql.NullString
		weaknesses  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.UserID, &s.Role, &level,
		&s.RemoteSessionID, &s.Status, &s.StartedAt, &completedAt, &score, &s.OverallFeedback,
		&strengths, &weaknesses)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query interview session: %w", err)
	}

	s.ExperienceLevel = interview.ExperienceLevel(level)
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	if score.Valid {
		v := int(score.Int64)
		s.FinalScore = &v
	}
	if s.Strengths, err = decodeList(strengths); err != nil {
		return nil, fmt.Errorf("decode strengths: %w", err)
	}
	if s.Weaknesses, err = decodeList(weaknesses); err != nil {
		return nil, fmt.Errorf("decode weaknesses: %w", err)
	}
	return &s, nil
}

func decodeList(v sql.NullString) ([]string, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
