package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableSessions  = "interview_sessions"
	tableQuestions = "interview_questions"
	tableAnswers   = "user_answers"
	tableHistory   = "history_records"
	tableLLMEvents = "llm_request_events"
)

var (
	sessionColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString, Default: ""},
		{Name: "role", Type: field.TypeString},
		{Name: "experience_level", Type: field.TypeString},
		{Name: "remote_session_id", Type: field.TypeString, Default: ""},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "status", Type: field.TypeString, Default: "in_progress"},
		{Name: "final_score", Type: field.TypeInt, Nullable: true},
		{Name: "overall_feedback", Type: field.TypeString, Default: ""},
		{Name: "strengths", Type: field.TypeJSON, Nullable: true},
		{Name: "weaknesses", Type: field.TypeJSON, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	sessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    sessionColumns,
		PrimaryKey: []*schema.Column{sessionColumns[0]},
		Indexes: []*schema.Index{
			{Name: "interviewsession_user_id_started_at", Columns: []*schema.Column{sessionColumns[1], sessionColumns[5]}},
			{Name: "interviewsession_remote_session_id", Columns: []*schema.Column{sessionColumns[4]}},
		},
	}

	questionColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString},
		{Name: "question_number", Type: field.TypeInt},
		{Name: "question_text", Type: field.TypeString, Size: 2147483647},
		{Name: "audio_url", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	questionsTable = &schema.Table{
		Name:       tableQuestions,
		Columns:    questionColumns,
		PrimaryKey: []*schema.Column{questionColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "interview_questions_interview_sessions_questions",
				Columns:    []*schema.Column{questionColumns[1]},
				RefColumns: []*schema.Column{sessionColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "interviewquestion_session_id_question_number", Unique: true, Columns: []*schema.Column{questionColumns[1], questionColumns[2]}},
		},
	}

	answerColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "answer_text", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	answersTable = &schema.Table{
		Name:       tableAnswers,
		Columns:    answerColumns,
		PrimaryKey: []*schema.Column{answerColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_answers_interview_sessions_answers",
				Columns:    []*schema.Column{answerColumns[1]},
				RefColumns: []*schema.Column{sessionColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "user_answers_interview_questions_answers",
				Columns:    []*schema.Column{answerColumns[2]},
				RefColumns: []*schema.Column{questionColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "useranswer_session_id", Columns: []*schema.Column{answerColumns[1]}},
		},
	}

	historyColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString, Default: ""},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "agent_name", Type: field.TypeString},
		{Name: "action_type", Type: field.TypeString},
		{Name: "summary_text", Type: field.TypeString, Default: ""},
		{Name: "full_output", Type: field.TypeJSON, Nullable: true},
	}
	historyTable = &schema.Table{
		Name:       tableHistory,
		Columns:    historyColumns,
		PrimaryKey: []*schema.Column{historyColumns[0]},
		Indexes: []*schema.Index{
			{Name: "historyrecord_user_id_timestamp", Columns: []*schema.Column{historyColumns[1], historyColumns[3]}},
		},
	}

	llmEventColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    llmEventColumns,
		PrimaryKey: []*schema.Column{llmEventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{llmEventColumns[9]}},
		},
	}

	tables = []*schema.Table{
		sessionsTable,
		questionsTable,
		answersTable,
		historyTable,
		llmEventsTable,
	}
)

func init() {
	questionsTable.ForeignKeys[0].RefTable = sessionsTable
	answersTable.ForeignKeys[0].RefTable = sessionsTable
	answersTable.ForeignKeys[1].RefTable = questionsTable
}

// migrate creates or updates every table through ent's schema migrator.
func migrate(ctx context.Context, db *sql.DB) error {
	m, err := schema.NewMigrate(entsql.OpenDB(dialect.SQLite, db))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
