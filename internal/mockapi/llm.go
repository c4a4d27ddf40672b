package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/careerflow/internal/llm"
)

const questionPurpose = "next-question"

var questionSchema = llm.MustSchema("interview-question",
	"The next question an interviewer asks the candidate",
	map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
		},
		"required":             []any{"question_text"},
		"additionalProperties": false,
	})

// LLMQuestions asks a language model for the next question and falls back
// to another source when the model fails.
type LLMQuestions struct {
	provider llm.Provider
	fallback QuestionSource
	logger   *slog.Logger
}

// NewLLMQuestions wraps provider. A nil fallback uses Scripted.
func NewLLMQuestions(provider llm.Provider, fallback QuestionSource, logger *slog.Logger) *LLMQuestions {
	if fallback == nil {
		fallback = Scripted{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LLMQuestions{provider: provider, fallback: fallback, logger: logger}
}

func (q *LLMQuestions) NextQuestion(ctx context.Context, t Transcript) (string, error) {
	text, err := q.generate(ctx, t)
	if err == nil {
		return text, nil
	}
	q.logger.Warn("llm question failed, using scripted question",
		"provider", q.provider.Name(),
		"model", q.provider.Model(),
		"error", err)
	return q.fallback.NextQuestion(ctx, t)
}

func (q *LLMQuestions) generate(ctx context.Context, t Transcript) (string, error) {
	c, err := q.provider.Complete(llm.WithPurpose(ctx, questionPurpose), llm.Prompt{
		System:      systemPrompt(t),
		Turns:       []llm.Turn{llm.User(transcriptPrompt(t))},
		Schema:      questionSchema,
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		QuestionText string `json:"question_text"`
	}
	if err := c.Decode(&out); err != nil {
		return "", err
	}
	text := strings.TrimSpace(out.QuestionText)
	if text == "" {
		return "", llm.Invalid(c.JSON, errors.New("empty question_text"))
	}
	return text, nil
}

func systemPrompt(t Transcript) string {
	return fmt.Sprintf(
		"You are an experienced interviewer running a mock interview for a %s position. "+
			"The candidate's experience level is %s. Ask exactly one follow-up question that builds on "+
			"their last answer. Keep it under 50 words and do not evaluate the answer.",
		t.Role, t.Level)
}

func transcriptPrompt(t Transcript) string {
	var b strings.Builder
	b.WriteString("Interview so far:\n\n")
	for i, ex := range t.History {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n\n", i+1, ex.Question, i+1, ex.Answer)
	}
	b.WriteString("Ask the next question.")
	return b.String()
}
