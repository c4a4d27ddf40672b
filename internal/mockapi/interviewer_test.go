package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careerflow/internal/interview"
	"github.com/abhisek/careerflow/internal/llm"
)

func TestScriptedFollowUps(t *testing.T) {
	long := strings.Repeat("word ", 25)

	tests := []struct {
		name   string
		level  interview.ExperienceLevel
		answer string
		want   string
	}{
		{"beginner short", interview.LevelBeginner, "I like data", "more specific example"},
		{"beginner unsure", interview.LevelBeginner, long + "but I'm not sure", "more specific example"},
		{"beginner detailed", interview.LevelBeginner, long, "difficult team member"},
		{"intermediate leadership", interview.LevelIntermediate, "I managed four analysts", "quantify the impact"},
		{"intermediate challenge", interview.LevelIntermediate, "The challenge was latency", "What would you do differently"},
		{"intermediate other", interview.LevelIntermediate, "I write SQL", "complex project"},
		{"expert strategy", interview.LevelExpert, "My long-term plan", "measure the success"},
		{"expert people", interview.LevelExpert, "I care about people", "developing talent"},
		{"expert other", interview.LevelExpert, "Kubernetes", "incomplete information"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scripted{}.NextQuestion(context.Background(), Transcript{
				Level:   tt.level,
				History: []Exchange{{Question: "q", Answer: tt.answer}},
			})
			require.NoError(t, err)
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestScriptedOpeningPerLevel(t *testing.T) {
	seen := map[string]bool{}
	for _, l := range interview.Levels {
		q := Scripted{}.Opening(l)
		assert.NotEmpty(t, q)
		seen[q] = true
	}
	assert.Len(t, seen, len(interview.Levels))
}

func TestLLMQuestionsUsesModel(t *testing.T) {
	fake := llm.NewFake(llm.Reply{
		JSON: json.RawMessage(`{"question_text":"  How did you test the migration?  "}`),
	})
	q := NewLLMQuestions(fake, nil, nil)

	got, err := q.NextQuestion(context.Background(), Transcript{
		Role:    "Backend Engineer",
		Level:   interview.LevelExpert,
		History: []Exchange{{Question: "Tell me about a challenge", Answer: "We migrated billing"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "How did you test the migration?", got)

	require.Equal(t, 1, fake.Calls())
	p := fake.Prompts()[0]
	assert.Same(t, questionSchema, p.Schema)
	assert.Contains(t, p.System, "Backend Engineer")
	require.Len(t, p.Turns, 1)
	assert.Contains(t, p.Turns[0].Text, "We migrated billing")
}

func TestLLMQuestionsFallsBack(t *testing.T) {
	tests := []struct {
		name string
		resp llm.Reply
	}{
		{"provider error", llm.Reply{Err: errors.New("connection reset")}},
		{"bad json", llm.Reply{JSON: json.RawMessage(`not json`)}},
		{"empty question", llm.Reply{JSON: json.RawMessage(`{"question_text":"   "}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewLLMQuestions(llm.NewFake(tt.resp), nil, nil)
			transcript := Transcript{
				Level:   interview.LevelIntermediate,
				History: []Exchange{{Question: "q", Answer: "I coordinated a launch"}},
			}

			got, err := q.NextQuestion(context.Background(), transcript)
			require.NoError(t, err)
			want, _ := Scripted{}.NextQuestion(context.Background(), transcript)
			assert.Equal(t, want, got)
		})
	}
}
