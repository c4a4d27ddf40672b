package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	o, err := NewOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: server.URL})
	require.NoError(t, err)
	return o
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 90, "completion_tokens": 12, "total_tokens": 102},
	}
}

func TestOpenAI_Complete(t *testing.T) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string `json:"name"`
				Strict bool   `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"question_text":"What trade-offs did you consider?"}`, "stop"))
	})

	c, err := o.Complete(context.Background(), Prompt{
		System: "You are an interviewer.",
		Turns: []Turn{
			User("Tell me about a project."),
			{Role: RoleModel, Text: "Noted."},
		},
		Schema:    testQuestionSchema,
		MaxTokens: 300,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question_text":"What trade-offs did you consider?"}`, string(c.JSON))
	assert.Equal(t, Usage{InputTokens: 90, OutputTokens: 12}, c.Usage)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", c.Model)

	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "assistant", req.Messages[2].Role)
	assert.Equal(t, "json_schema", req.ResponseFormat.Type)
	assert.Equal(t, "interview-question", req.ResponseFormat.JSONSchema.Name)
	assert.True(t, req.ResponseFormat.JSONSchema.Strict)
}

func TestOpenAI_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Kind
	}{
		{"rate limit", http.StatusTooManyRequests, KindRateLimited},
		{"server error", http.StatusBadGateway, KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "nope", "type": "server_error"},
				})
			})

			_, err := o.Complete(context.Background(), Prompt{Turns: []Turn{User("hi")}})
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestOpenAI_LengthIsTruncated(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"question_text":"Wh`, "length"))
	})

	_, err := o.Complete(context.Background(), Prompt{Turns: []Turn{User("hi")}, Schema: testQuestionSchema})
	kind, _ := KindOf(err)
	assert.Equal(t, KindTruncated, kind)
}

func TestOpenAI_NoChoices(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "x", "choices": []any{}})
	})

	_, err := o.Complete(context.Background(), Prompt{Turns: []Turn{User("hi")}})
	kind, _ := KindOf(err)
	assert.Equal(t, KindInvalid, kind)
}
