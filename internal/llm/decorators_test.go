package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careerflow/internal/store"
)

func TestBreaker_DisabledReturnsInner(t *testing.T) {
	fake := NewFake()
	assert.Same(t, fake, WithBreaker(fake, BreakerConfig{}, nil))
}

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
}

func TestBreaker_OpensAfterOutages(t *testing.T) {
	down := unavailable("mock", errors.New("503"))
	fake := NewFake(Reply{Err: down}, Reply{Err: down}, Reply{JSON: []byte(`{}`)})
	p := WithBreaker(fake, testBreakerConfig(), nil)

	for range 2 {
		_, err := p.Complete(context.Background(), Prompt{})
		require.Error(t, err)
	}

	_, err := p.Complete(context.Background(), Prompt{})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnavailable, kind)
	assert.Equal(t, 2, fake.Calls(), "open breaker must not reach the provider")
	assert.Equal(t, "open", p.(*Breaker).State())
}

func TestBreaker_InvalidRepliesDoNotTrip(t *testing.T) {
	bad := Invalid([]byte(`{}`), errors.New("missing field"))
	fake := NewFake(Reply{Err: bad}, Reply{Err: bad}, Reply{Err: bad})
	p := WithBreaker(fake, testBreakerConfig(), nil)

	for range 3 {
		_, err := p.Complete(context.Background(), Prompt{})
		kind, _ := KindOf(err)
		assert.Equal(t, KindInvalid, kind)
	}
	assert.Equal(t, 3, fake.Calls())
	assert.Equal(t, "closed", p.(*Breaker).State())
}

type recordingEvents struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func (r *recordingEvents) RecentLLMRequests(context.Context, store.LLMRequestQuery) ([]store.LLMRequestEvent, error) {
	return nil, nil
}

func TestJournal_RecordsSuccess(t *testing.T) {
	events := &recordingEvents{}
	fake := NewFake(Reply{
		JSON:  []byte(`{"question_text":"How did you measure success?"}`),
		Usage: Usage{InputTokens: 120, OutputTokens: 14},
	})
	p := WithJournal(fake, events, nil)

	ctx := WithPurpose(context.Background(), "next-question")
	_, err := p.Complete(ctx, Prompt{
		System: "You are an interviewer.",
		Turns:  []Turn{User("Q1: Tell me about yourself.\nA1: I build data pipelines.")},
		Schema: testQuestionSchema,
	})
	require.NoError(t, err)

	require.Len(t, events.events, 1)
	e := events.events[0]
	assert.Equal(t, "mock", e.Provider)
	assert.Equal(t, "next-question", e.Purpose)
	assert.True(t, e.Success)
	assert.Equal(t, 120, e.InputTokens)
	assert.Equal(t, 14, e.OutputTokens)
	assert.Contains(t, e.RequestBody, "[system]\nYou are an interviewer.")
	assert.Contains(t, e.RequestBody, "[user]\nQ1: Tell me about yourself.")
	assert.Contains(t, e.RequestBody, "[schema interview-question]")
	assert.Equal(t, `{"question_text":"How did you measure success?"}`, e.ResponseBody)
}

func TestJournal_RecordsFailureWithContent(t *testing.T) {
	events := &recordingEvents{}
	fake := NewFake(Reply{Err: Invalid([]byte(`{"q":1}`), errors.New("missing question_text"))})
	p := WithJournal(fake, events, nil)

	_, err := p.Complete(context.Background(), Prompt{})
	require.Error(t, err)

	require.Len(t, events.events, 1)
	e := events.events[0]
	assert.False(t, e.Success)
	assert.Equal(t, "unknown", e.Purpose)
	assert.Contains(t, e.ErrorMessage, "missing question_text")
	assert.Equal(t, `{"q":1}`, e.ResponseBody)
}

func TestJournal_StoreFailureDoesNotFailCall(t *testing.T) {
	events := &recordingEvents{err: errors.New("disk full")}
	p := WithJournal(NewFake(Reply{JSON: []byte(`{}`)}), events, nil)

	_, err := p.Complete(context.Background(), Prompt{})
	assert.NoError(t, err)
}

type deadlineProbe struct {
	*Fake
	deadline time.Time
	ok       bool
}

func (d *deadlineProbe) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	d.deadline, d.ok = ctx.Deadline()
	return d.Fake.Complete(ctx, p)
}

func TestWithTimeout(t *testing.T) {
	probe := &deadlineProbe{Fake: NewFake(Reply{JSON: []byte(`{}`)})}
	p := WithTimeout(probe, time.Minute)

	_, err := p.Complete(context.Background(), Prompt{})
	require.NoError(t, err)
	require.True(t, probe.ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), probe.deadline, 5*time.Second)

	assert.Same(t, probe, WithTimeout(probe, 0))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Fake{}, p)

	_, err = NewProvider(context.Background(), Config{Provider: "openai"}, nil, nil)
	assert.ErrorContains(t, err, "llm.openai.api_key")

	cfg := DefaultConfig()
	cfg.Anthropic.APIKey = "test-key"
	p, err = NewProvider(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())
	assert.Equal(t, "claude-haiku-4-5-20251001", p.Model())
	assert.IsType(t, &timeout{}, p)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"mock needs nothing", Config{Provider: "mock"}, false},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: ProviderConfig{APIKey: "k"}}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: ProviderConfig{APIKey: "k"}}, false},
		{"openai key in wrong section", Config{Provider: "openai", Gemini: ProviderConfig{APIKey: "k"}}, true},
		{"unknown", Config{Provider: "llama"}, true},
		{"negative attempts", Config{Provider: "openai", OpenAI: ProviderConfig{APIKey: "k"}, Retry: RetryConfig{MaxAttempts: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPurpose(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, "next-question", PurposeFrom(WithPurpose(ctx, "next-question")))
}

func TestFake_ExhaustedIsUnavailable(t *testing.T) {
	fake := NewFake()
	_, err := fake.Complete(context.Background(), Prompt{System: "s"})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnavailable, kind)

	fake.Push(Reply{JSON: []byte(`{"question_text":"Why?"}`)})
	c, err := fake.Complete(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Model)
	assert.Len(t, fake.Prompts(), 2)
	assert.Equal(t, "s", fake.Prompts()[0].System)
}
