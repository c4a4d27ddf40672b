package store

import (
	"context"
	"time"
)

// LLMRequestEventData is what the journal writes for one provider call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a journaled call with its allocated sequence.
type LLMRequestEvent struct {
	LLMRequestEventData
	Sequence  int64
	Timestamp time.Time
}

// LLMRequestQuery narrows RecentLLMRequests. Zero values match everything;
// Limit defaults to 20.
type LLMRequestQuery struct {
	Limit      int
	Purpose    string
	FailedOnly bool
}

// EventRepo records calls made to LLM providers.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// RecentLLMRequests returns matching events, newest first.
	RecentLLMRequests(ctx context.Context, q LLMRequestQuery) ([]LLMRequestEvent, error)
}
