package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Reply is one canned answer for a Fake.
type Reply struct {
	JSON  json.RawMessage
	Usage Usage
	Err   error
}

// Fake is a scripted Provider. Replies are consumed in order; once they run
// out every call fails with KindUnavailable.
type Fake struct {
	mu      sync.Mutex
	replies []Reply
	prompts []Prompt
}

// NewFake returns a Fake that will answer with replies.
func NewFake(replies ...Reply) *Fake {
	return &Fake{replies: replies}
}

func (f *Fake) Complete(_ context.Context, p Prompt) (*Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, p)
	if len(f.replies) == 0 {
		return nil, unavailable("mock", errors.New("no scripted replies left"))
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return &Completion{JSON: r.JSON, Usage: r.Usage, Model: "mock"}, nil
}

func (f *Fake) Name() string  { return "mock" }
func (f *Fake) Model() string { return "mock" }

// Push queues another reply.
func (f *Fake) Push(r Reply) {
	f.mu.Lock()
	f.replies = append(f.replies, r)
	f.mu.Unlock()
}

// Prompts returns the prompts received so far.
func (f *Fake) Prompts() []Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Prompt(nil), f.prompts...)
}

// Calls is the number of Complete calls made.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
