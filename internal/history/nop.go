package history

import (
	"context"

	"github.com/abhisek/careerflow/internal/interview"
)

// Nop discards all writes and reports an empty history.
type Nop struct{}

func (Nop) CreateSession(context.Context, NewSession) (string, error) { return "", nil }

func (Nop) RecordQuestion(context.Context, string, int, string, string) (string, error) {
	return "", nil
}

func (Nop) RecordAnswer(context.Context, string, string, string) error { return nil }

func (Nop) CompleteSession(context.Context, string, interview.Result) error { return nil }

func (Nop) CancelSession(context.Context, string) error { return nil }

func (Nop) AppendRecord(context.Context, Record) (string, error) { return "", nil }

func (Nop) ListRecords(_ context.Context, _ string, page, limit int) (Page, error) {
	page, limit = NormalizePage(page, limit)
	return Page{Page: page, Limit: limit}, nil
}

func (Nop) SessionDetails(context.Context, string) (*Details, error) { return nil, ErrNotFound }
