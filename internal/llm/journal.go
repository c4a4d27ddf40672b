package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/careerflow/internal/store"
)

type journaled struct {
	Provider
	repo   store.EventRepo
	logger *slog.Logger
}

// WithJournal records every call to p as an llm request event. A nil repo
// only logs. Failing to store an event does not fail the call.
func WithJournal(p Provider, repo store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &journaled{Provider: p, repo: repo, logger: logger}
}

func (j *journaled) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	start := time.Now()
	c, err := j.Provider.Complete(ctx, p)

	ev := store.LLMRequestEventData{
		Provider:    j.Name(),
		Model:       j.Model(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: renderPrompt(p),
	}
	if c != nil {
		ev.Model = c.Model
		ev.InputTokens = c.Usage.InputTokens
		ev.OutputTokens = c.Usage.OutputTokens
		ev.ResponseBody = string(c.JSON)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		var e *Error
		if errors.As(err, &e) && len(e.Content) > 0 {
			ev.ResponseBody = string(e.Content)
		}
	}

	j.logger.Debug("llm request",
		"provider", ev.Provider,
		"model", ev.Model,
		"purpose", ev.Purpose,
		"latency_ms", ev.LatencyMs,
		"success", ev.Success)

	if j.repo != nil {
		if serr := j.repo.AppendLLMRequest(context.WithoutCancel(ctx), ev); serr != nil {
			j.logger.Warn("store llm request event", "error", serr)
		}
	}
	return c, err
}

// renderPrompt is the human-readable request body kept in the journal.
func renderPrompt(p Prompt) string {
	var b strings.Builder
	if p.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", p.System)
	}
	for _, t := range p.Turns {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", t.Role, t.Text)
	}
	if p.Schema != nil {
		if def, err := json.Marshal(p.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema %s]\n%s\n", p.Schema.Name, def)
		}
	}
	return b.String()
}
