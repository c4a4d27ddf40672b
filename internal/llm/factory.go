package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/careerflow/internal/store"
)

// NewProvider builds the configured provider. Calls flow through
// timeout, breaker, retry and journal, in that order, before reaching the
// SDK. The mock provider is returned bare.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pc := cfg.providerFor()
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "mock":
		return NewFake(), nil
	case "anthropic":
		base, err = NewAnthropic(pc)
	case "openai":
		base, err = NewOpenAI(pc)
	case "gemini":
		base, err = NewGemini(ctx, pc)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", cfg.Provider, err)
	}

	p := WithJournal(base, events, logger)
	p = WithRetry(p, cfg.Retry)
	p = WithBreaker(p, cfg.Breaker, logger)
	return WithTimeout(p, cfg.Timeout), nil
}

type timeout struct {
	Provider
	d time.Duration
}

// WithTimeout bounds each Complete call to d. A zero d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeout{Provider: p, d: d}
}

func (t *timeout) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.Provider.Complete(ctx, p)
}
