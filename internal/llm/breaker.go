package llm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker/v2"
)

// Breaker stops calling a failing provider until the breaker half-opens.
type Breaker struct {
	Provider
	cb *gobreaker.CircuitBreaker[*Completion]
}

// WithBreaker guards p with a circuit breaker. It returns p unchanged when
// cfg.MinRequests is zero.
func WithBreaker(p Provider, cfg BreakerConfig, logger *slog.Logger) Provider {
	if cfg.MinRequests == 0 {
		return p
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cb := gobreaker.NewCircuitBreaker[*Completion](gobreaker.Settings{
		Name:        p.Name() + "/" + p.Model(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			// A malformed reply means the provider is up.
			kind, _ := KindOf(err)
			return kind == KindInvalid || kind == KindTruncated
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("llm circuit breaker changed state",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})
	return &Breaker{Provider: p, cb: cb}
}

func (b *Breaker) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	c, err := b.cb.Execute(func() (*Completion, error) {
		return b.Provider.Complete(ctx, p)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, unavailable(b.Name(), err)
	}
	return c, err
}

// State is the breaker state: "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}
