package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/careerflow/internal/llm"
	"github.com/abhisek/careerflow/internal/mockapi"
	"github.com/abhisek/careerflow/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local interview API for practice and development",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		questions, closeQuestions, err := newQuestionSource(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeQuestions()

		srv := mockapi.New(mockapi.Config{
			Addr:                  cfg.Server.Addr,
			QuestionsPerInterview: cfg.Server.QuestionsPerInterview,
			FinalScore:            cfg.Server.FinalScore,
			AudioDir:              cfg.Server.AudioDir,
			MetricsPath:           cfg.Server.MetricsPath,
			ShutdownTimeout:       cfg.Server.ShutdownTimeout,
			RateLimit: mockapi.RateLimitConfig{
				Enabled:        cfg.Server.RateLimit.Enabled,
				RequestsPerMin: cfg.Server.RateLimit.RequestsPerMin,
				Burst:          cfg.Server.RateLimit.Burst,
			},
		}, questions, logger)

		fmt.Printf("Interview API listening on %s\n", cfg.Server.Addr)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default: server.addr)")
}

// newQuestionSource returns the scripted interviewer unless an LLM provider
// is configured. LLM calls are journaled to the local database when the
// sqlite backend is selected.
func newQuestionSource(ctx context.Context, cmd *cobra.Command) (mockapi.QuestionSource, func(), error) {
	if cfg.LLM.Provider == "" {
		return mockapi.Scripted{}, func() {}, nil
	}

	var (
		events store.EventRepo
		closer = func() {}
	)
	if cfg.History.Backend == "sqlite" {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		events = st.EventRepo()
		closer = func() { st.Close() }
	}

	provider, err := llm.NewProvider(ctx, llmConfig(), events, logger)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("create LLM provider: %w", err)
	}

	logger.Info("using LLM question source",
		"provider", provider.Name(),
		"model", provider.Model())
	return mockapi.NewLLMQuestions(provider, mockapi.Scripted{}, logger), closer, nil
}

func llmConfig() llm.Config {
	c := llm.DefaultConfig()
	c.Provider = cfg.LLM.Provider

	c.Anthropic.APIKey = cfg.LLM.Anthropic.APIKey
	c.Anthropic.BaseURL = cfg.LLM.Anthropic.BaseURL
	if cfg.LLM.Anthropic.Model != "" {
		c.Anthropic.Model = cfg.LLM.Anthropic.Model
	}

	c.OpenAI.APIKey = cfg.LLM.OpenAI.APIKey
	c.OpenAI.BaseURL = cfg.LLM.OpenAI.BaseURL
	if cfg.LLM.OpenAI.Model != "" {
		c.OpenAI.Model = cfg.LLM.OpenAI.Model
	}

	c.Gemini.APIKey = cfg.LLM.Gemini.APIKey
	if cfg.LLM.Gemini.Model != "" {
		c.Gemini.Model = cfg.LLM.Gemini.Model
	}

	if r := cfg.LLM.Retry; r.MaxAttempts > 0 {
		c.Retry = llm.RetryConfig{
			MaxAttempts: r.MaxAttempts,
			InitialWait: r.InitialWait,
			MaxWait:     r.MaxWait,
			Multiplier:  r.Multiplier,
		}
	}

	b := cfg.Server.CircuitBreaker
	c.Breaker = llm.BreakerConfig{
		MaxRequests:      b.MaxRequests,
		Interval:         b.Interval,
		Timeout:          b.Timeout,
		MinRequests:      b.MinRequests,
		FailureThreshold: b.FailureThreshold,
	}

	if cfg.LLM.Timeout > 0 {
		c.Timeout = cfg.LLM.Timeout
	}
	return c
}
