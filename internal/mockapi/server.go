// Package mockapi is a local stand-in for the remote interview API. It
// speaks the same start/answer protocol, serves question audio from disk,
// and can draw follow-up questions from a language model.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls the server.
type Config struct {
	Addr                  string
	QuestionsPerInterview int
	FinalScore            int
	AudioDir              string
	MetricsPath           string
	ShutdownTimeout       time.Duration
	RateLimit             RateLimitConfig
}

// RateLimitConfig is the per-IP request budget.
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int
	Burst          int
}

// Server hosts the interview endpoints.
type Server struct {
	cfg       Config
	echo      *echo.Echo
	sessions  *sessionStore
	scripted  Scripted
	questions QuestionSource
	metrics   *metrics
	limiter   *limiterManager
	logger    *slog.Logger
}

// New builds a Server. A nil questions source uses the scripted
// interviewer.
func New(cfg Config, questions QuestionSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if questions == nil {
		questions = Scripted{}
	}
	if cfg.QuestionsPerInterview < 1 {
		cfg.QuestionsPerInterview = 7
	}
	if cfg.FinalScore <= 0 {
		cfg.FinalScore = 88
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:       cfg,
		echo:      echo.New(),
		sessions:  newSessionStore(),
		questions: questions,
		logger:    logger,
	}
	s.metrics = newMetrics(s.sessions.len)
	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerMin > 0 {
		s.limiter = newLimiterManager(cfg.RateLimit.RequestsPerMin, max(cfg.RateLimit.Burst, 1))
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(s.metrics.middleware())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			s.logger.Debug("http request", attrs...)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.cfg.MetricsPath != "" {
		e.GET(s.cfg.MetricsPath, echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/human_interview")
	if s.limiter != nil {
		api.Use(rateLimit(s.limiter, s.logger))
	}
	api.POST("/start", s.handleStart)
	api.POST("/answer", s.handleAnswer)

	e.GET("/audio/:file", s.handleAudio)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.echo.Listener = ln
	errs := make(chan error, 1)
	go func() {
		s.logger.Info("interview api listening", "addr", ln.Addr().String())
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err, ok := <-errs:
		s.close()
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down interview api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	defer s.close()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		return s.echo.Close()
	}
	return nil
}

func (s *Server) close() {
	if s.limiter != nil {
		s.limiter.close()
	}
}

// handleError renders every error as {"detail": "..."}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	detail := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = fmt.Sprint(he.Message)
	} else {
		s.logger.Error("unhandled request error", "path", c.Request().URL.Path, "error", err)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorBody{Detail: detail})
	}
	if err != nil {
		s.logger.Warn("write error response", "error", err)
	}
}
