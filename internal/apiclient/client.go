package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/careerflow/internal/interview"
)

const (
	startPath  = "/api/human_interview/start"
	answerPath = "/api/human_interview/answer"

	statusContinue = "continue"
	statusComplete = "complete"
)

// Client talks to the remote interview API. It keeps no state between
// calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      LockRetry
	logger     *slog.Logger

	timeout    time.Duration
	hasTimeout bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout. Zero disables it. It applies to
// a copy of the HTTP client, whatever order the options come in.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout, c.hasTimeout = d, true }
}

// WithLockRetry overrides the lock-conflict retry policy.
func WithLockRetry(r LockRetry) Option {
	return func(c *Client) { c.retry = r }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		retry:      DefaultLockRetry(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hasTimeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Start opens a new interview session and returns its first question.
func (c *Client) Start(ctx context.Context, role string, level interview.ExperienceLevel) (*interview.Question, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, &interview.ValidationError{Field: "role", Message: "Please enter the role you are interviewing for."}
	}
	if strings.TrimSpace(string(level)) == "" {
		return nil, &interview.ValidationError{Field: "experience_level", Message: "Please choose an experience level."}
	}

	var resp turnResponse
	err := c.post(ctx, startPath, "", startRequest{Role: role, ExperienceLevel: string(level)}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Status != statusContinue {
		return nil, &interview.NetworkError{
			Status:  http.StatusOK,
			Message: fmt.Sprintf("unexpected start status %q", resp.Status),
		}
	}
	if resp.SessionID == "" {
		return nil, &interview.NetworkError{Status: http.StatusOK, Message: "start response has no session_id"}
	}

	return &interview.Question{
		SessionID: resp.SessionID,
		Text:      resp.QuestionText,
		AudioURL:  resp.AudioURL,
	}, nil
}

// Answer submits an answer and returns either the next question or the
// final result.
func (c *Client) Answer(ctx context.Context, sessionID, answerText string) (*interview.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, &interview.ValidationError{Field: "session_id", Message: "No interview session is active."}
	}
	if strings.TrimSpace(answerText) == "" {
		return nil, &interview.ValidationError{Field: "answer_text", Message: "Please enter an answer."}
	}

	var resp turnResponse
	err := c.post(ctx, answerPath, sessionID, answerRequest{SessionID: sessionID, AnswerText: answerText}, &resp)
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case statusComplete:
		return &interview.Turn{Result: resp.result()}, nil
	case statusContinue:
		return &interview.Turn{Question: &interview.Question{
			SessionID: sessionID,
			Text:      resp.QuestionText,
			AudioURL:  resp.AudioURL,
		}}, nil
	default:
		return nil, &interview.NetworkError{
			Status:  http.StatusOK,
			Message: fmt.Sprintf("unexpected answer status %q", resp.Status),
		}
	}
}

// AudioURL resolves a clip reference against the API host.
func (c *Client) AudioURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

// post sends body as JSON, retrying once on a lock conflict, and decodes
// a 2xx response into out.
func (c *Client) post(ctx context.Context, path, sessionID string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	return c.retry.Do(ctx, c.logger, func() error {
		return c.doPost(ctx, path, sessionID, payload, out)
	})
}

func (c *Client) doPost(ctx context.Context, path, sessionID string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &interview.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &interview.NetworkError{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusLocked {
		return &interview.LockConflictError{SessionID: sessionID, Message: serverMessage(raw)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &interview.NetworkError{Status: resp.StatusCode, Message: serverMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &interview.NetworkError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// serverMessage extracts a human-readable message from an error body.
func serverMessage(raw []byte) string {
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// IsLockConflict reports whether err came from a 423 response.
func IsLockConflict(err error) bool {
	var lock *interview.LockConflictError
	return errors.As(err, &lock)
}
