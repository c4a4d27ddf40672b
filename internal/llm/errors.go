package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Kind classifies a provider failure.
type Kind int

const (
	// KindUnavailable covers transport errors, 5xx responses and an open
	// circuit breaker.
	KindUnavailable Kind = iota
	KindRateLimited
	// KindInvalid means the reply did not parse or did not match the schema.
	KindInvalid
	// KindTruncated means the reply hit MaxTokens.
	KindTruncated
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindInvalid:
		return "invalid response"
	case KindTruncated:
		return "truncated response"
	default:
		return "provider unavailable"
	}
}

// Error is returned by every Provider in this package.
type Error struct {
	Kind     Kind
	Provider string

	// RetryAfter is the server's requested backoff for KindRateLimited.
	RetryAfter time.Duration

	// Content is the offending reply for KindInvalid and KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := "llm: " + e.Kind.String()
	if e.Provider != "" {
		msg = "llm " + e.Provider + ": " + e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err when it wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Invalid reports an unusable reply.
func Invalid(content json.RawMessage, err error) *Error {
	return &Error{Kind: KindInvalid, Content: content, Err: err}
}

func unavailable(provider string, err error) *Error {
	return &Error{Kind: KindUnavailable, Provider: provider, Err: err}
}

// fromStatus maps an HTTP status from a provider SDK error.
func fromStatus(provider string, status int, header http.Header, err error) *Error {
	if status == http.StatusTooManyRequests {
		return &Error{
			Kind:       KindRateLimited,
			Provider:   provider,
			RetryAfter: retryAfter(header),
			Err:        err,
		}
	}
	return unavailable(provider, err)
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func truncated(provider string, content json.RawMessage) *Error {
	return &Error{
		Kind:     KindTruncated,
		Provider: provider,
		Content:  content,
		Err:      fmt.Errorf("reply reached the token limit"),
	}
}
