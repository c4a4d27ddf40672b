package apiclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/abhisek/careerflow/internal/interview"
)

// LockRetry retries a request once when the server reports the session is
// locked by a concurrent operation.
type LockRetry struct {
	// Delay is the fixed wait before the second attempt.
	Delay time.Duration

	// wait blocks for d or until ctx is done. Tests replace it.
	wait func(ctx context.Context, d time.Duration) error
}

// DefaultLockRetry waits one second before retrying.
func DefaultLockRetry() LockRetry {
	return LockRetry{Delay: time.Second}
}

// Do runs fn, and runs it a second time if the first attempt hit a lock
// conflict. A second conflict is surfaced as a NetworkError wrapping the
// LockConflictError.
func (r LockRetry) Do(ctx context.Context, logger *slog.Logger, fn func() error) error {
	err := fn()
	var lock *interview.LockConflictError
	if !errors.As(err, &lock) {
		return err
	}

	logger.Info("interview session locked, retrying",
		"session_id", lock.SessionID,
		"delay", r.Delay)

	if err := r.sleep(ctx, r.Delay); err != nil {
		return err
	}

	err = fn()
	if errors.As(err, &lock) {
		return &interview.NetworkError{
			Status:  http.StatusLocked,
			Message: lock.Error(),
			Err:     lock,
		}
	}
	return err
}

func (r LockRetry) sleep(ctx context.Context, d time.Duration) error {
	if r.wait != nil {
		return r.wait(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
