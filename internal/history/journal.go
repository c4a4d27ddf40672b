package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/careerflow/internal/interview"
)

const (
	journalQueueSize = 64
	opTimeout        = 10 * time.Second
)

// Journal writes one coordinator's interview history in order, off the UI
// thread. It owns the mapping from the remote session to the local record
// and current question ids. Enqueueing never blocks; when the queue is
// full the write is dropped and logged.
type Journal struct {
	adapter Adapter
	userID  string
	logger  *slog.Logger
	now     func() time.Time

	ops  chan func(context.Context)
	done chan struct{}

	closeMu sync.RWMutex
	closed  bool

	// Worker-owned.
	attempt attempt
}

type attempt struct {
	remoteID    string
	role        string
	level       interview.ExperienceLevel
	recordID    string
	questionID  string
	questionNum int
	finished    bool
}

// NewJournal starts the journal worker.
func NewJournal(adapter Adapter, userID string, logger *slog.Logger) *Journal {
	if adapter == nil {
		adapter = Nop{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	j := &Journal{
		adapter: adapter,
		userID:  userID,
		logger:  logger,
		now:     time.Now,
		ops:     make(chan func(context.Context), journalQueueSize),
		done:    make(chan struct{}),
	}
	go j.run()
	return j
}

func (j *Journal) run() {
	defer close(j.done)
	for op := range j.ops {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		op(ctx)
		cancel()
	}
}

func (j *Journal) enqueue(name string, op func(context.Context)) {
	j.closeMu.RLock()
	defer j.closeMu.RUnlock()
	if j.closed {
		j.logger.Warn("history journal closed, dropping write", "op", name)
		return
	}
	select {
	case j.ops <- op:
	default:
		j.logger.Warn("history journal full, dropping write", "op", name)
	}
}

// Begin starts a new attempt: it creates the session record and records
// the first question.
func (j *Journal) Begin(remoteID, role string, level interview.ExperienceLevel, q interview.Question) {
	startedAt := j.now()
	j.enqueue("begin", func(ctx context.Context) {
		j.attempt = attempt{remoteID: remoteID, role: role, level: level}
		id, err := j.adapter.CreateSession(ctx, NewSession{
			UserID:          j.userID,
			Role:            role,
			ExperienceLevel: level,
			RemoteSessionID: remoteID,
			StartedAt:       startedAt,
		})
		if err != nil {
			j.logger.Error("create session record", "session_id", remoteID, "error", err)
			return
		}
		j.attempt.recordID = id
		j.recordQuestion(ctx, q)
	})
}

// Question records the next question of the current attempt.
func (j *Journal) Question(q interview.Question) {
	j.enqueue("question", func(ctx context.Context) {
		if j.attempt.recordID == "" {
			return
		}
		j.recordQuestion(ctx, q)
	})
}

func (j *Journal) recordQuestion(ctx context.Context, q interview.Question) {
	number := j.attempt.questionNum + 1
	id, err := j.adapter.RecordQuestion(ctx, j.attempt.recordID, number, q.Text, q.AudioURL)
	if err != nil {
		j.logger.Error("record question",
			"session_id", j.attempt.remoteID,
			"question_number", number,
			"error", err)
		return
	}
	j.attempt.questionNum = number
	j.attempt.questionID = id
}

// Answer records the answer to the current question.
func (j *Journal) Answer(text string) {
	j.enqueue("answer", func(ctx context.Context) {
		if j.attempt.recordID == "" || j.attempt.questionID == "" {
			return
		}
		if err := j.adapter.RecordAnswer(ctx, j.attempt.recordID, j.attempt.questionID, text); err != nil {
			j.logger.Error("record answer", "session_id", j.attempt.remoteID, "error", err)
		}
	})
}

// Complete stores the final result and appends the activity record.
func (j *Journal) Complete(result interview.Result) {
	j.enqueue("complete", func(ctx context.Context) {
		if j.attempt.recordID == "" || j.attempt.finished {
			return
		}
		j.attempt.finished = true
		if err := j.adapter.CompleteSession(ctx, j.attempt.recordID, result); err != nil {
			j.logger.Error("complete session record", "session_id", j.attempt.remoteID, "error", err)
		}
		rec := CompletionRecord(j.userID, j.attempt.recordID, j.attempt.role, j.attempt.level, result)
		if _, err := j.adapter.AppendRecord(ctx, rec); err != nil {
			j.logger.Error("append history record", "session_id", j.attempt.remoteID, "error", err)
		}
	})
}

// Cancel marks an unfinished attempt as cancelled and forgets it.
func (j *Journal) Cancel() {
	j.enqueue("cancel", func(ctx context.Context) {
		defer func() { j.attempt = attempt{} }()
		if j.attempt.recordID == "" || j.attempt.finished {
			return
		}
		if err := j.adapter.CancelSession(ctx, j.attempt.recordID); err != nil {
			j.logger.Error("cancel session record", "session_id", j.attempt.remoteID, "error", err)
		}
	})
}

// Close stops accepting writes and waits for queued writes to finish.
func (j *Journal) Close() {
	j.closeMu.Lock()
	if !j.closed {
		j.closed = true
		close(j.ops)
	}
	j.closeMu.Unlock()
	<-j.done
}
