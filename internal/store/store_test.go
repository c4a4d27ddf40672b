package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// Deterministic, strictly increasing clock.
	base := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// In-memory databases report journal_mode "memory"; see
		// TestFileDatabaseUsesWAL.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestDSN(t *testing.T) {
	for _, in := range []string{"/tmp/c.db", "file:/tmp/c.db"} {
		got := dsn(in)
		if !strings.HasPrefix(got, "file:/tmp/c.db?") {
			t.Errorf("dsn(%q) = %q", in, got)
		}
		if !strings.Contains(got, "_pragma=busy_timeout%285000%29") {
			t.Errorf("dsn(%q) missing busy_timeout: %q", in, got)
		}
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "careerflow.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	// Reopening runs the migration again against existing tables.
	s.Close()
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2.Close()
}

func TestTablesCreated(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{tableSessions, tableQuestions, tableAnswers, tableHistory, tableLLMEvents} {
		var got string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, name).Scan(&got)
		if err != nil {
			t.Errorf("table %s: %v", name, err)
		}
	}
}

func TestLLMRequestSequence(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	for i, purpose := range []string{"next-question", "next-question", "assessment"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider: "mock",
			Model:    "mock",
			Purpose:  purpose,
			Success:  i != 1,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.RecentLLMRequests(ctx, LLMRequestQuery{Limit: 2})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Sequence != 3 || events[1].Sequence != 2 {
		t.Errorf("sequences = %d, %d; want 3, 2", events[0].Sequence, events[1].Sequence)
	}
	if events[0].Purpose != "assessment" || events[1].Success {
		t.Errorf("unexpected events: %+v", events)
	}

	failed, err := repo.RecentLLMRequests(ctx, LLMRequestQuery{FailedOnly: true})
	if err != nil {
		t.Fatalf("failed only: %v", err)
	}
	if len(failed) != 1 || failed[0].Sequence != 2 {
		t.Errorf("failed only = %+v, want sequence 2", failed)
	}

	byPurpose, err := repo.RecentLLMRequests(ctx, LLMRequestQuery{Purpose: "next-question"})
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Errorf("got %d next-question events, want 2", len(byPurpose))
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("CAREERFLOW_DB", filepath.Join(dir, "custom", "x.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "custom", "x.db") {
		t.Errorf("path = %q", p)
	}

	t.Setenv("CAREERFLOW_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "careerflow", "careerflow.db") {
		t.Errorf("path = %q", p)
	}
}
