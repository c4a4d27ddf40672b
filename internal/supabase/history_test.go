package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careerflow/internal/history"
	"github.com/abhisek/careerflow/internal/interview"
)

type seenRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// fakePostgREST echoes inserted rows and serves canned selects.
type fakePostgREST struct {
	mu      sync.Mutex
	seen    []seenRequest
	selects map[string]string
	total   string
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	table := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	f.mu.Lock()
	f.seen = append(f.seen, seenRequest{Method: r.Method, Path: table, Query: r.URL.RawQuery, Body: body})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodPost, http.MethodPatch:
		w.WriteHeader(http.StatusCreated)
		if len(raw) == 0 || raw[0] != '[' {
			raw = append(append([]byte("["), raw...), ']')
		}
		w.Write(raw)
	case http.MethodGet:
		if f.total != "" {
			w.Header().Set("Content-Range", f.total)
		}
		if out, ok := f.selects[table]; ok {
			w.Write([]byte(out))
			return
		}
		w.Write([]byte("[]"))
	}
}

func (f *fakePostgREST) requests() []seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]seenRequest(nil), f.seen...)
}

func newTestHistory(t *testing.T, fake *fakePostgREST) *History {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, "anon-key")
	require.NoError(t, err)
	return NewHistory(client)
}

func TestHistory_WritesInterviewRows(t *testing.T) {
	fake := &fakePostgREST{}
	h := newTestHistory(t, fake)
	ctx := context.Background()

	id, err := h.CreateSession(ctx, history.NewSession{
		UserID:          "u1",
		Role:            "Backend Engineer",
		ExperienceLevel: interview.LevelExpert,
		RemoteSessionID: "S1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	qid, err := h.RecordQuestion(ctx, id, 1, "Tell me about a scaling challenge.", "/audio/S1_q1.mp3")
	require.NoError(t, err)
	require.NoError(t, h.RecordAnswer(ctx, id, qid, "We sharded the DB"))
	require.NoError(t, h.CompleteSession(ctx, id, interview.Result{FinalScore: 90, Feedback: "Strong technical depth"}))

	reqs := fake.requests()
	require.Len(t, reqs, 4)

	assert.Equal(t, tableSessions, reqs[0].Path)
	assert.Equal(t, "in_progress", reqs[0].Body["status"])
	assert.Equal(t, "Expert", reqs[0].Body["experience_level"])

	assert.Equal(t, tableQuestions, reqs[1].Path)
	assert.Equal(t, id, reqs[1].Body["session_id"])
	assert.EqualValues(t, 1, reqs[1].Body["question_number"])

	assert.Equal(t, tableAnswers, reqs[2].Path)
	assert.Equal(t, qid, reqs[2].Body["question_id"])

	assert.Equal(t, http.MethodPatch, reqs[3].Method)
	assert.Contains(t, reqs[3].Query, "id=eq."+id)
	assert.Equal(t, "completed", reqs[3].Body["status"])
	assert.EqualValues(t, 90, reqs[3].Body["final_score"])
	assert.Equal(t, []any{}, reqs[3].Body["strengths"])
}

func TestHistory_CancelFiltersInProgress(t *testing.T) {
	fake := &fakePostgREST{}
	h := newTestHistory(t, fake)

	require.NoError(t, h.CancelSession(context.Background(), "rec1"))
	reqs := fake.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
	assert.Contains(t, reqs[0].Query, "id=eq.rec1")
	assert.Contains(t, reqs[0].Query, "status=eq.in_progress")
	assert.Equal(t, "cancelled", reqs[0].Body["status"])
}

func TestHistory_ListRecords(t *testing.T) {
	fake := &fakePostgREST{
		total: "0-1/5",
		selects: map[string]string{
			tableHistory: `[
				{"id":"h2","user_id":"u1","timestamp":"2026-01-02T10:00:00Z","agent_name":"interview","action_type":"mock_interview","summary_text":"second"},
				{"id":"h1","user_id":"u1","timestamp":"2026-01-02T09:00:00Z","agent_name":"interview","action_type":"mock_interview","summary_text":"first"}
			]`,
		},
	}
	h := newTestHistory(t, fake)

	page, err := h.ListRecords(context.Background(), "u1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "second", page.Records[0].SummaryText)

	q := fake.requests()[0].Query
	assert.Contains(t, q, "user_id=eq.u1")
	assert.Contains(t, q, "order=timestamp.desc")
}

func TestHistory_SessionDetails(t *testing.T) {
	fake := &fakePostgREST{
		selects: map[string]string{
			tableSessions:  `[{"id":"rec1","role":"Analyst","experience_level":"Beginner","status":"completed","started_at":"2026-01-02T09:00:00Z","final_score":88,"strengths":["Clarity"]}]`,
			tableQuestions: `[{"id":"q1","session_id":"rec1","question_number":1,"question_text":"Q1","created_at":"2026-01-02T09:00:01Z"}]`,
			tableAnswers:   `[{"id":"a1","session_id":"rec1","question_id":"q1","answer_text":"A1","created_at":"2026-01-02T09:00:02Z"}]`,
		},
	}
	h := newTestHistory(t, fake)

	d, err := h.SessionDetails(context.Background(), "rec1")
	require.NoError(t, err)
	assert.Equal(t, interview.LevelBeginner, d.Session.ExperienceLevel)
	require.NotNil(t, d.Session.FinalScore)
	assert.Equal(t, 88, *d.Session.FinalScore)
	require.Len(t, d.Questions, 1)
	require.Len(t, d.Answers, 1)
	assert.Equal(t, "q1", d.Answers[0].QuestionID)
}

func TestHistory_SessionDetailsNotFound(t *testing.T) {
	h := newTestHistory(t, &fakePostgREST{})
	_, err := h.SessionDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient("", "")
	assert.Error(t, err)
}

func TestSessionFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "careerflow", "session.json")

	s, err := LoadSession(path)
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, SaveSession(path, &Session{UserID: "u1", Email: "a@b.c"}))
	s, err = LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "a@b.c", s.Email)
}

func TestDefaultSessionPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	p, err := DefaultSessionPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "careerflow", "session.json"), p)
}

func TestAuthValidatesCredentials(t *testing.T) {
	a := NewAuth(nil)
	_, err := a.SignIn("", "pw")
	assert.Error(t, err)
	_, err = a.SignUp("a@b.c", "")
	assert.Error(t, err)
}
