package mockapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careerflow/internal/apiclient"
	"github.com/abhisek/careerflow/internal/interview"
)

func testConfig() Config {
	return Config{
		QuestionsPerInterview: 3,
		FinalScore:            88,
		MetricsPath:           "/metrics",
	}
}

func newTestServer(t *testing.T, cfg Config, questions QuestionSource) (*Server, *httptest.Server) {
	t.Helper()
	s := New(cfg, questions, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.close()
	})
	return s, ts
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", strings.NewReader(string(raw)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestFullInterviewThroughClient(t *testing.T) {
	_, ts := newTestServer(t, testConfig(), nil)
	client := apiclient.New(ts.URL)
	ctx := context.Background()

	q, err := client.Start(ctx, "Backend Engineer", interview.LevelIntermediate)
	require.NoError(t, err)
	assert.NotEmpty(t, q.SessionID)
	assert.Contains(t, q.Text, "walk me through your background")
	assert.Equal(t, "/audio/"+q.SessionID+"_q1.mp3", q.AudioURL)

	turn, err := client.Answer(ctx, q.SessionID, "I led the migration of our billing system")
	require.NoError(t, err)
	require.False(t, turn.Complete())
	assert.Contains(t, turn.Question.Text, "quantify the impact")
	assert.Equal(t, "/audio/"+q.SessionID+"_q2.mp3", turn.Question.AudioURL)

	turn, err = client.Answer(ctx, q.SessionID, "The hardest problem was a data race")
	require.NoError(t, err)
	require.False(t, turn.Complete())
	assert.Contains(t, turn.Question.Text, "What would you do differently")

	turn, err = client.Answer(ctx, q.SessionID, "I would add tests earlier")
	require.NoError(t, err)
	require.True(t, turn.Complete())
	assert.Equal(t, 88, turn.Result.FinalScore)
	assert.Equal(t, Scripted{}.Assess(interview.LevelIntermediate).Feedback, turn.Result.Feedback)
	assert.Len(t, turn.Result.Strengths, 3)
	assert.Len(t, turn.Result.Weaknesses, 3)

	_, err = client.Answer(ctx, q.SessionID, "one more")
	var netErr *interview.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadRequest, netErr.Status)
	assert.Equal(t, "Interview session not found", netErr.Message)
}

func TestStartValidation(t *testing.T) {
	_, ts := newTestServer(t, testConfig(), nil)

	tests := []struct {
		name string
		body startRequest
	}{
		{"missing role", startRequest{ExperienceLevel: "Expert"}},
		{"unknown level", startRequest{Role: "Analyst", ExperienceLevel: "Wizard"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, ts.URL+"/api/human_interview/start", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestAnswerRejectsEmptyText(t *testing.T) {
	_, ts := newTestServer(t, testConfig(), nil)
	_, started := postJSON(t, ts.URL+"/api/human_interview/start", startRequest{Role: "Analyst", ExperienceLevel: "Beginner"})

	resp, body := postJSON(t, ts.URL+"/api/human_interview/answer", answerRequest{
		SessionID:  started["session_id"].(string),
		AnswerText: "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "answer_text is required", body["detail"])
}

func TestBusySessionReturnsLocked(t *testing.T) {
	s, ts := newTestServer(t, testConfig(), nil)
	_, started := postJSON(t, ts.URL+"/api/human_interview/start", startRequest{Role: "Analyst", ExperienceLevel: "Expert"})
	id := started["session_id"].(string)

	sess, ok := s.sessions.get(id)
	require.True(t, ok)
	sess.busy.Lock()

	resp, body := postJSON(t, ts.URL+"/api/human_interview/answer", answerRequest{SessionID: id, AnswerText: "hello"})
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
	assert.Equal(t, "Interview session is busy", body["detail"])

	sess.busy.Unlock()
	resp, body = postJSON(t, ts.URL+"/api/human_interview/answer", answerRequest{SessionID: id, AnswerText: "hello"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, statusContinue, body["status"])
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: true, RequestsPerMin: 1, Burst: 1}
	_, ts := newTestServer(t, cfg, nil)

	req := startRequest{Role: "Analyst", ExperienceLevel: "Beginner"}
	resp, _ := postJSON(t, ts.URL+"/api/human_interview/start", req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, ts.URL+"/api/human_interview/start", req)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many requests", body["detail"])

	health, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode, "health checks are not limited")
}

func TestAudio(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "S1_q1.mp3"), []byte("ID3fake"), 0o644))

	cfg := testConfig()
	cfg.AudioDir = dir
	_, ts := newTestServer(t, cfg, nil)

	resp, err := http.Get(ts.URL + "/audio/S1_q1.mp3")
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ID3fake", string(data))

	resp, err = http.Get(ts.URL + "/audio/S1_q2.mp3")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAudioWithoutDirectory(t *testing.T) {
	_, ts := newTestServer(t, testConfig(), nil)
	resp, err := http.Get(ts.URL + "/audio/S1_q1.mp3")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, testConfig(), nil)
	postJSON(t, ts.URL+"/api/human_interview/start", startRequest{Role: "Analyst", ExperienceLevel: "Beginner"})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	text := string(data)
	assert.Contains(t, text, "careerflow_interviews_started_total 1")
	assert.Contains(t, text, "careerflow_active_sessions 1")
	assert.Contains(t, text, `careerflow_http_request_duration_seconds_count{route="/api/human_interview/start",status="200"} 1`)
}

type failingSource struct{}

func (failingSource) NextQuestion(context.Context, Transcript) (string, error) {
	return "", io.ErrUnexpectedEOF
}

func TestQuestionSourceFailureKeepsExchange(t *testing.T) {
	s, ts := newTestServer(t, testConfig(), failingSource{})
	_, started := postJSON(t, ts.URL+"/api/human_interview/start", startRequest{Role: "Analyst", ExperienceLevel: "Beginner"})
	id := started["session_id"].(string)

	resp, body := postJSON(t, ts.URL+"/api/human_interview/answer", answerRequest{SessionID: id, AnswerText: "hello"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Error processing answer", body["detail"])

	sess, ok := s.sessions.get(id)
	require.True(t, ok)
	assert.Empty(t, sess.history)
}
