package practice

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerflow/internal/coordinator"
	"github.com/abhisek/careerflow/internal/interview"
)

type scriptedClient struct {
	mu      sync.Mutex
	role    string
	level   interview.ExperienceLevel
	answers []string
}

func (c *scriptedClient) Start(_ context.Context, role string, level interview.ExperienceLevel) (*interview.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.role, c.level = role, level
	return &interview.Question{SessionID: "S1", Text: "Tell me about yourself."}, nil
}

func (c *scriptedClient) Answer(_ context.Context, _, text string) (*interview.Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = append(c.answers, text)
	if len(c.answers) >= 2 {
		return &interview.Turn{Result: &interview.Result{
			FinalScore: 88,
			Feedback:   "Solid answers.",
			Strengths:  []string{"Clarity"},
			Weaknesses: []string{"Depth"},
		}}, nil
	}
	return &interview.Turn{Question: &interview.Question{SessionID: "S1", Text: "What would you do differently?"}}, nil
}

func (c *scriptedClient) AudioURL(ref string) string { return ref }

func newScreen(t *testing.T, autostart bool) (*Screen, *scriptedClient) {
	t.Helper()
	client := &scriptedClient{}
	coord := coordinator.New(coordinator.Options{Client: client})
	t.Cleanup(coord.Close)
	return New(coord, "Backend Engineer", interview.LevelExpert, autostart), client
}

// drain runs cmd and feeds its messages back into the screen. Commands that
// do not finish quickly, such as cursor blinks, are dropped.
func drain(t *testing.T, s *Screen, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(100 * time.Millisecond):
		return
	}

	switch msg := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, s, c)
		}
	default:
		_, next := s.Update(msg)
		drain(t, s, next)
	}
}

func press(t *testing.T, s *Screen, key tea.KeyPressMsg) {
	t.Helper()
	_, cmd := s.Update(key)
	drain(t, s, cmd)
}

func typeText(t *testing.T, s *Screen, text string) {
	t.Helper()
	for _, r := range text {
		press(t, s, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

var enter = tea.KeyPressMsg{Code: tea.KeyEnter}

func TestEnterStartsInterviewWithFormValues(t *testing.T) {
	s, client := newScreen(t, false)

	press(t, s, enter)

	st := s.coord.State()
	if st.Status != interview.StatusAwaitingAnswer {
		t.Fatalf("status = %s, want awaiting_answer", st.Status)
	}
	if client.role != "Backend Engineer" || client.level != interview.LevelExpert {
		t.Errorf("started with %q/%q", client.role, client.level)
	}
	if !s.answer.Focused() {
		t.Error("answer input should be focused once the interview starts")
	}
}

func TestLevelSelectorChangesLevel(t *testing.T) {
	s, client := newScreen(t, false)

	press(t, s, tea.KeyPressMsg{Code: tea.KeyTab})
	press(t, s, tea.KeyPressMsg{Code: tea.KeyLeft})
	press(t, s, enter)

	if client.level != interview.LevelIntermediate {
		t.Errorf("level = %q, want Intermediate", client.level)
	}
}

func TestAutostart(t *testing.T) {
	s, _ := newScreen(t, true)
	drain(t, s, s.Init())

	if got := s.coord.State().Status; got != interview.StatusAwaitingAnswer {
		t.Fatalf("status = %s, want awaiting_answer", got)
	}
}

func TestTypedAnswerIsSubmitted(t *testing.T) {
	s, client := newScreen(t, true)
	drain(t, s, s.Init())

	typeText(t, s, "I scaled a queue")
	if got := s.coord.State().Answer; got != "I scaled a queue" {
		t.Fatalf("coordinator answer = %q", got)
	}

	press(t, s, enter)

	if len(client.answers) != 1 || client.answers[0] != "I scaled a queue" {
		t.Fatalf("answers = %v", client.answers)
	}
	st := s.coord.State()
	if st.QuestionNumber != 2 {
		t.Errorf("question number = %d, want 2", st.QuestionNumber)
	}
	if s.answer.Value() != "" {
		t.Errorf("input should be cleared after submit, got %q", s.answer.Value())
	}
}

func TestCompletionShowsResultAndRestart(t *testing.T) {
	s, _ := newScreen(t, true)
	drain(t, s, s.Init())

	typeText(t, s, "first")
	press(t, s, enter)
	typeText(t, s, "second")
	press(t, s, enter)

	if got := s.coord.State().Status; got != interview.StatusComplete {
		t.Fatalf("status = %s, want complete", got)
	}
	view := s.View(100, 40)
	if !strings.Contains(view, "Interview complete") || !strings.Contains(view, "88/100") {
		t.Errorf("result view missing summary:\n%s", view)
	}

	press(t, s, tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	if got := s.coord.State().Status; got != interview.StatusIdle {
		t.Fatalf("status after restart = %s, want idle", got)
	}
	if got := s.coord.State().Role; got != "Backend Engineer" {
		t.Errorf("role should be kept, got %q", got)
	}
}

func TestLeaveResetsCoordinator(t *testing.T) {
	s, _ := newScreen(t, true)
	drain(t, s, s.Init())

	s.Leave()

	st := s.coord.State()
	if st.Status != interview.StatusIdle || len(st.Chat) != 0 {
		t.Errorf("expected a fresh idle state, got %+v", st)
	}
}

func TestMicHintHiddenWithoutSpeech(t *testing.T) {
	s, _ := newScreen(t, true)
	drain(t, s, s.Init())

	for _, h := range s.KeyHints() {
		if h.Key == "Ctrl+L" {
			t.Error("mic hint should be hidden when speech is unsupported")
		}
	}
}
