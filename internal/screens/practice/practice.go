// Package practice is the mock interview screen: a setup form, the live
// chat transcript and the final assessment.
package practice

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerflow/internal/coordinator"
	"github.com/abhisek/careerflow/internal/interview"
	"github.com/abhisek/careerflow/internal/screen"
	"github.com/abhisek/careerflow/internal/ui/components"
	"github.com/abhisek/careerflow/internal/ui/layout"
)

type setupFocus int

const (
	focusRole setupFocus = iota
	focusLevel
)

// Screen renders a Coordinator and turns key presses into its messages.
type Screen struct {
	coord     *coordinator.Coordinator
	role      components.TextInput
	level     components.Selector
	answer    components.TextInput
	focus     setupFocus
	autostart bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Leaver = (*Screen)(nil)

// New creates the screen. With autostart the interview begins as soon as
// the screen is shown, using role and level as entered.
func New(coord *coordinator.Coordinator, role string, level interview.ExperienceLevel, autostart bool) *Screen {
	if role == "" {
		role = interview.DefaultRole
	}
	if !level.Valid() {
		level = interview.DefaultLevel
	}

	levels := make([]string, len(interview.Levels))
	for i, l := range interview.Levels {
		levels[i] = string(l)
	}

	roleInput := components.NewTextInput("Role", "e.g. Backend Engineer", 80)
	roleInput.SetValue(role)

	answer := components.NewTextInput("", "Type your answer, or press Ctrl+L to speak...", 0)
	answer.Blur()

	return &Screen{
		coord:     coord,
		role:      roleInput,
		level:     components.NewSelector("Level", levels, string(level)),
		answer:    answer,
		autostart: autostart,
	}
}

func (s *Screen) Init() tea.Cmd {
	if s.autostart {
		return tea.Batch(s.role.Init(), s.start())
	}
	return s.role.Init()
}

func (s *Screen) Title() string {
	return "Mock Interview"
}

// Leave cancels the running interview.
func (s *Screen) Leave() tea.Cmd {
	s.coord.Update(coordinator.ResetMsg{})
	return nil
}

func (s *Screen) KeyHints() []layout.KeyHint {
	st := s.coord.State()
	switch st.Status {
	case interview.StatusIdle, interview.StatusStarting:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Switch field"},
			{Key: "←→", Description: "Level"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case interview.StatusComplete:
		return []layout.KeyHint{
			{Key: "Ctrl+N", Description: "Try another"},
			{Key: "Esc", Description: "Back"},
		}
	}

	hints := []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
	if s.coord.SpeechSupported() {
		mic := "Speak"
		if st.Listening || st.MicPending {
			mic = "Stop mic"
		}
		hints = append(hints, layout.KeyHint{Key: "Ctrl+L", Description: mic})
	}
	if s.coord.CanReplay() {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Replay"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+N", Description: "Restart"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		return s, s.handleKey(kmsg)
	}

	cmd := s.coord.Update(msg)
	s.sync()

	// Cursor blink and other input-internal messages.
	var inputCmd tea.Cmd
	if s.answer.Focused() {
		s.answer, inputCmd = s.answer.Update(msg)
	} else if s.role.Focused() {
		s.role, inputCmd = s.role.Update(msg)
	}
	return s, tea.Batch(cmd, inputCmd)
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch s.coord.State().Status {
	case interview.StatusIdle, interview.StatusStarting:
		return s.handleSetupKey(msg)
	case interview.StatusComplete:
		if msg.String() == "ctrl+n" || msg.String() == "enter" {
			return s.restart()
		}
		return nil
	default:
		return s.handleInterviewKey(msg)
	}
}

func (s *Screen) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return s.toggleFocus()
	case "enter":
		if s.coord.State().Status == interview.StatusStarting {
			return nil
		}
		return s.start()
	}

	var cmd tea.Cmd
	if s.focus == focusRole {
		s.role, cmd = s.role.Update(msg)
	} else {
		s.level, cmd = s.level.Update(msg)
	}
	return cmd
}

func (s *Screen) handleInterviewKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch msg.String() {
	case "enter":
		cmd = s.coord.Update(coordinator.SubmitMsg{})
	case "ctrl+l":
		cmd = s.coord.Update(coordinator.ToggleListeningMsg{})
	case "ctrl+r":
		cmd = s.coord.Update(coordinator.ReplayMsg{})
	case "ctrl+n":
		return s.restart()
	default:
		if s.coord.State().Status != interview.StatusAwaitingAnswer {
			return nil
		}
		before := s.answer.Value()
		s.answer, cmd = s.answer.Update(msg)
		if after := s.answer.Value(); after != before {
			return tea.Batch(cmd, s.coord.Update(coordinator.SetAnswerMsg{Text: after}))
		}
		return cmd
	}
	s.sync()
	return cmd
}

func (s *Screen) toggleFocus() tea.Cmd {
	if s.focus == focusRole {
		s.focus = focusLevel
		s.role.Blur()
		s.level.Focused = true
		return nil
	}
	s.focus = focusRole
	s.level.Focused = false
	return s.role.Focus()
}

func (s *Screen) start() tea.Cmd {
	role := s.role.Value()
	level := interview.ExperienceLevel(s.level.Value())
	return func() tea.Msg {
		return coordinator.StartMsg{Role: role, Level: level}
	}
}

func (s *Screen) restart() tea.Cmd {
	s.coord.Update(coordinator.ResetMsg{})
	s.answer.SetValue("")
	s.answer.Blur()
	s.focus = focusRole
	s.level.Focused = false
	return s.role.Focus()
}

// sync mirrors coordinator state into the inputs after every transition.
func (s *Screen) sync() {
	st := s.coord.State()
	switch st.Status {
	case interview.StatusAwaitingAnswer, interview.StatusSubmitting:
		if s.role.Focused() {
			s.role.Blur()
			s.level.Focused = false
		}
		if !s.answer.Focused() {
			s.answer.Focus()
		}
		if s.answer.Value() != st.Answer {
			s.answer.SetValue(st.Answer)
		}
	default:
		if s.answer.Focused() {
			s.answer.Blur()
		}
	}
}
