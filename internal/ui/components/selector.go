package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerflow/internal/ui/theme"
)

// Selector is a horizontal single-choice picker.
type Selector struct {
	Label    string
	Options  []string
	Selected int
	Focused  bool
}

// NewSelector creates a selector with the option equal to current chosen,
// or the first option if none matches.
func NewSelector(label string, options []string, current string) Selector {
	s := Selector{Label: label, Options: options}
	for i, o := range options {
		if o == current {
			s.Selected = i
			break
		}
	}
	return s
}

// Value returns the chosen option, or "" when there are none.
func (s Selector) Value() string {
	if s.Selected < 0 || s.Selected >= len(s.Options) {
		return ""
	}
	return s.Options[s.Selected]
}

// Update moves the selection with the arrow keys while focused.
func (s Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || !s.Focused {
		return s, nil
	}

	switch kmsg.String() {
	case "left", "h":
		if s.Selected > 0 {
			s.Selected--
		}
	case "right", "l":
		if s.Selected < len(s.Options)-1 {
			s.Selected++
		}
	}
	return s, nil
}

// View renders the selector on one line.
func (s Selector) View() string {
	parts := make([]string, len(s.Options))
	for i, o := range s.Options {
		switch {
		case i == s.Selected && s.Focused:
			parts[i] = theme.ButtonActive.Render(o)
		case i == s.Selected:
			parts[i] = theme.Selected.Render("[" + o + "]")
		default:
			parts[i] = theme.Unselected.Render(" " + o + " ")
		}
	}

	label := lipgloss.NewStyle().Foreground(theme.TextDim).Render(s.Label)
	return label + "  " + strings.Join(parts, " ")
}
