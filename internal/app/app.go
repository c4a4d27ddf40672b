// Package app is the root bubbletea model: it frames the active screen and
// owns the global keys.
package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerflow/internal/router"
	"github.com/abhisek/careerflow/internal/screen"
	"github.com/abhisek/careerflow/internal/ui/layout"
)

// AppModel wraps a screen stack in the header and footer chrome.
type AppModel struct {
	router *router.Router
	status string
	width  int
	height int
}

// New starts with root on the stack. status is shown at the right of the
// header, usually the signed-in user.
func New(root screen.Screen, status string) AppModel {
	return AppModel{router: router.New(root), status: status}
}

func (m AppModel) Init() tea.Cmd {
	if top := m.router.Active(); top != nil {
		return top.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
		return m, nil
	}

	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "ctrl+c":
			// Screens stop the microphone and playback before the program exits.
			return m, tea.Sequence(m.router.Close(), tea.Quit)
		case "esc":
			if m.router.Depth() < 2 {
				return m, nil
			}
			return m, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}

	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	switch {
	case m.width == 0 || m.height == 0:
		return ""
	case layout.IsTooSmall(m.width, m.height):
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	top := m.router.Active()
	var title string
	if top != nil {
		title = top.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)
	footer := layout.RenderFooter(m.hints(top), m.width)
	room := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	return layout.RenderFrame(header, m.router.View(m.width, room), footer, m.width, m.height)
}

func (m AppModel) hints(top screen.Screen) []layout.KeyHint {
	if hp, ok := top.(screen.KeyHintProvider); ok {
		return hp.KeyHints()
	}
	quit := layout.KeyHint{Key: "Ctrl+C", Description: "Quit"}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}, quit}
	}
	return []layout.KeyHint{{Key: "↑↓", Description: "Move"}, {Key: "Enter", Description: "Open"}, quit}
}

// Run blocks until the program exits.
func Run(m AppModel) error {
	_, err := tea.NewProgram(m).Run()
	return err
}
