// Package notice is a read-only screen for features that are switched off.
package notice

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerflow/internal/screen"
	"github.com/abhisek/careerflow/internal/ui/components"
	"github.com/abhisek/careerflow/internal/ui/theme"
)

type Notice struct {
	title string
	body  string
}

var _ screen.Screen = (*Notice)(nil)

func New(title, body string) *Notice {
	return &Notice{title: title, body: body}
}

func (n *Notice) Init() tea.Cmd                           { return nil }
func (n *Notice) Update(tea.Msg) (screen.Screen, tea.Cmd) { return n, nil }
func (n *Notice) Title() string                           { return n.title }

func (n *Notice) View(width, height int) string {
	cw := components.ContentWidth(width)
	card := theme.Card.Width(cw).Render(lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Width(cw-6).Render(n.title),
		"",
		theme.Body.Width(cw-6).Align(lipgloss.Center).Render(n.body),
		"",
		theme.Hint.Render("Esc to go back"),
	))
	return components.Frame(card, width, height)
}
