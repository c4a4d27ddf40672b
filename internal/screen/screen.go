// Package screen defines what the router needs from a screen.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerflow/internal/ui/layout"
)

// Screen is one page of the app. View draws only the area between the
// header and footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Leaver releases the microphone, playback or in-flight requests when a
// screen is popped, replaced or the app quits.
type Leaver interface {
	Leave() tea.Cmd
}
