package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerflow/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used by boxed sections so
// they line up.
func ContentWidth(frameWidth int) int {
	// Leave room for the frame border (2) and inner padding (4)
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Frame wraps content in a rounded border, centered within the given
// dimensions.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
