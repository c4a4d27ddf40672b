package components

import "github.com/abhisek/careerflow/internal/ui/theme"

// Button renders a call to action. An inactive button is drawn dimmed.
func Button(label string, active bool) string {
	if active {
		return theme.ButtonActive.Render("[ " + label + " ]")
	}
	return theme.ButtonInactive.Render("[ " + label + " ]")
}
