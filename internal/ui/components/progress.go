package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerflow/internal/ui/theme"
)

// ScoreBar draws a 0-100 score as a bar followed by "N/100". The bar is
// green from 80, amber from 60 and rose below.
func ScoreBar(score, width int) string {
	score = min(max(score, 0), 100)
	label := fmt.Sprintf("  %d/100", score)

	barWidth := max(width-lipgloss.Width(label), 10)
	filled := barWidth * score / 100

	bar := lipgloss.NewStyle().Foreground(scoreColor(score)).Render(strings.Repeat("█", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat("░", barWidth-filled))
	return bar + theme.Selected.Render(label)
}

func scoreColor(score int) color.Color {
	switch {
	case score >= 80:
		return theme.Success
	case score >= 60:
		return theme.Accent
	default:
		return theme.Error
	}
}
