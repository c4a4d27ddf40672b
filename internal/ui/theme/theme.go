// Package theme holds the palette and shared lipgloss styles.
package theme

import "charm.land/lipgloss/v2"

// Palette, tuned for dark terminals.
var (
	Primary   = lipgloss.Color("#818CF8")
	Secondary = lipgloss.Color("#2DD4BF")
	Accent    = lipgloss.Color("#FBBF24")
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#FB7185")
	Text      = lipgloss.Color("#E2E8F0")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#475569")
)

var (
	Title     = lipgloss.NewStyle().Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Subtitle  = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Body      = lipgloss.NewStyle().Foreground(Text)
	Hint      = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	ErrorText = lipgloss.NewStyle().Foreground(Error)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// Transcript.
var (
	InterviewerName = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	CandidateName   = lipgloss.NewStyle().Foreground(Accent).Bold(true)

	// Bubble frames the answer box.
	Bubble = lipgloss.NewStyle().
		Foreground(Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(0, 1)

	// Partial is the live speech preview under the answer box.
	Partial = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
)

// Status and controls.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Listening  = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Busy       = lipgloss.NewStyle().Foreground(Accent)

	ProgressEmpty = lipgloss.NewStyle().Foreground(Border)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgCard).
			Bold(true).
			Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Padding(0, 2)
)
