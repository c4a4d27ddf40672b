package practice

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerflow/internal/coordinator"
	"github.com/abhisek/careerflow/internal/interview"
	"github.com/abhisek/careerflow/internal/ui/components"
	"github.com/abhisek/careerflow/internal/ui/layout"
	"github.com/abhisek/careerflow/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	st := s.coord.State()
	switch st.Status {
	case interview.StatusIdle, interview.StatusStarting:
		return s.renderSetup(st, width, height)
	case interview.StatusComplete:
		return renderResult(st, width, height)
	default:
		return s.renderInterview(st, width, height)
	}
}

func (s *Screen) renderSetup(st coordinator.State, width, height int) string {
	cw := components.ContentWidth(width)
	s.role.SetWidth(cw - 10)

	var sections []string
	if !layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight) {
		sections = append(sections,
			theme.Title.Width(cw).Render("Practice an interview"),
			theme.Subtitle.Width(cw).Render("Tell us the role and your experience level."),
		)
	}

	sections = append(sections, s.role.View(), s.level.View())

	switch {
	case st.Status == interview.StatusStarting:
		sections = append(sections, theme.Busy.Render("Starting interview..."))
	default:
		sections = append(sections, components.Button("Start interview", true))
	}
	if st.Err != "" {
		sections = append(sections, theme.ErrorText.Width(cw).Render(st.Err))
	}

	card := theme.Card.Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *Screen) renderInterview(st coordinator.State, width, height int) string {
	cw := width - 4
	if cw < 20 {
		cw = 20
	}
	s.answer.SetWidth(cw - 4)

	heading := theme.Selected.Render(fmt.Sprintf("Question %d", st.QuestionNumber)) +
		theme.Hint.Render(fmt.Sprintf("  ·  %s (%s)", st.Role, st.Level))

	var footer []string
	if st.Partial != "" {
		footer = append(footer, theme.Partial.Width(cw).Render("… "+st.Partial))
	}
	footer = append(footer, theme.Bubble.Width(cw).Render(s.answer.View()))
	if line := statusLine(st); line != "" {
		footer = append(footer, line)
	}
	if st.Err != "" {
		footer = append(footer, theme.ErrorText.Width(cw).Render(st.Err))
	}
	bottom := strings.Join(footer, "\n")

	chatHeight := height - lipgloss.Height(heading) - lipgloss.Height(bottom) - 2
	chat := renderChat(st.Chat, cw, chatHeight)

	return lipgloss.NewStyle().Padding(0, 2).Render(
		heading + "\n\n" + chat + "\n" + bottom)
}

// renderChat renders the transcript, keeping the most recent lines that fit
// in height.
func renderChat(chat []interview.ChatMessage, width, height int) string {
	if height <= 0 {
		return ""
	}

	var blocks []string
	for _, m := range chat {
		name := theme.InterviewerName.Render("Interviewer")
		if m.Speaker == interview.SpeakerUser {
			name = theme.CandidateName.Render("You")
		}
		stamp := theme.Hint.Render(m.CreatedAt.Format("15:04"))
		text := theme.Body.Width(width).Render(m.Text)
		blocks = append(blocks, name+" "+stamp+"\n"+text)
	}

	lines := strings.Split(strings.Join(blocks, "\n\n"), "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func statusLine(st coordinator.State) string {
	var parts []string
	switch {
	case st.Status == interview.StatusSubmitting:
		parts = append(parts, theme.Busy.Render("Submitting answer..."))
	case st.Listening:
		parts = append(parts, theme.Listening.Render("● Listening"))
	case st.MicPending:
		parts = append(parts, theme.Busy.Render("Opening microphone..."))
	}
	if st.Playing {
		parts = append(parts, theme.Hint.Render("♪ Playing question"))
	}
	return strings.Join(parts, "   ")
}

func renderResult(st coordinator.State, width, height int) string {
	res := st.Result
	if res == nil {
		return ""
	}
	cw := components.ContentWidth(width)

	sections := []string{
		theme.Title.Width(cw).Render("Interview complete"),
		components.ScoreBar(res.FinalScore, cw-4),
		theme.Body.Width(cw).Render(res.Feedback),
	}
	if len(res.Strengths) > 0 {
		sections = append(sections, renderList("Strengths", theme.Success, res.Strengths, cw))
	}
	if len(res.Weaknesses) > 0 {
		sections = append(sections, renderList("To improve", theme.Accent, res.Weaknesses, cw))
	}

	card := theme.Card.Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func renderList(title string, c color.Color, items []string, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(c).Bold(true).Render(title))
	for _, it := range items {
		b.WriteString("\n")
		b.WriteString(theme.Body.Width(width).Render("  • " + it))
	}
	return b.String()
}
