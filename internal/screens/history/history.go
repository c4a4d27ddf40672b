package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerflow/internal/history"
	"github.com/abhisek/careerflow/internal/screen"
	"github.com/abhisek/careerflow/internal/ui/layout"
	"github.com/abhisek/careerflow/internal/ui/theme"
)

type pageLoadedMsg struct {
	Page history.Page
	Err  error
}

type detailsLoadedMsg struct {
	SessionID string
	Details   *history.Details
	Err       error
}

// HistoryScreen lists past interviews, newest first, one page at a time.
type HistoryScreen struct {
	adapter  history.Adapter
	userID   string
	limit    int
	page     history.Page
	selected int
	expanded map[string]bool
	details  map[string]*history.Details
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen showing limit records per page.
func New(adapter history.Adapter, userID string, limit int) *HistoryScreen {
	_, limit = history.NormalizePage(1, limit)
	return &HistoryScreen{
		adapter:  adapter,
		userID:   userID,
		limit:    limit,
		page:     history.Page{Page: 1, Limit: limit},
		expanded: make(map[string]bool),
		details:  make(map[string]*history.Details),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load(1)
}

func (s *HistoryScreen) load(page int) tea.Cmd {
	adapter, userID, limit := s.adapter, s.userID, s.limit
	return func() tea.Msg {
		p, err := adapter.ListRecords(context.Background(), userID, page, limit)
		return pageLoadedMsg{Page: p, Err: err}
	}
}

func (s *HistoryScreen) loadDetails(sessionID string) tea.Cmd {
	adapter := s.adapter
	return func() tea.Msg {
		d, err := adapter.SessionDetails(context.Background(), sessionID)
		return detailsLoadedMsg{SessionID: sessionID, Details: d, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "←→", Description: "Page"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.page = msg.Page
		s.selected = 0
		return s, nil

	case detailsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.details[msg.SessionID] = msg.Details
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.page.Records)-1 {
				s.selected++
			}
		case "right", "l", "n":
			if s.page.Page < s.page.TotalPages() {
				return s, s.load(s.page.Page + 1)
			}
		case "left", "h", "p":
			if s.page.Page > 1 {
				return s, s.load(s.page.Page - 1)
			}
		case "enter":
			return s, s.toggle()
		}
	}
	return s, nil
}

func (s *HistoryScreen) toggle() tea.Cmd {
	if s.selected >= len(s.page.Records) {
		return nil
	}
	rec := s.page.Records[s.selected]
	s.expanded[rec.ID] = !s.expanded[rec.ID]
	if s.expanded[rec.ID] && rec.SessionID != "" && s.details[rec.SessionID] == nil {
		return s.loadDetails(rec.SessionID)
	}
	return nil
}

func (s *HistoryScreen) View(width, height int) string {
	centered := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return centered.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return centered.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if len(s.page.Records) == 0 {
		return centered.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No interviews yet. Start one from the home screen!")
	}

	cw := width - 8
	if cw > 100 {
		cw = 100
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, rec := range s.page.Records {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s  %s", prefix, rec.Timestamp.Local().Format("Jan 02, 2006 15:04"), rec.SummaryText)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Width(cw).Render(line)))
		b.WriteString("\n")

		if s.expanded[rec.ID] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				renderDetail(rec, s.details[rec.SessionID], cw)))
			b.WriteString("\n")
		}
	}

	pager := fmt.Sprintf("Page %d of %d  ·  %d interviews", s.page.Page, s.page.TotalPages(), s.page.Total)
	b.WriteString("\n")
	b.WriteString(centered.Foreground(theme.TextDim).Render(pager))
	return b.String()
}

func renderDetail(rec history.Record, d *history.Details, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	var lines []string

	if fb, ok := rec.FullOutput["overall_feedback"].(string); ok && fb != "" {
		lines = append(lines, theme.Body.Width(width-4).Render(fb))
	}
	for _, key := range []string{"strengths", "weaknesses"} {
		if items := stringList(rec.FullOutput[key]); len(items) > 0 {
			lines = append(lines, dim.Render(strings.ToUpper(key[:1])+key[1:]+": ")+strings.Join(items, ", "))
		}
	}

	switch {
	case rec.SessionID == "":
	case d == nil:
		lines = append(lines, theme.Hint.Render("Loading transcript..."))
	default:
		answers := make(map[string]string, len(d.Answers))
		for _, a := range d.Answers {
			answers[a.QuestionID] = a.Text
		}
		for _, q := range d.Questions {
			lines = append(lines, theme.InterviewerName.Render(fmt.Sprintf("Q%d ", q.Number))+theme.Body.Width(width-8).Render(q.Text))
			if a, ok := answers[q.ID]; ok {
				lines = append(lines, theme.CandidateName.Render("A  ")+dim.Width(width-8).Render(a))
			}
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		PaddingLeft(4).
		Render(strings.Join(lines, "\n"))
}

// stringList accepts both []string and the []any produced by decoding JSON.
func stringList(v any) []string {
	switch v := v.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
