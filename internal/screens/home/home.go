package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerflow/internal/router"
	"github.com/abhisek/careerflow/internal/screen"
	"github.com/abhisek/careerflow/internal/screens/notice"
	"github.com/abhisek/careerflow/internal/ui/components"
	"github.com/abhisek/careerflow/internal/ui/theme"
)

const titleFull = ` ╔═╗┌─┐┬─┐┌─┐┌─┐┬─┐  ╔═╗┬  ┌─┐┬ ┬
 ║  ├─┤├┬┘├┤ ├┤ ├┬┘  ╠╣ │  │ ││││
 ╚═╝┴ ┴┴└─└─┘└─┘┴└─  ╚  ┴─┘└─┘└┴┘`

const titleCompact = "C A R E E R F L O W"

// Screens builds the screens reachable from the home menu. A nil
// History means history is disabled.
type Screens struct {
	Interview func() screen.Screen
	History   func() screen.Screen
}

// HomeScreen is the main menu.
type HomeScreen struct {
	menu components.Menu
	user string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a HomeScreen. user is shown as the signed-in identity and may
// be empty.
func New(screens Screens, user string) *HomeScreen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: build()}
			}
		}
	}

	historyAction := push(screens.History)
	if screens.History == nil {
		historyAction = push(func() screen.Screen {
			return notice.New("History",
				"History is turned off.\nSet history.backend to sqlite or supabase to keep a record.")
		})
	}

	items := []components.MenuItem{
		{Label: "START INTERVIEW", Description: "pick a role and begin", Action: push(screens.Interview), Disabled: screens.Interview == nil},
		{Label: "HISTORY", Description: "past sessions and scores", Action: historyAction},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		menu: components.NewMenu(items),
		user: user,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 20 || width < 90
	cw := components.ContentWidth(width)

	title := titleFull
	if compact {
		title = titleCompact
	}

	sections := []string{
		lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Render(theme.Title.Render(title)),
		theme.Subtitle.Width(cw).Render("Mock interviews with voice, feedback and history"),
	}
	if h.user != "" {
		sections = append(sections, theme.Hint.Width(cw).Align(lipgloss.Center).Render("Signed in as "+h.user))
	}
	sections = append(sections, lipgloss.NewStyle().Width(cw).Render(h.menu.View()))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
