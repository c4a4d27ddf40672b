package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/careerflow/internal/app"
	"github.com/abhisek/careerflow/internal/coordinator"
	"github.com/abhisek/careerflow/internal/interview"
	"github.com/abhisek/careerflow/internal/screen"
	historyscreen "github.com/abhisek/careerflow/internal/screens/history"
	"github.com/abhisek/careerflow/internal/screens/home"
	"github.com/abhisek/careerflow/internal/screens/practice"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Start a mock interview straight away",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, levelName := cfg.Interview.DefaultRole, cfg.Interview.DefaultLevel
		if cmd.Flags().Changed("role") {
			role, _ = cmd.Flags().GetString("role")
		}
		if cmd.Flags().Changed("level") {
			levelName, _ = cmd.Flags().GetString("level")
		}
		level, err := interview.ParseLevel(levelName)
		if err != nil {
			return err
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		coord, stop, err := newCoordinator(d)
		if err != nil {
			return err
		}
		defer stop()
		warnSpeech(coord)

		return app.Run(app.New(practice.New(coord, role, level, true), d.email))
	},
}

func init() {
	interviewCmd.Flags().String("role", "", "Role you are interviewing for (default: interview.default_role)")
	interviewCmd.Flags().String("level", "", "Experience level: Beginner, Intermediate or Expert (default: interview.default_level)")
}

// runHome launches the TUI on the home menu.
func runHome(cmd *cobra.Command) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.close()

	coord, stop, err := newCoordinator(d)
	if err != nil {
		return err
	}
	defer stop()
	warnSpeech(coord)

	level, err := interview.ParseLevel(cfg.Interview.DefaultLevel)
	if err != nil {
		level = interview.DefaultLevel
	}

	screens := home.Screens{
		Interview: func() screen.Screen {
			return practice.New(coord, cfg.Interview.DefaultRole, level, false)
		},
	}
	if d.history != nil {
		screens.History = func() screen.Screen {
			return historyscreen.New(d.history, d.userID, 10)
		}
	}

	return app.Run(app.New(home.New(screens, d.email), d.email))
}

func warnSpeech(coord *coordinator.Coordinator) {
	if cfg.Speech.Enabled && !coord.SpeechSupported() {
		logger.Warn("speech input enabled but unavailable; check ffmpeg and speech.deepgram.api_key")
		warnf("Voice input is unavailable, type your answers instead.")
	}
}
