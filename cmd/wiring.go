package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/careerflow/internal/apiclient"
	"github.com/abhisek/careerflow/internal/coordinator"
	"github.com/abhisek/careerflow/internal/history"
	"github.com/abhisek/careerflow/internal/playback"
	"github.com/abhisek/careerflow/internal/speech"
	"github.com/abhisek/careerflow/internal/store"
	"github.com/abhisek/careerflow/internal/supabase"
)

// deps holds everything the TUI commands share. close releases it in
// reverse order of construction.
type deps struct {
	history history.Adapter // nil when history.backend is none
	userID  string
	email   string
	closers []func()
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// openDeps opens the configured history backend and resolves the user.
func openDeps(cmd *cobra.Command) (*deps, error) {
	d := &deps{userID: cfg.User.ID, email: cfg.User.Email}

	if d.userID == "" {
		if path, err := supabase.DefaultSessionPath(); err == nil {
			sess, err := supabase.LoadSession(path)
			if err != nil {
				logger.Warn("ignoring saved session", "path", path, "error", err)
			} else if sess != nil {
				d.userID, d.email = sess.UserID, sess.Email
			}
		}
	}

	switch cfg.History.Backend {
	case "sqlite":
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		d.closers = append(d.closers, func() { st.Close() })
		d.history = st.History()

	case "supabase":
		client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key)
		if err != nil {
			return nil, err
		}
		d.history = supabase.NewHistory(client)
	}

	return d, nil
}

// newCoordinator builds a coordinator and its collaborators. The returned
// func stops them and flushes pending history writes.
func newCoordinator(d *deps) (*coordinator.Coordinator, func(), error) {
	client := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLockRetry(apiclient.LockRetry{Delay: cfg.API.LockRetryDelay}),
		apiclient.WithLogger(logger.With("component", "apiclient")),
	)

	var recognizer speech.Recognizer = speech.Nop{}
	if cfg.Speech.Enabled {
		capture := speech.NewFFmpegCapture(speech.CaptureConfig{
			Command:     cfg.Speech.FFmpeg.Command,
			InputFormat: cfg.Speech.FFmpeg.InputFormat,
			InputDevice: cfg.Speech.FFmpeg.InputDevice,
		})
		transcriber := speech.NewDeepgram(speech.DeepgramConfig{
			APIKey:      cfg.Speech.Deepgram.APIKey,
			BaseURL:     cfg.Speech.Deepgram.BaseURL,
			Model:       cfg.Speech.Deepgram.Model,
			Language:    cfg.Speech.Deepgram.Language,
			SmartFormat: true,
		})
		recognizer = speech.NewStreaming(capture, transcriber, logger.With("component", "speech"))
	}

	var player playback.Controller = &playback.Nop{}
	var closePlayer func()
	if cfg.Playback.Enabled {
		exec, err := playback.NewExec(
			playback.WithRunner(playback.CommandRunner(cfg.Playback.Player, cfg.Playback.Args...)),
			playback.WithLogger(logger.With("component", "playback")),
		)
		if err != nil {
			return nil, nil, err
		}
		player = exec
		closePlayer = func() { exec.Close() }
	}

	var recorder coordinator.Recorder
	var journal *history.Journal
	if d.history != nil {
		journal = history.NewJournal(d.history, d.userID, logger.With("component", "history"))
		recorder = journal
	}

	coord := coordinator.New(coordinator.Options{
		Client:          client,
		Recognizer:      recognizer,
		Player:          player,
		Recorder:        recorder,
		Logger:          logger.With("component", "coordinator"),
		AutoSubmitDelay: cfg.Interview.AutoSubmitDelay,
	})

	stop := func() {
		coord.Close()
		if journal != nil {
			journal.Close()
		}
		if closePlayer != nil {
			closePlayer()
		}
	}
	return coord, stop, nil
}

// warnf prints a non-fatal problem to stderr.
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
