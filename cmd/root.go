package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/careerflow/internal/config"
	"github.com/abhisek/careerflow/internal/logging"
	"github.com/abhisek/careerflow/internal/store"
)

var (
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "careerflow",
	Short:         "Mock interview practice in the terminal",
	Long:          "CareerFlow runs voice-enabled mock interviews against the interview API and keeps a history of your results.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = c

		l, closer, err := logging.New(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return fmt.Errorf("set up logging: %w", err)
		}
		logger, logCloser = l, closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHome(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (default: search $XDG_CONFIG_HOME/careerflow, ~/.careerflow, .)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CAREERFLOW_DB env var)")

	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then history.db_path from config, then CAREERFLOW_DB and the default XDG
// path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.History.DBPath != "" {
		return cfg.History.DBPath, store.EnsureDir(cfg.History.DBPath)
	}
	return store.DefaultDBPath()
}
