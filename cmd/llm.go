package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/abhisek/careerflow/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect question-generation calls journaled by the local server",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent provider calls",
	RunE:  runLLMList,
}

func runLLMList(cmd *cobra.Command, _ []string) error {
	var q store.LLMRequestQuery
	q.Limit, _ = cmd.Flags().GetInt("limit")
	q.Purpose, _ = cmd.Flags().GetString("purpose")
	q.FailedOnly, _ = cmd.Flags().GetBool("failed")

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	events, err := s.EventRepo().RecentLLMRequests(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("list LLM requests: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("Nothing journaled yet. Run `careerflow serve` with an llm.provider configured.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tWHEN\tPURPOSE\tPROVIDER\tMODEL\tTOKENS\tLATENCY\tRESULT")
	for _, e := range events {
		result := "ok"
		if !e.Success {
			result = "failed: " + clip(e.ErrorMessage, 48)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d/%d\t%dms\t%s\n",
			e.Sequence,
			e.Timestamp.Local().Format("01-02 15:04:05"),
			e.Purpose,
			e.Provider,
			clip(e.Model, 32),
			e.InputTokens, e.OutputTokens,
			e.LatencyMs,
			result)
	}
	return tw.Flush()
}

// clip shortens s to at most n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func init() {
	f := llmListCmd.Flags()
	f.IntP("limit", "n", 20, "maximum rows to show")
	f.StringP("purpose", "p", "", "only show calls made for this purpose")
	f.Bool("failed", false, "only show failed calls")

	llmCmd.AddCommand(llmListCmd)
}
