package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/careerflow/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past mock interviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		page, limit = history.NormalizePage(page, limit)

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		if d.history == nil {
			fmt.Println("History is turned off (history.backend = none).")
			return nil
		}

		p, err := d.history.ListRecords(context.Background(), d.userID, page, limit)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if len(p.Records) == 0 {
			fmt.Println("No interviews recorded yet.")
			return nil
		}

		fmt.Printf("%-19s  %-16s  %s\n", "Timestamp", "Action", "Summary")
		fmt.Println(strings.Repeat("─", 80))
		for _, r := range p.Records {
			fmt.Printf("%-19s  %-16s  %s\n",
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.ActionType,
				r.SummaryText,
			)
		}
		fmt.Println(strings.Repeat("─", 80))
		fmt.Printf("Page %d of %d (%d total)\n", p.Page, p.TotalPages(), p.Total)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("page", 1, "Page number, starting at 1")
	historyCmd.Flags().Int("limit", 10, "Records per page (max 100)")
}
