package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/comigor/tailortalk/internal/journal"
)

func newJournalCmd() *cobra.Command {
	var (
		sessionID string
		limit     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recently executed tool calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			j := journal.New(cfg.Journal.Path)
			defer j.Close()

			entries, err := j.List(cmd.Context(), sessionID, limit)
			if err != nil {
				return fmt.Errorf("list journal: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No tool calls recorded.")
				return nil
			}
			fmt.Fprintln(out, renderEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Only show calls from this session")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func renderEntries(entries []journal.Entry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "SESSION", "TOOL", "ARGS", "OUTCOME")
	for _, e := range entries {
		t.Row(e.CreatedAt.Local().Format(time.DateTime), e.SessionID, e.Tool, e.Args, string(e.Outcome))
	}
	return t.String()
}
