package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/comigor/tailortalk/internal/logger"
	"github.com/comigor/tailortalk/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the calendar tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol.
			logger.SetOutput(os.Stderr)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := newRegistry(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var rec mcpserver.Journal
			if j := openJournal(cfg.Journal); j != nil {
				defer j.Close()
				rec = j
			}
			return mcpserver.ServeStdio(mcpserver.New(version, registry, rec))
		},
	}
}
