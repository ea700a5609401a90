package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the tailortalk application
var rootCmd = &cobra.Command{
	Use:   "tailortalk",
	Short: "Chat assistant that manages a calendar",
	Long: `tailortalk books, lists, deletes and reschedules calendar events
through a conversation with a language model.

It can run as:
  - An HTTP chat server (serve)
  - A terminal chat client for that server (chat)
  - An MCP (Model Context Protocol) server exposing the calendar tools (mcp)`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "tailortalk version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newJournalCmd())
}
