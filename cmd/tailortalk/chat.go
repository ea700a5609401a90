package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/comigor/tailortalk/internal/chatclient"
	"github.com/comigor/tailortalk/internal/logger"
	"github.com/comigor/tailortalk/internal/ui"
)

func newChatCmd() *cobra.Command {
	var (
		endpoint string
		logFile  string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a terminal chat with a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs would corrupt the screen, so they go to a file.
			f, err := tea.LogToFile(logFile, "chat")
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			logger.SetOutput(f)

			client := chatclient.New(endpoint, nil)
			p := tea.NewProgram(ui.NewModel(client), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run chat: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", chatclient.DefaultEndpoint, "Chat endpoint URL")
	cmd.Flags().StringVar(&logFile, "log-file", "tailortalk-chat.log", "File to write logs to while the chat is open")
	return cmd
}
