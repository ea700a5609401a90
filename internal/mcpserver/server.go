// Package mcpserver exposes the calendar tools to MCP clients over stdio.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/tailortalk/internal/journal"
	"github.com/comigor/tailortalk/internal/logger"
	"github.com/comigor/tailortalk/pkg/tools"
)

// SessionID tags journal entries written by MCP tool calls.
const SessionID = "mcp"

// Journal records executed tool calls.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// New builds an MCP server with one MCP tool per registry tool. Each takes
// the same comma-separated payload the chat model writes, as "args".
func New(version string, registry *tools.Registry, j Journal) *server.MCPServer {
	s := server.NewMCPServer("tailortalk", version,
		server.WithToolCapabilities(false),
	)
	for _, t := range registry.List() {
		s.AddTool(mcp.NewTool(string(t.Name()),
			mcp.WithDescription(t.Description()),
			mcp.WithString("args",
				mcp.Required(),
				mcp.Description(fmt.Sprintf("Comma-separated %s", t.Format())),
			),
		), handler(t, j))
	}
	return s
}

// ServeStdio blocks serving s on stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func handler(t tools.Tool, j Journal) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.GetArguments()["args"].(string)
		if !ok {
			return mcp.NewToolResultError("args is required"), nil
		}
		logger.L.Debug("mcp tool call", "tool", t.Name(), "args", args)

		out, err := t.Run(ctx, args)
		entry := journal.Entry{SessionID: SessionID, Tool: string(t.Name()), Args: args, Output: out, Outcome: journal.OutcomeOK}
		if err != nil {
			entry.Output, entry.Outcome = err.Error(), journal.OutcomeError
		}
		if j != nil {
			if jerr := j.Record(ctx, entry); jerr != nil {
				logger.L.Warn("failed to journal tool call", "tool", t.Name(), "error", jerr)
			}
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", t.Name(), err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
