package journal

import (
	"errors"
	"time"
)

var errNoPath = errors.New("journal path is empty")

// Outcome classifies a tool execution.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeUnknown Outcome = "unknown_tool"
	OutcomeError   Outcome = "error"
)

// Entry is a single executed (or rejected) tool invocation.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Tool      string    `json:"tool"`
	Args      string    `json:"args"`
	Output    string    `json:"output"`
	Outcome   Outcome   `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}
