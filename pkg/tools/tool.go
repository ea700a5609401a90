package tools

import "context"

// Name identifies a tool in model output, e.g. "BookEvent".
type Name string

// The closed set of calendar tools the assistant understands.
const (
	CheckAvailability Name = "CheckAvailability"
	BookEvent         Name = "BookEvent"
	DeleteEvent       Name = "DeleteEvent"
	RescheduleEvent   Name = "RescheduleEvent"
)

// Names lists the tool names in the order they are presented to the model.
var Names = []Name{CheckAvailability, BookEvent, DeleteEvent, RescheduleEvent}

// Known reports whether n is one of the calendar tool names.
func (n Name) Known() bool {
	for _, known := range Names {
		if n == known {
			return true
		}
	}
	return false
}

// Tool is the interface for all tools
type Tool interface {
	Name() Name
	// Format describes the comma-separated argument payload.
	Format() string
	Description() string
	// Run executes the tool on the raw argument payload. The returned
	// string is fed back to the model; an error aborts the conversation.
	Run(ctx context.Context, args string) (string, error)
}
