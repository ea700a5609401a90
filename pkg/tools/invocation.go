package tools

import (
	"regexp"
	"strings"
)

// Invocation is a tool call found in model output.
type Invocation struct {
	Tool Name
	Args string
}

// String renders the invocation in the grammar the model writes it in.
func (i Invocation) String() string {
	return string(i.Tool) + "(" + i.Args + ")"
}

// A call is a whole-word PascalCase identifier of at least two words directly
// followed by a parenthesised payload that ends at the first closing
// parenthesis.
var callPattern = regexp.MustCompile(`\b([A-Z][a-z0-9]+(?:[A-Z][a-z0-9]*)+)\((.*?)\)`)

// Parse returns every tool invocation in reply, left to right. Names outside
// the calendar tool set are returned too so callers can report them.
func Parse(reply string) []Invocation {
	matches := callPattern.FindAllStringSubmatch(reply, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Invocation, 0, len(matches))
	for _, m := range matches {
		out = append(out, Invocation{Tool: Name(m[1]), Args: m[2]})
	}
	return out
}

// Next picks the invocation to run from calls: the first one naming a
// calendar tool, or else the first one, so an unknown name can be reported.
func Next(calls []Invocation) (Invocation, bool) {
	if len(calls) == 0 {
		return Invocation{}, false
	}
	for _, call := range calls {
		if call.Tool.Known() {
			return call, true
		}
	}
	return calls[0], true
}

// SplitArgs splits a payload on commas and trims each field.
func SplitArgs(args string) []string {
	parts := strings.Split(args, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
