package tools

import (
	"fmt"
	"strings"
)

// Registry maps tool names to tools. It is filled once at startup and only
// read afterwards.
type Registry struct {
	tools map[Name]Tool
	order []Name
}

// NewRegistry creates a registry holding tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[Name]Tool, len(tools))}
	for _, t := range tools {
		r.register(t)
	}
	return r
}

func (r *Registry) register(tool Tool) {
	if _, exists := r.tools[tool.Name()]; !exists {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

// Lookup retrieves a tool by name
func (r *Registry) Lookup(name Name) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools in registration order
func (r *Registry) List() []Tool {
	ts := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		ts = append(ts, r.tools[name])
	}
	return ts
}

// Describe renders one "- Name: description" line per tool.
func (r *Registry) Describe() string {
	var b strings.Builder
	for i, t := range r.List() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", t.Name(), t.Description())
	}
	return b.String()
}
