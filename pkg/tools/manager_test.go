package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name Name
	desc string
}

func (s stubTool) Name() Name          { return s.name }
func (s stubTool) Format() string      { return "" }
func (s stubTool) Description() string { return s.desc }
func (s stubTool) Run(context.Context, string) (string, error) {
	return string(s.name), nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(
		stubTool{name: "FirstTool", desc: "one"},
		stubTool{name: "SecondTool", desc: "two"},
		stubTool{name: "FirstTool", desc: "replaced"},
	)

	tool, ok := r.Lookup("FirstTool")
	require.True(t, ok)
	require.Equal(t, "replaced", tool.Description())

	_, ok = r.Lookup("Missing")
	require.False(t, ok)

	list := r.List()
	require.Len(t, list, 2)
	require.Equal(t, Name("FirstTool"), list[0].Name())
	require.Equal(t, Name("SecondTool"), list[1].Name())

	require.Equal(t, "- FirstTool: replaced\n- SecondTool: two", r.Describe())
}

func TestNewCalendarRegistry(t *testing.T) {
	r := NewCalendarRegistry(nil)
	var names []Name
	for _, tool := range r.List() {
		names = append(names, tool.Name())
	}
	require.Equal(t, Names, names)
	require.Contains(t, r.Describe(), "- BookEvent: Book event with info: Summary,Date,StartTime,EndTime")
}
