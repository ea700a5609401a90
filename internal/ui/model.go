// Package ui is the terminal chat front end.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorText    = lipgloss.Color("#cdd6f4")
	colorSubtext = lipgloss.Color("#9399b2")
	colorUser    = lipgloss.Color("#89b4fa")
	colorBot     = lipgloss.Color("#a6e3a1")
	colorAccent  = lipgloss.Color("#cba6f7")
	colorBorder  = lipgloss.Color("#45475a")
	colorActive  = lipgloss.Color("#f9e2af")

	styleBase = lipgloss.NewStyle().Foreground(colorText)

	styleTitle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			PaddingLeft(1)

	styleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	styleFocusBorder = styleBorder.BorderForeground(colorActive)

	styleUserHeader = lipgloss.NewStyle().
			Foreground(colorUser).
			Bold(true).
			MarginTop(1)

	styleBotHeader = lipgloss.NewStyle().
			Foreground(colorBot).
			Bold(true).
			MarginTop(1)

	styleStatus = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Italic(true)
)

const (
	title       = "📅 TailorTalk - Calendar Assistant"
	placeholder = "Ask me to book or check your calendar..."
	// One answer can take several model round trips.
	requestTimeout = 3 * time.Minute
)

// Sender delivers a message and returns the text to show.
// *chatclient.Client implements it.
type Sender interface {
	Send(ctx context.Context, message string) string
}

// Role of a displayed message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the local display history.
type Message struct {
	Role    Role
	Content string
}

type State int

const (
	StateReady State = iota
	StateThinking
)

type Model struct {
	sender   Sender
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	state    State
	history  []Message

	width  int
	height int
}

func newTextarea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.Focus()
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 500
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorSubtext)
	ta.FocusedStyle.Text = lipgloss.NewStyle().Foreground(colorText)
	return ta
}

func NewModel(sender Sender) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := Model{
		sender:   sender,
		textarea: newTextarea(),
		viewport: viewport.New(80, 20),
		spinner:  s,
		state:    StateReady,
	}
	m.render()
	return m
}

// History returns the messages shown so far.
func (m Model) History() []Message {
	return append([]Message(nil), m.history...)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

type replyMsg struct {
	content string
}

func (m Model) send(input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return replyMsg{content: m.sender.Send(ctx, input)}
	}
}

// render rebuilds the viewport from the display history.
func (m *Model) render() {
	var b strings.Builder
	if len(m.history) == 0 {
		b.WriteString(styleStatus.Render("Try: \"Am I free on 2025-07-06?\" or \"Book Team Sync tomorrow 11:00-12:00\""))
	}
	for _, msg := range m.history {
		if msg.Role == RoleUser {
			b.WriteString(styleUserHeader.Render("You"))
		} else {
			b.WriteString(styleBotHeader.Render("CalendarBot"))
		}
		b.WriteString("\n")
		b.WriteString(styleBase.Width(max(m.viewport.Width-2, 20)).Render(msg.Content))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Title (1) + chat borders (2) + status (1) + input (2 + 2 borders)
		viewportHeight := msg.Height - 8
		if viewportHeight < 5 {
			viewportHeight = 5
		}
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = viewportHeight
		m.textarea.SetWidth(msg.Width - 6)
		m.render()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if msg.Alt || m.state != StateReady {
				break
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.history = append(m.history, Message{Role: RoleUser, Content: input})
			m.state = StateThinking
			m.render()

			m.textarea = newTextarea()
			m.textarea.SetWidth(m.width - 6)
			return m, tea.Batch(m.send(input), m.spinner.Tick)
		}

	case replyMsg:
		m.state = StateReady
		m.history = append(m.history, Message{Role: RoleAssistant, Content: msg.content})
		m.render()
		m.textarea.Focus()
		return m, nil

	case spinner.TickMsg:
		if m.state == StateThinking {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if m.state == StateReady {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := styleTitle.Render(title)
	chatView := styleBorder.Width(m.width - 2).Render(m.viewport.View())

	var status string
	if m.state == StateThinking {
		status = " " + m.spinner.View() + " " + styleStatus.Render("Thinking...")
	} else {
		status = styleStatus.Render(" Enter to send, Esc to quit.")
	}

	inputView := styleFocusBorder.Width(m.width - 2).Render(m.textarea.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, chatView, status, inputView)
}
