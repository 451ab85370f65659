package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/deepgram/chatdesk/internal/widget"
)

// chromeHeight is the number of lines taken by the title, input and help rows.
const chromeHeight = 4

type changedMsg struct{}

type Model struct {
	ctx        context.Context
	title      string
	surface    *surface
	controller *widget.Controller
	viewport   viewport.Model
	input      textinput.Model
	width      int
	height     int
	quitting   bool
}

// NewModel wires a controller to a fresh terminal surface.
func NewModel(ctx context.Context, title string, backend widget.Backend, opts ...widget.Option) Model {
	s := newSurface()

	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 2000
	ti.Focus()

	m := Model{
		ctx:        ctx,
		title:      title,
		surface:    s,
		controller: widget.NewController(s, backend, opts...),
		viewport:   viewport.New(80, 20),
		input:      ti,
		width:      80,
		height:     20 + chromeHeight,
	}
	m.refresh()
	return m
}

// Controller exposes the widget controller, mainly for tests and shutdown.
func (m Model) Controller() *widget.Controller {
	return m.controller
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	changes := m.surface.changes
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeHeight)
		m.input.Width = max(10, msg.Width-6)
		m.refresh()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			m.controller.Submit(m.ctx, m.input.Value())
			m.refresh()
			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh re-renders the message list and applies pending input/scroll requests.
func (m *Model) refresh() {
	if m.surface.takeClear() {
		m.input.Reset()
	}

	m.viewport.SetContent(renderItems(m.surface.Items(), m.width))
	if m.surface.ScrollTop() >= m.surface.ScrollHeight() {
		m.viewport.GotoBottom()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send • pgup/pgdown scroll • esc quit"))
	return b.String()
}
