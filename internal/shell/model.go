package shell

import (
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const headerHeight = 2

// Model is the Bubbletea model of the shell: a scrollback viewport above a
// single input line.
type Model struct {
	session *Session
	version string

	width  int
	height int
	ready  bool

	input    textinput.Model
	viewport viewport.Model
	lines    []string
}

func New(session *Session, version string) Model {
	ti := textinput.New()
	ti.Prompt = PromptStyle.Render("arx> ")
	ti.Placeholder = "def, extern or an expression (:help)"
	ti.CharLimit = 4096
	ti.Focus()

	return Model{
		session: session,
		version: version,
		input:   ti,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			res := m.session.Eval(m.input.Value())
			m.input.Reset()

			for _, l := range res.Lines {
				m.lines = append(m.lines, render(l))
			}

			m.refresh()

			if res.Quit {
				return m, tea.Quit
			}

			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - headerHeight - 1
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}

		m.input.Width = msg.Width - 6
		m.refresh()
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}

	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Arx " + m.version))
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(strings.Join(m.lines, "\n"))
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())

	return b.String()
}

// Lines returns the rendered scrollback.
func (m Model) Lines() []string {
	return m.lines
}

// Run starts the shell on the given terminal streams and blocks until it
// exits.
func Run(session *Session, version string, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(session, version), tea.WithInput(in), tea.WithOutput(out))

	_, err := p.Run()
	return err
}
