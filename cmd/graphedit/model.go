package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-graphedit/pkg/codec"
	"github.com/dd0wney/cluso-graphedit/pkg/config"
	"github.com/dd0wney/cluso-graphedit/pkg/editor"
	"github.com/dd0wney/cluso-graphedit/pkg/pathfind"
	"github.com/dd0wney/cluso-graphedit/pkg/visualization"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// Rows outside the canvas: title above, status and message below. Help
// height varies and is measured.
const (
	canvasTop   = 1
	chromeLines = 3
)

type keyMap struct {
	Multi   key.Binding
	Start   key.Binding
	End     key.Binding
	Connect key.Binding
	Find    key.Binding
	Clear   key.Binding
	Rename  key.Binding
	Delete  key.Binding
	Save    key.Binding
	Load    key.Binding
	Arrange key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Multi, k.Start, k.End, k.Find, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Multi, k.Connect, k.Rename, k.Delete},
		{k.Start, k.End, k.Find, k.Arrange},
		{k.Save, k.Load, k.Clear},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Multi: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "multi-connect"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "path start"),
	),
	End: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "path end"),
	),
	Connect: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "connect to start"),
	),
	Find: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "find path"),
	),
	Clear: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear all"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete node"),
	),
	Save: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "save"),
	),
	Load: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Arrange: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "auto layout"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type prompt int

const (
	promptNone prompt = iota
	promptRename
	promptSave
	promptLoad
)

func (p prompt) label() string {
	switch p {
	case promptRename:
		return "Name: "
	case promptSave:
		return "Save to: "
	case promptLoad:
		return "Open: "
	}
	return ""
}

type tickMsg time.Time

type pathMsg pathfind.Outcome

type model struct {
	ctx   context.Context
	ctrl  *editor.Controller
	frame *visualization.Frame
	cfg   *config.Config

	keys  keyMap
	help  help.Model
	input textinput.Model

	prompt   prompt
	location string
	layout   string

	width, height int
	rows          int

	// Last cell of a right-button drag; panning sends the delta from it.
	panning    bool
	panX, panY int

	message    string
	messageErr bool
}

func newModel(ctx context.Context, ctrl *editor.Controller, cfg *config.Config) model {
	ti := textinput.New()
	ti.CharLimit = 256

	return model{
		ctx:    ctx,
		ctrl:   ctrl,
		frame:  ctrl.Frame(),
		cfg:    cfg,
		keys:   keys,
		help:   help.New(),
		input:  ti,
		layout: visualization.LayoutNames[len(visualization.LayoutNames)-1],
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.cfg.UI.TickInterval), waitForPath(m.ctrl.PathResults()))
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForPath delivers the next background search outcome.
func waitForPath(results <-chan pathfind.Outcome) tea.Cmd {
	if results == nil {
		return nil
	}
	return func() tea.Msg {
		o, ok := <-results
		if !ok {
			return nil
		}
		return pathMsg(o)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-len(m.prompt.label())-2, 10)
		m.resize()

	case tickMsg:
		m.dispatch(editor.Tick{})
		cmds = append(cmds, tickCmd(m.cfg.UI.TickInterval))

	case pathMsg:
		wasPending := m.frame.Summary.PathPending
		m.dispatch(editor.ApplyPath{Outcome: pathfind.Outcome(msg)})
		if wasPending && !m.frame.Summary.PathPending {
			m.reportPath()
		}
		cmds = append(cmds, waitForPath(m.ctrl.PathResults()))

	case tea.MouseMsg:
		m.mouse(msg)

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		cmds = append(cmds, m.key(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *model) key(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keys.Multi):
		m.dispatch(editor.ToggleMultiConnect{})
	case key.Matches(msg, m.keys.Start):
		m.dispatch(editor.SetPathStart{})
	case key.Matches(msg, m.keys.End):
		m.dispatch(editor.SetPathEnd{})
	case key.Matches(msg, m.keys.Connect):
		m.dispatch(editor.ConnectSelectedPair{})
	case key.Matches(msg, m.keys.Find):
		if m.dispatch(editor.FindPath{}) == nil {
			m.reportPath()
		}
	case key.Matches(msg, m.keys.Clear):
		if m.dispatch(editor.ClearAll{}) == nil {
			m.setMessage("cleared")
		}
	case key.Matches(msg, m.keys.Delete):
		m.dispatch(editor.DeleteSelected{})
	case key.Matches(msg, m.keys.Arrange):
		m.layout = visualization.NextLayout(m.layout)
		if m.dispatch(editor.Arrange{Layout: m.layout}) == nil {
			m.setMessage(m.layout + " layout")
		}
	case key.Matches(msg, m.keys.Rename):
		sel, ok := m.frame.Node(m.frame.Summary.Selected)
		if !ok {
			m.setError(errors.New("select a node to rename"))
			return nil
		}
		return m.openPrompt(promptRename, sel.Name)
	case key.Matches(msg, m.keys.Save):
		return m.openPrompt(promptSave, m.location)
	case key.Matches(msg, m.keys.Load):
		return m.openPrompt(promptLoad, m.location)
	}
	return nil
}

func (m *model) openPrompt(p prompt, value string) tea.Cmd {
	m.prompt = p
	m.input.Prompt = p.label()
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		p, value := m.prompt, strings.TrimSpace(m.input.Value())
		m.closePrompt()
		m.submit(p, value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.Reset()
}

func (m *model) submit(p prompt, value string) {
	switch p {
	case promptRename:
		if m.dispatch(editor.Rename{To: value}) == nil {
			m.setMessage("renamed " + m.frame.Summary.Selected + " to " + m.frame.Summary.SelectedName)
		}
	case promptSave:
		if value == "" {
			return
		}
		if m.dispatch(editor.Save{Location: value}) == nil {
			// Remember the written name so the load prompt finds it.
			m.location = codec.EnsureExtension(value)
			m.setMessage("saved " + m.location)
		}
	case promptLoad:
		if value == "" {
			return
		}
		if m.dispatch(editor.Load{Location: value}) == nil {
			m.location = value
			m.setMessage(fmt.Sprintf("loaded %s: %d nodes, %d edges", value, m.frame.Summary.Nodes, m.frame.Summary.Edges))
		}
	}
}

// mouse turns terminal mouse events into pointer commands. Cells map to
// the pixel at their centre.
func (m *model) mouse(msg tea.MouseMsg) {
	row := msg.Y - canvasTop
	if row < 0 || row >= m.rows {
		m.panning = false
		return
	}
	px := (float64(msg.X) + 0.5) * m.cfg.UI.CellWidth
	py := (float64(row) + 0.5) * m.cfg.UI.CellHeight

	switch msg.Button {
	case tea.MouseButtonLeft:
		switch msg.Action {
		case tea.MouseActionPress:
			m.dispatch(editor.PrimaryClick{X: px, Y: py})
		case tea.MouseActionMotion:
			m.dispatch(editor.PrimaryDrag{X: px, Y: py})
		}
	case tea.MouseButtonRight:
		switch msg.Action {
		case tea.MouseActionPress:
			m.panning, m.panX, m.panY = true, msg.X, row
		case tea.MouseActionMotion:
			if m.panning {
				m.dispatch(editor.SecondaryDrag{
					DX: float64(msg.X-m.panX) * m.cfg.UI.CellWidth,
					DY: float64(row-m.panY) * m.cfg.UI.CellHeight,
				})
			}
			m.panning, m.panX, m.panY = true, msg.X, row
		case tea.MouseActionRelease:
			m.panning = false
		}
	case tea.MouseButtonWheelUp:
		m.dispatch(editor.Scroll{Delta: 1, X: px, Y: py})
	case tea.MouseButtonWheelDown:
		m.dispatch(editor.Scroll{Delta: -1, X: px, Y: py})
	case tea.MouseButtonNone:
		if msg.Action == tea.MouseActionRelease {
			m.panning = false
		}
	}
}

// resize fits the canvas between the chrome rows and tells the editor
// the new viewport in pixels.
func (m *model) resize() {
	if m.width == 0 {
		return
	}
	helpLines := lipgloss.Height(m.help.View(m.keys))
	m.rows = max(m.height-chromeLines-helpLines, 1)
	m.dispatch(editor.Resize{
		Width:  float64(m.width) * m.cfg.UI.CellWidth,
		Height: float64(m.rows) * m.cfg.UI.CellHeight,
	})
}

func (m *model) dispatch(cmd editor.Command) error {
	frame, err := m.ctrl.Dispatch(m.ctx, cmd)
	m.frame = frame
	if err != nil {
		m.setError(err)
	}
	return err
}

func (m *model) reportPath() {
	s := m.frame.Summary
	switch {
	case s.PathStart == "" || s.PathEnd == "":
		m.setError(errors.New("set both path anchors first"))
	case s.PathPending:
		m.setMessage("searching...")
	case s.PathLength == 0:
		m.setError(fmt.Errorf("no path from %s to %s", label(s.PathStartName, s.PathStart), label(s.PathEndName, s.PathEnd)))
	default:
		m.setMessage(fmt.Sprintf("path %s -> %s: %d nodes, cost %.2f",
			label(s.PathStartName, s.PathStart), label(s.PathEndName, s.PathEnd), s.PathLength, s.PathCost))
	}
}

func (m *model) setMessage(s string) {
	m.message, m.messageErr = s, false
}

func (m *model) setError(err error) {
	m.message, m.messageErr = err.Error(), true
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("graphedit"))
	if m.location != "" {
		s.WriteString(helpStyle.Render("  " + m.location))
	}
	s.WriteString("\n")

	cv := rasterize(m.frame, m.width, m.rows, m.cfg.UI.CellWidth, m.cfg.UI.CellHeight)
	s.WriteString(cv.Render())
	s.WriteString("\n")

	s.WriteString(statusStyle.Render(statusLine(m.frame.Summary, m.layout)))
	s.WriteString("\n")

	switch {
	case m.prompt != promptNone:
		s.WriteString(m.input.View())
	case m.message == "":
	case m.messageErr:
		s.WriteString(errorStyle.Render("✗ " + m.message))
	default:
		s.WriteString(successStyle.Render("✓ " + m.message))
	}
	s.WriteString("\n")

	s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return s.String()
}

// statusLine summarises the editor state in one row.
func statusLine(s visualization.Summary, layout string) string {
	parts := []string{
		fmt.Sprintf("nodes %d", s.Nodes),
		fmt.Sprintf("edges %d", s.Edges),
	}
	if s.Selected != "" {
		parts = append(parts, "selected "+label(s.SelectedName, s.Selected))
	}
	if s.MultiConnect {
		parts = append(parts, fmt.Sprintf("multi-connect (%d)", s.ChainLength))
	}
	if s.PathStart != "" || s.PathEnd != "" {
		anchors := label(s.PathStartName, s.PathStart) + " -> " + label(s.PathEndName, s.PathEnd)
		switch {
		case s.PathPending:
			anchors += " searching"
		case s.PathLength > 0:
			anchors += fmt.Sprintf(" cost %.2f", s.PathCost)
		}
		parts = append(parts, anchors)
	}
	parts = append(parts, fmt.Sprintf("zoom %.2fx", s.Zoom), layout)
	return strings.Join(parts, " · ")
}

// label prefers a node's display name, then its ID, then a dash.
func label(name, id string) string {
	switch {
	case name != "":
		return name
	case id != "":
		return id
	}
	return "-"
}
