package main

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-graphedit/pkg/archive"
	"github.com/dd0wney/cluso-graphedit/pkg/config"
	"github.com/dd0wney/cluso-graphedit/pkg/editor"
	"github.com/dd0wney/cluso-graphedit/pkg/visualization"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	ctrl, err := editor.New(editor.Options{Persistence: archive.New("")})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)

	m := newModel(context.Background(), ctrl, config.Default())
	return update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func update(m model, msg tea.Msg) model {
	next, _ := m.Update(msg)
	return next.(model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

func TestModelResizeSetsViewport(t *testing.T) {
	m := newTestModel(t)
	require.Positive(t, m.rows)
	assert.Less(t, m.rows, 40)
	assert.InDelta(t, 100*8.0, m.frame.Camera.Width, 1e-9)
	assert.InDelta(t, float64(m.rows)*16, m.frame.Camera.Height, 1e-9)
}

func TestModelClickPlacesNodeUnderCell(t *testing.T) {
	m := newTestModel(t)
	m = update(m, leftClick(10, 5))

	require.Equal(t, 1, m.frame.Summary.Nodes)
	assert.Equal(t, "N0", m.frame.Summary.Selected)
	n, ok := m.frame.Node("N0")
	require.True(t, ok)
	assert.InDelta(t, 84, n.Screen.X, 1e-9)
	assert.InDelta(t, 72, n.Screen.Y, 1e-9)

	// Clicking the same cell selects rather than adds.
	m = update(m, leftClick(10, 5))
	assert.Equal(t, 1, m.frame.Summary.Nodes)
}

func TestModelClickOutsideCanvasIgnored(t *testing.T) {
	m := newTestModel(t)
	m = update(m, leftClick(10, 0))
	assert.Zero(t, m.frame.Summary.Nodes)
}

func TestModelKeys(t *testing.T) {
	m := newTestModel(t)
	m = update(m, runes("m"))
	assert.True(t, m.frame.Summary.MultiConnect)

	m = update(m, leftClick(2, 2))
	m = update(m, leftClick(30, 2))
	m = update(m, leftClick(30, 10))
	assert.Equal(t, 2, m.frame.Summary.Edges)
	assert.Equal(t, 3, m.frame.Summary.ChainLength)

	m = update(m, runes("x"))
	assert.Equal(t, visualization.Summary{Zoom: 1}, m.frame.Summary)
	assert.Equal(t, "cleared", m.message)
}

func TestModelFindPathReportsMissingAnchors(t *testing.T) {
	m := newTestModel(t)
	m = update(m, runes("f"))
	assert.True(t, m.messageErr)
	assert.Contains(t, m.message, "anchors")
}

func TestModelWheelZooms(t *testing.T) {
	m := newTestModel(t)
	m = update(m, tea.MouseMsg{X: 50, Y: 10, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.InDelta(t, 1.1, m.frame.Summary.Zoom, 1e-9)
}

func TestModelSavePrompt(t *testing.T) {
	m := newTestModel(t)
	m = update(m, leftClick(10, 5))

	path := filepath.Join(t.TempDir(), "saved")
	m = update(m, runes("w"))
	require.Equal(t, promptSave, m.prompt)
	m = update(m, runes(path))
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, promptNone, m.prompt)
	assert.False(t, m.messageErr, m.message)
	assert.Equal(t, path+".json", m.location)
	assert.FileExists(t, path+".json")

	// The load prompt is prefilled with the written name.
	m = update(m, runes("x"))
	m = update(m, runes("o"))
	require.Equal(t, path+".json", m.input.Value())
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.messageErr, m.message)
	assert.Equal(t, 1, m.frame.Summary.Nodes)
}

func TestModelPromptEscape(t *testing.T) {
	m := newTestModel(t)
	m = update(m, runes("o"))
	require.Equal(t, promptLoad, m.prompt)
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, promptNone, m.prompt)
	assert.Empty(t, m.message)
}

func TestModelRenameNeedsSelection(t *testing.T) {
	m := newTestModel(t)
	m = update(m, runes("r"))
	assert.Equal(t, promptNone, m.prompt)
	assert.True(t, m.messageErr)
}

func TestModelRenameShowsName(t *testing.T) {
	m := newTestModel(t)
	m = update(m, leftClick(10, 5))
	m = update(m, runes("r"))
	require.Equal(t, promptRename, m.prompt)
	m.input.SetValue("depot")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.messageErr, m.message)
	assert.Equal(t, "renamed N0 to depot", m.message)
	assert.Equal(t, "N0", m.frame.Summary.Selected)
	assert.Contains(t, statusLine(m.frame.Summary, m.layout), "selected depot")
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	cmd := m.key(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestStatusLine(t *testing.T) {
	s := visualization.Summary{
		Nodes: 3, Edges: 2, Selected: "N1",
		PathStart: "N0", PathEnd: "N2", PathLength: 3, PathCost: 7,
		Zoom: 1,
	}
	assert.Equal(t, "nodes 3 · edges 2 · selected N1 · N0 -> N2 cost 7.00 · zoom 1.00x · force", statusLine(s, "force"))

	s = visualization.Summary{PathEnd: "N4", PathPending: true, Zoom: 2, MultiConnect: true, ChainLength: 1}
	assert.Equal(t, "nodes 0 · edges 0 · multi-connect (1) · - -> N4 searching · zoom 2.00x · circular", statusLine(s, "circular"))

	s = visualization.Summary{
		Nodes: 2, Edges: 1, Selected: "N1", SelectedName: "harbour",
		PathStart: "N0", PathStartName: "depot", PathEnd: "N1", PathEndName: "harbour",
		PathLength: 2, PathCost: 4, Zoom: 1,
	}
	assert.Equal(t, "nodes 2 · edges 1 · selected harbour · depot -> harbour cost 4.00 · zoom 1.00x · grid", statusLine(s, "grid"))
}
