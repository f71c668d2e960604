package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-graphedit/pkg/visualization"
)

// class orders what may overwrite what on the canvas: a cell only takes a
// glyph whose class is at least the one already there.
type class uint8

const (
	classBlank class = iota
	classEdge
	classPath
	classLabel
	classNode
	classChain
	classEnd
	classStart
	classSelected
)

var classStyles = map[class]lipgloss.Style{
	classEdge:     lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	classPath:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true),
	classLabel:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	classNode:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")),
	classChain:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF00FF")),
	classEnd:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
	classStart:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true),
	classSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#FF00FF")).Bold(true),
}

var highlightGlyphs = map[visualization.Highlight]struct {
	r rune
	c class
}{
	visualization.HighlightSelected:  {'◉', classSelected},
	visualization.HighlightPathStart: {'S', classStart},
	visualization.HighlightPathEnd:   {'E', classEnd},
	visualization.HighlightChain:     {'◎', classChain},
	visualization.HighlightNone:      {'●', classNode},
}

type cell struct {
	r rune
	c class
}

// canvas is a character grid addressed in terminal cells. Screen pixels
// map to cells by dividing by the cell size.
type canvas struct {
	cols, rows   int
	cellW, cellH float64
	cells        []cell
}

func newCanvas(cols, rows int, cellW, cellH float64) *canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	cv := &canvas{cols: cols, rows: rows, cellW: cellW, cellH: cellH, cells: make([]cell, cols*rows)}
	for i := range cv.cells {
		cv.cells[i] = cell{r: ' '}
	}
	return cv
}

// rasterize draws f: edges first, then the path over them, then nodes
// with their labels.
func rasterize(f *visualization.Frame, cols, rows int, cellW, cellH float64) *canvas {
	cv := newCanvas(cols, rows, cellW, cellH)
	for _, e := range f.Edges {
		cv.line(e.From, e.To, classEdge)
	}
	for _, e := range f.PathEdges {
		cv.line(e.From, e.To, classPath)
	}
	for _, n := range f.Nodes {
		g := highlightGlyphs[n.Highlight]
		x, y := cv.cellOf(n.Screen)
		cv.set(x, y, g.r, g.c)
		if n.Name != "" {
			for i, r := range []rune(n.Name) {
				cv.set(x+2+i, y, r, classLabel)
			}
		}
	}
	return cv
}

func (cv *canvas) cellOf(p visualization.Position) (int, int) {
	return int(math.Floor(p.X / cv.cellW)), int(math.Floor(p.Y / cv.cellH))
}

func (cv *canvas) at(x, y int) cell {
	return cv.cells[y*cv.cols+x]
}

func (cv *canvas) set(x, y int, r rune, c class) {
	if x < 0 || y < 0 || x >= cv.cols || y >= cv.rows {
		return
	}
	if i := y*cv.cols + x; c >= cv.cells[i].c {
		cv.cells[i] = cell{r: r, c: c}
	}
}

// line draws a segment between two screen points with Bresenham's
// algorithm after clipping it to the grid.
func (cv *canvas) line(from, to visualization.Position, c class) {
	x0, y0 := from.X/cv.cellW, from.Y/cv.cellH
	x1, y1 := to.X/cv.cellW, to.Y/cv.cellH
	glyph := slopeGlyph(x1-x0, y1-y0)

	x0, y0, x1, y1, ok := clip(x0, y0, x1, y1, float64(cv.cols)-1e-9, float64(cv.rows)-1e-9)
	if !ok {
		return
	}

	ax, ay := int(math.Floor(x0)), int(math.Floor(y0))
	bx, by := int(math.Floor(x1)), int(math.Floor(y1))
	dx, dy := abs(bx-ax), -abs(by-ay)
	sx, sy := 1, 1
	if ax >= bx {
		sx = -1
	}
	if ay >= by {
		sy = -1
	}
	e := dx + dy
	for {
		cv.set(ax, ay, glyph, c)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

// slopeGlyph picks a box character for a direction in cell space, where y
// grows downwards.
func slopeGlyph(dx, dy float64) rune {
	switch adx, ady := math.Abs(dx), math.Abs(dy); {
	case ady*2 < adx:
		return '─'
	case adx*2 < ady:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// clip trims the segment to [0,w)x[0,h) with the Liang-Barsky method.
func clip(x0, y0, x1, y1, w, h float64) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := x1-x0, y1-y0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, w - x0},
		{-dy, y0},
		{dy, h - y0},
	}
	for _, pq := range edges {
		p, q := pq[0], pq[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// String returns the grid without styling.
func (cv *canvas) String() string {
	var b strings.Builder
	for y := range cv.rows {
		for x := range cv.cols {
			b.WriteRune(cv.at(x, y).r)
		}
		if y < cv.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Render returns the grid with each run of cells styled by its class.
func (cv *canvas) Render() string {
	var b strings.Builder
	var run strings.Builder
	for y := range cv.rows {
		current := classBlank
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if st, ok := classStyles[current]; ok {
				b.WriteString(st.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for x := range cv.cols {
			c := cv.at(x, y)
			if c.c != current {
				flush()
				current = c.c
			}
			run.WriteRune(c.r)
		}
		flush()
		if y < cv.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
