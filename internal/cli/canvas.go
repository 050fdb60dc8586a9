package cli

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/ivrflow/pkg/editor"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/viewport"
)

// World units per terminal cell. One column is narrower than one row, so
// the ratio keeps node spacing roughly square on screen.
const (
	cellW = 10.0
	cellH = 20.0
)

// canvasTop is the number of terminal rows above the canvas.
const canvasTop = 1

// Cell styles.
const (
	stylePlain = iota
	styleEdge
	styleEdgeLabel
	styleNode
	styleStart
	styleSelected
	styleSource
	styleEditing
)

var cellStyles = []lipgloss.Style{
	stylePlain:     lipgloss.NewStyle(),
	styleEdge:      lipgloss.NewStyle().Foreground(colorDim),
	styleEdgeLabel: lipgloss.NewStyle().Foreground(colorGray),
	styleNode:      lipgloss.NewStyle().Foreground(colorWhite),
	styleStart:     lipgloss.NewStyle().Foreground(colorGreen),
	styleSelected:  lipgloss.NewStyle().Foreground(colorCyan).Bold(true),
	styleSource:    lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
	styleEditing:   lipgloss.NewStyle().Foreground(colorBlue).Bold(true),
}

type cell struct {
	r     rune
	style int
}

// rect is a hit region in canvas cells. x1 and y1 are exclusive.
type rect struct {
	id             string
	x0, y0, x1, y1 int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x0 && x < r.x1 && y >= r.y0 && y < r.y1
}

// scene is one rendered frame of the canvas plus its hit regions.
type scene struct {
	w, h   int
	cells  []cell
	nodes  []rect // in draw order; later entries are on top
	labels []rect // connection labels
}

func newScene(w, h int) *scene {
	w, h = max(w, 0), max(h, 0)
	s := &scene{w: w, h: h, cells: make([]cell, w*h)}
	for i := range s.cells {
		s.cells[i] = cell{r: ' '}
	}
	return s
}

func (s *scene) set(x, y int, r rune, style int) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	s.cells[y*s.w+x] = cell{r: r, style: style}
}

func (s *scene) text(x, y int, str string, style int) {
	for _, r := range str {
		s.set(x, y, r, style)
		x++
	}
}

// hit returns what lies under canvas cell (x, y).
func (s *scene) hit(x, y int) editor.Hit {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].contains(x, y) {
			return editor.NodeHit(s.nodes[i].id)
		}
	}
	for _, r := range s.labels {
		if r.contains(x, y) {
			return editor.ConnectionHit(r.id)
		}
	}
	return editor.CanvasHit()
}

// String renders the scene, grouping runs of equal style.
func (s *scene) String() string {
	var b strings.Builder
	for y := 0; y < s.h; y++ {
		row := s.cells[y*s.w : (y+1)*s.w]
		for i := 0; i < len(row); {
			j := i
			var run strings.Builder
			for j < len(row) && row[j].style == row[i].style {
				run.WriteRune(row[j].r)
				j++
			}
			if row[i].style == stylePlain {
				b.WriteString(run.String())
			} else {
				b.WriteString(cellStyles[row[i].style].Render(run.String()))
			}
			i = j
		}
		if y < s.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// toCell converts a screen point to canvas cell coordinates. Points left of
// or above the origin land in negative cells.
func toCell(p viewport.Point) (int, int) {
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

// toScreen converts a terminal cell to a screen point.
func toScreen(col, row int) viewport.Point {
	return viewport.Point{X: float64(col) * cellW, Y: float64(row-canvasTop) * cellH}
}

// nodeBox returns the width of the box drawn for n.
func nodeBox(n *flow.Node) int {
	return max(utf8.RuneCountInString(n.Data.Label)+4, len(n.Type)+6)
}

// drawScene lays out the graph through the viewport.
func drawScene(ed *editor.Editor, w, h int) *scene {
	s := newScene(w, h)
	g, v := ed.Graph(), ed.Viewport()
	st := ed.State()
	selectedID, _ := ed.Selected()

	boxes := make(map[string]rect, g.NodeCount())
	for _, n := range g.Nodes() {
		x, y := toCell(v.WorldToScreen(viewport.Point(n.Position)))
		boxes[n.ID] = rect{id: n.ID, x0: x, y0: y, x1: x + nodeBox(n), y1: y + 3}
	}

	for _, c := range g.Connections() {
		from, to := boxes[c.Source], boxes[c.Target]
		x0, y0 := (from.x0+from.x1)/2, from.y1
		x1, y1 := (to.x0+to.x1)/2, to.y0-1
		line(s, x0, y0, x1, y1)
		s.set(x1, y1, '▾', styleEdge)

		label := c.LabelText()
		if label == "" {
			label = "+"
		}
		style := styleEdgeLabel
		if st.Mode == editor.EditingLabel && st.Target == (editor.Target{Kind: editor.TargetConnection, ID: c.ID}) {
			label, style = st.Draft+"▌", styleEditing
		}
		text := "[" + label + "]"
		mx := (x0+x1)/2 - utf8.RuneCountInString(text)/2
		my := (y0 + y1) / 2
		s.text(mx, my, text, style)
		s.labels = append(s.labels, rect{id: c.ID, x0: mx, y0: my, x1: mx + utf8.RuneCountInString(text), y1: my + 1})
	}

	for _, n := range g.Nodes() {
		style := styleNode
		switch {
		case st.Mode == editor.Connecting && st.NodeID == n.ID:
			style = styleSource
		case n.ID == selectedID:
			style = styleSelected
		case n.IsStart():
			style = styleStart
		}
		label := n.Data.Label
		if st.Mode == editor.EditingLabel && st.Target == (editor.Target{Kind: editor.TargetNode, ID: n.ID}) {
			label, style = st.Draft+"▌", styleEditing
		}
		r := boxes[n.ID]
		drawBox(s, r, label, string(n.Type), style)
		s.nodes = append(s.nodes, r)
	}
	return s
}

func drawBox(s *scene, r rect, label, typ string, style int) {
	w := r.x1 - r.x0
	label = truncateRunes(label, w-4)
	s.text(r.x0, r.y0, "╭"+strings.Repeat("─", w-2)+"╮", style)
	pad := w - 4 - utf8.RuneCountInString(label)
	s.text(r.x0, r.y0+1, "│ "+label+strings.Repeat(" ", max(pad, 0))+" │", style)
	s.text(r.x0, r.y0+2, "╰─ "+typ+" "+strings.Repeat("─", max(w-5-len(typ), 0))+"╯", style)
}

// line draws a dotted Bresenham line.
func line(s *scene, x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		s.set(x0, y0, '·', styleEdge)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
