package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/editor"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/render/nodelink"
	"github.com/matzehuels/ivrflow/pkg/viewport"
)

// panelWidth is the width of the property panel right of the canvas.
const panelWidth = 36

// panStep is how far the arrow keys move the canvas, in screen units.
const panStep = 4 * cellW

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorDim).
			PaddingLeft(1)
	titleBarStyle = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

// canvasModel is the bubbletea model of `ivrflow edit`. Terminal input is
// translated into editor events; everything the canvas shows is read back
// from the editor after each event.
type canvasModel struct {
	ctx   context.Context
	ed    *editor.Editor
	meta  document.Meta
	saver document.Saver

	width, height int
	addIdx        int
	types         []flow.NodeType

	status      string
	statusLevel document.Level
	dirty       bool

	scene *scene
}

func newCanvasModel(ctx context.Context, ed *editor.Editor, meta document.Meta, saver document.Saver) *canvasModel {
	return &canvasModel{
		ctx:    ctx,
		ed:     ed,
		meta:   meta,
		saver:  saver,
		width:  100,
		height: 30,
		types:  flow.NodeTypes(),
	}
}

func (m *canvasModel) Init() tea.Cmd { return nil }

func (m *canvasModel) canvasSize() (int, int) {
	return max(m.width-panelWidth-1, 10), max(m.height-canvasTop-1, 5)
}

func (m *canvasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.KeyMsg:
		if m.ed.State().Mode == editor.EditingLabel {
			m.editKey(msg)
			break
		}
		if cmd := m.key(msg); cmd != nil {
			return m, cmd
		}
	}
	return m, nil
}

// handle sends ev to the editor and reports a failure on the status line.
func (m *canvasModel) handle(ev editor.Event) {
	nodes, conns := m.ed.Graph().NodeCount(), m.ed.Graph().ConnectionCount()
	if err := m.ed.Handle(ev); err != nil {
		m.setStatus(document.LevelError, errs.UserMessage(err))
		return
	}
	if m.ed.Graph().NodeCount() != nodes || m.ed.Graph().ConnectionCount() != conns {
		m.dirty = true
	}
}

func (m *canvasModel) setStatus(level document.Level, msg string) {
	m.status, m.statusLevel = msg, level
}

// =============================================================================
// Input
// =============================================================================

func (m *canvasModel) hitAt(x, y int) editor.Hit {
	if m.scene == nil {
		w, h := m.canvasSize()
		m.scene = drawScene(m.ed, w, h)
	}
	return m.scene.hit(x, y-canvasTop)
}

func (m *canvasModel) mouse(msg tea.MouseMsg) {
	cw, _ := m.canvasSize()
	at := toScreen(msg.X, msg.Y)
	inside := msg.X < cw && msg.Y >= canvasTop

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		delta := 1.0
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		m.handle(editor.Wheel{DeltaY: delta, Modifier: msg.Ctrl || msg.Alt})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inside {
			m.handle(editor.PointerDown{At: at, Hit: m.hitAt(msg.X, msg.Y)})
		}
	case msg.Action == tea.MouseActionMotion:
		if !inside {
			m.handle(editor.PointerLeave{})
			return
		}
		before := m.ed.State().Mode
		m.handle(editor.PointerMove{At: at})
		if before == editor.Dragging {
			m.dirty = true
		}
	case msg.Action == tea.MouseActionRelease:
		if !inside {
			m.handle(editor.PointerLeave{})
			return
		}
		hit := m.hitAt(msg.X, msg.Y)
		m.handle(editor.PointerUp{At: at})
		if hit.Kind == editor.HitConnection && m.ed.State().Mode != editor.Connecting {
			m.handle(editor.ActivateLabel{Target: editor.Target{Kind: editor.TargetConnection, ID: hit.ID}})
			return
		}
		m.handle(editor.Click{At: at, Hit: hit})
	}
	m.scene = nil
}

// editKey feeds a key to the active label edit.
func (m *canvasModel) editKey(msg tea.KeyMsg) {
	draft := m.ed.State().Draft
	switch msg.Type {
	case tea.KeyEnter:
		m.handle(editor.KeyPress{Key: editor.KeyEnter})
		m.dirty = true
	case tea.KeyEsc:
		m.handle(editor.KeyPress{Key: editor.KeyEscape})
	case tea.KeyTab:
		m.handle(editor.Blur{})
		m.dirty = true
	case tea.KeyBackspace:
		if r := []rune(draft); len(r) > 0 {
			m.handle(editor.EditText{Text: string(r[:len(r)-1])})
		}
	case tea.KeySpace:
		m.handle(editor.EditText{Text: draft + " "})
	case tea.KeyRunes:
		m.handle(editor.EditText{Text: draft + string(msg.Runes)})
	}
	m.scene = nil
}

func (m *canvasModel) key(msg tea.KeyMsg) tea.Cmd {
	defer func() { m.scene = nil }()
	v := m.ed.Viewport()

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "ctrl+s":
		m.save()
	case "esc":
		m.handle(editor.KeyPress{Key: editor.KeyEscape})
	case "delete", "backspace", "x":
		m.handle(editor.KeyPress{Key: editor.KeyDelete})
	case "c":
		if id, ok := m.ed.Selected(); ok {
			m.handle(editor.ActivateHandle{NodeID: id})
			m.setStatus(document.LevelSuccess, "Click a target node (esc cancels)")
		}
	case "e", "enter":
		if id, ok := m.ed.Selected(); ok {
			m.handle(editor.ActivateLabel{Target: editor.Target{Kind: editor.TargetNode, ID: id}})
		}
	case "+", "=":
		m.handle(editor.ZoomIn{})
	case "-":
		m.handle(editor.ZoomOut{})
	case "0":
		m.handle(editor.ResetView{})
	case "tab":
		m.addIdx = (m.addIdx + 1) % len(m.types)
	case "shift+tab":
		m.addIdx = (m.addIdx + len(m.types) - 1) % len(m.types)
	case "a":
		m.handle(editor.AddNode{Type: m.types[m.addIdx]})
	case "left":
		v.SetPan(v.Pan().Add(viewport.Point{X: panStep}))
	case "right":
		v.SetPan(v.Pan().Add(viewport.Point{X: -panStep}))
	case "up":
		v.SetPan(v.Pan().Add(viewport.Point{Y: panStep / 2}))
	case "down":
		v.SetPan(v.Pan().Add(viewport.Point{Y: -panStep / 2}))
	}
	return nil
}

// save runs the save path once. The first successful save fixes the id so
// later saves overwrite the same flow.
func (m *canvasModel) save() {
	notifier := document.NotifierFunc(m.setStatus)
	d, err := document.Save(m.ctx, m.meta, m.ed.Graph(), m.saver, notifier)
	if err != nil {
		return
	}
	m.meta.ID = d.ID
	m.dirty = false
}

// =============================================================================
// View
// =============================================================================

func (m *canvasModel) View() string {
	cw, ch := m.canvasSize()
	m.scene = drawScene(m.ed, cw, ch)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.scene.String(),
		panelStyle.Height(ch).Width(panelWidth).Render(m.panel()),
	)
	return m.header() + "\n" + body + "\n" + m.footer()
}

func (m *canvasModel) header() string {
	name := m.meta.Name
	if name == "" {
		name = "untitled"
	}
	if m.dirty {
		name += " *"
	}
	st := m.ed.State()
	return StyleTitle.Render(name) + titleBarStyle.Render(fmt.Sprintf("  zoom %d%%  %s",
		int(m.ed.Viewport().Zoom()*100+0.5), st.Mode))
}

func (m *canvasModel) footer() string {
	switch {
	case m.status != "" && m.statusLevel == document.LevelError:
		return StyleError.Render(iconError + " " + m.status)
	case m.status != "":
		return StyleSuccess.Render(iconSuccess + " " + m.status)
	case m.ed.State().Mode == editor.EditingLabel:
		return helpStyle.Render("enter commit  esc discard  tab leave field")
	default:
		return helpStyle.Render("a add  tab type  c connect  e label  x delete  +/-/0 zoom  arrows pan  ctrl+s save  q quit")
	}
}

func (m *canvasModel) panel() string {
	var b strings.Builder
	g := m.ed.Graph()

	id, ok := m.ed.Selected()
	n, found := g.Node(id)
	if !ok || !found {
		b.WriteString(StyleTitle.Render("Flow") + "\n")
		fmt.Fprintf(&b, "%d nodes · %d connections\n\n", g.NodeCount(), g.ConnectionCount())
		b.WriteString(StyleDim.Render("Add node (tab to cycle)") + "\n")
		for i, t := range m.types {
			marker, style := "  ", StyleDim
			if i == m.addIdx {
				marker, style = "▸ ", typeStyle(t)
			}
			b.WriteString(style.Render(marker+string(t)) + "\n")
		}
		return b.String()
	}

	b.WriteString(StyleTitle.Render(truncateRunes(n.Data.Label, panelWidth-2)) + "\n")
	b.WriteString(typeStyle(n.Type).Render(string(n.Type)) + StyleDim.Render(" · "+n.ID) + "\n")
	if s := nodelink.Summary(n.Data.Config); s != "" {
		b.WriteString(StyleValue.Render(truncateRunes(s, panelWidth-2)) + "\n")
	}
	b.WriteString("\n")

	if fields, err := flow.ConfigToMap(n.Data.Config); err == nil && len(fields) > 0 {
		b.WriteString(StyleDim.Render("Config") + "\n")
		for _, k := range slices.Sorted(maps.Keys(fields)) {
			line := fmt.Sprintf("%s: %v", k, fields[k])
			b.WriteString(truncateRunes(line, panelWidth-2) + "\n")
		}
		b.WriteString("\n")
	}

	out := g.Outgoing(n.ID)
	b.WriteString(StyleDim.Render(fmt.Sprintf("Outgoing (%d)", len(out))) + "\n")
	for _, c := range out {
		target := c.Target
		if t, ok := g.Node(c.Target); ok {
			target = t.Data.Label
		}
		label := ""
		if c.HasLabel() {
			label = " [" + c.LabelText() + "]"
		}
		b.WriteString(truncateRunes(iconArrow+" "+target+label, panelWidth-2) + "\n")
	}
	return b.String()
}
