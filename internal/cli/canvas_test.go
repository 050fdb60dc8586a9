package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ivrflow/pkg/editor"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/viewport"
)

func newTestEditor(t *testing.T) *editor.Editor {
	t.Helper()
	g := flow.New(flow.WithIDGenerator(flow.NewSequence()))
	return editor.New(g, viewport.New())
}

func TestDrawSceneHit(t *testing.T) {
	ed := newTestEditor(t)
	g := ed.Graph()
	end, err := g.AddNode(flow.TypeEnd, flow.Position{X: 250, Y: 250})
	require.NoError(t, err)
	conn, err := g.AddConnection(flow.StartNodeID, end.ID, nil)
	require.NoError(t, err)

	s := drawScene(ed, 80, 24)

	// Start node at world (250, 50) lands on cell (25, 2).
	assert.Equal(t, editor.NodeHit(flow.StartNodeID), s.hit(25, 2))
	assert.Equal(t, editor.NodeHit(flow.StartNodeID), s.hit(30, 4))
	assert.Equal(t, editor.NodeHit(end.ID), s.hit(26, 13))
	assert.Equal(t, editor.CanvasHit(), s.hit(0, 0))

	require.Len(t, s.labels, 1)
	lbl := s.labels[0]
	assert.Equal(t, conn.ID, lbl.id)
	assert.Equal(t, editor.ConnectionHit(conn.ID), s.hit(lbl.x0, lbl.y0))

	out := s.String()
	assert.Contains(t, out, "Call Start")
	assert.Contains(t, out, "[Default]")
	assert.Contains(t, out, "New end")
	assert.Len(t, strings.Split(out, "\n"), 24)
}

func TestDrawSceneFollowsViewport(t *testing.T) {
	ed := newTestEditor(t)
	ed.Viewport().SetPan(viewport.Point{X: -100, Y: 20})

	s := drawScene(ed, 80, 24)
	assert.Equal(t, editor.NodeHit(flow.StartNodeID), s.hit(15, 3))
	assert.Equal(t, editor.CanvasHit(), s.hit(25, 2))
}

func TestDrawSceneAbsentLabel(t *testing.T) {
	ed := newTestEditor(t)
	g := ed.Graph()
	end, err := g.AddNode(flow.TypeEnd, flow.Position{X: 250, Y: 250})
	require.NoError(t, err)
	conn, err := g.AddConnection(flow.StartNodeID, end.ID, flow.StringPtr(""))
	require.NoError(t, err)

	s := drawScene(ed, 80, 24)
	assert.Contains(t, s.String(), "[+]")

	conn.Label = nil
	s = drawScene(ed, 80, 24)
	assert.Contains(t, s.String(), "[+]")
	require.Len(t, s.labels, 1)
}

func TestDrawSceneEditingDraft(t *testing.T) {
	ed := newTestEditor(t)
	require.NoError(t, ed.Handle(editor.ActivateLabel{Target: editor.Target{Kind: editor.TargetNode, ID: flow.StartNodeID}}))
	require.NoError(t, ed.Handle(editor.EditText{Text: "Main line"}))

	assert.Contains(t, drawScene(ed, 80, 24).String(), "Main line▌")
}

func TestSceneClipsOffscreen(t *testing.T) {
	s := newScene(4, 2)
	s.text(2, 0, "abcdef", stylePlain)
	s.set(-1, 0, 'x', stylePlain)
	s.set(0, 5, 'x', stylePlain)
	assert.Equal(t, "  ab\n    ", s.String())
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Sales", 10, "Sales"},
		{"Sales line", 6, "Sales…"},
		{"Sales", 0, ""},
		{"Über", 3, "Üb…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateRunes(tt.in, tt.n), "%q/%d", tt.in, tt.n)
	}
}

func TestToScreen(t *testing.T) {
	assert.Equal(t, viewport.Point{X: 50, Y: 0}, toScreen(5, canvasTop))
	x, y := toCell(toScreen(12, 7))
	assert.Equal(t, 12, x)
	assert.Equal(t, 7-canvasTop, y)
}

func TestToCellNegative(t *testing.T) {
	tests := []struct {
		name         string
		p            viewport.Point
		wantX, wantY int
	}{
		{"Origin", viewport.Point{X: 0, Y: 0}, 0, 0},
		{"JustLeftAbove", viewport.Point{X: -1, Y: -1}, -1, -1},
		{"OneCellOut", viewport.Point{X: -cellW, Y: -cellH}, -1, -1},
		{"PastOneCell", viewport.Point{X: -cellW - 1, Y: -cellH - 1}, -2, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := toCell(tt.p)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}
