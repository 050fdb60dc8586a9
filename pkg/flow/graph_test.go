package flow

import (
	"math/rand/v2"
	"testing"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

func newTestGraph() *Graph {
	return New(WithIDGenerator(NewSequence()))
}

func TestNew(t *testing.T) {
	g := newTestGraph()

	if got := g.NodeCount(); got != 1 {
		t.Fatalf("NodeCount = %d, want 1", got)
	}
	start, ok := g.Node(StartNodeID)
	if !ok {
		t.Fatal("start node not found")
	}
	if start.Type != TypeStart {
		t.Errorf("Type = %v, want %v", start.Type, TypeStart)
	}
	if start.Data.Label != "Call Start" {
		t.Errorf("Label = %q, want %q", start.Data.Label, "Call Start")
	}
	if g.StartID() != StartNodeID {
		t.Errorf("StartID = %q, want %q", g.StartID(), StartNodeID)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name     string
		typ      NodeType
		pos      Position
		wantPos  Position
		wantCode errs.Code
	}{
		{name: "Play", typ: TypePlay, pos: Position{X: 10, Y: 20}, wantPos: Position{X: 10, Y: 20}},
		{name: "ClampsNegative", typ: TypeEnd, pos: Position{X: -5, Y: -0.5}, wantPos: Position{}},
		{name: "ClampsOneAxis", typ: TypeMenu, pos: Position{X: 40, Y: -1}, wantPos: Position{X: 40}},
		{name: "SecondStart", typ: TypeStart, wantCode: errs.ErrCodeStructuralRejection},
		{name: "Unknown", typ: NodeType("fax"), wantCode: errs.ErrCodeInvalidNodeType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph()
			n, err := g.AddNode(tt.typ, tt.pos)
			if tt.wantCode != "" {
				if !errs.Is(err, tt.wantCode) {
					t.Fatalf("err = %v, want code %s", err, tt.wantCode)
				}
				if g.NodeCount() != 1 {
					t.Errorf("NodeCount = %d, want 1", g.NodeCount())
				}
				return
			}
			if err != nil {
				t.Fatalf("AddNode: %v", err)
			}
			if n.Position != tt.wantPos {
				t.Errorf("Position = %+v, want %+v", n.Position, tt.wantPos)
			}
			if n.Data.Label != "New "+string(tt.typ) {
				t.Errorf("Label = %q, want %q", n.Data.Label, "New "+string(tt.typ))
			}
			if n.Data.Config.NodeType() != tt.typ {
				t.Errorf("config type = %v, want %v", n.Data.Config.NodeType(), tt.typ)
			}
		})
	}
}

func TestAddNodePlayDefaults(t *testing.T) {
	g := newTestGraph()
	n, err := g.AddNode(TypePlay, Position{X: 300, Y: 200})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	want := PlayConfig{
		AudioType: "tts",
		Message:   "Thank you for calling.",
		AudioURL:  "",
		Voice:     "alice",
		Language:  "en-US",
	}
	got, ok := n.Data.Config.(PlayConfig)
	if !ok {
		t.Fatalf("config is %T, want PlayConfig", n.Data.Config)
	}
	if got != want {
		t.Errorf("config = %+v, want %+v", got, want)
	}
}

func TestUniqueIDs(t *testing.T) {
	g := newTestGraph()
	seen := map[string]bool{StartNodeID: true}
	prev := StartNodeID
	for range 20 {
		n, err := g.AddNode(TypeAction, Position{})
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		if seen[n.ID] {
			t.Fatalf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		c, err := g.AddConnection(prev, n.ID, nil)
		if err != nil {
			t.Fatalf("AddConnection: %v", err)
		}
		if seen[c.ID] {
			t.Fatalf("duplicate connection id %q", c.ID)
		}
		seen[c.ID] = true
		prev = n.ID
	}
}

// collidingGen returns the same id twice before moving on.
type collidingGen struct{ calls int }

func (c *collidingGen) NewID(kind string) string {
	c.calls++
	if c.calls <= 2 {
		return kind + "-dup"
	}
	return kind + "-fresh"
}

func TestAddNodeRetriesOnCollision(t *testing.T) {
	g := New(WithIDGenerator(&collidingGen{}))
	a, _ := g.AddNode(TypePlay, Position{})
	b, _ := g.AddNode(TypePlay, Position{})
	if a.ID != "node-dup" || b.ID != "node-fresh" {
		t.Errorf("ids = %q, %q, want node-dup, node-fresh", a.ID, b.ID)
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	g := newTestGraph()
	a, _ := g.AddNode(TypeMenu, Position{X: 100, Y: 100})
	b, _ := g.AddNode(TypePlay, Position{X: 100, Y: 300})

	c, err := g.AddConnection(a.ID, b.ID, nil)
	if err != nil {
		t.Fatalf("AddConnection: %v", err)
	}
	if c.LabelText() != "Default" {
		t.Errorf("label = %q, want Default", c.LabelText())
	}
	if _, err := g.AddConnection(StartNodeID, a.ID, nil); err != nil {
		t.Fatalf("AddConnection: %v", err)
	}

	if err := g.RemoveNode(b.ID); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}

	if _, ok := g.Node(b.ID); ok {
		t.Error("node B still present")
	}
	if _, ok := g.Node(a.ID); !ok {
		t.Error("node A removed")
	}
	if _, ok := g.Connection(c.ID); ok {
		t.Error("connection A->B still present")
	}
	if got := g.ConnectionCount(); got != 1 {
		t.Errorf("ConnectionCount = %d, want 1", got)
	}
}

func TestRemoveStartNode(t *testing.T) {
	g := newTestGraph()
	n, _ := g.AddNode(TypeEnd, Position{})
	g.AddConnection(StartNodeID, n.ID, nil)

	err := g.RemoveNode(StartNodeID)
	if !errs.IsStructuralRejection(err) {
		t.Fatalf("err = %v, want structural rejection", err)
	}
	if g.NodeCount() != 2 || g.ConnectionCount() != 1 {
		t.Errorf("graph changed: nodes=%d conns=%d", g.NodeCount(), g.ConnectionCount())
	}
	if g.StartID() != StartNodeID {
		t.Error("start node lost")
	}
}

func TestRemoveUnknownNode(t *testing.T) {
	g := newTestGraph()
	if err := g.RemoveNode("nope"); !errs.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestUpdateNodeLabel(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		wantLabel string
		wantErr   bool
	}{
		{"Plain", "Main Menu", "Main Menu", false},
		{"Trimmed", "  Sales IVR \t", "Sales IVR", false},
		{"Empty", "", "New menu", true},
		{"Blank", "   ", "New menu", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph()
			n, _ := g.AddNode(TypeMenu, Position{})
			err := g.UpdateNodeLabel(n.ID, tt.label)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.IsStructuralRejection(err) {
				t.Errorf("err code = %s, want structural rejection", errs.GetCode(err))
			}
			if n.Data.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", n.Data.Label, tt.wantLabel)
			}
		})
	}
}

func TestConnectionLabels(t *testing.T) {
	g := newTestGraph()
	n, _ := g.AddNode(TypeGather, Position{})

	explicit, err := g.AddConnection(StartNodeID, n.ID, StringPtr(""))
	if err != nil {
		t.Fatalf("AddConnection: %v", err)
	}
	if !explicit.HasLabel() || explicit.LabelText() != "" {
		t.Errorf("explicit empty label lost: %v", explicit.Label)
	}

	if err := g.UpdateConnectionLabel(explicit.ID, "  press 1 "); err != nil {
		t.Fatalf("UpdateConnectionLabel: %v", err)
	}
	if explicit.LabelText() != "  press 1 " {
		t.Errorf("label = %q, want untrimmed", explicit.LabelText())
	}

	if err := g.UpdateConnectionLabel(explicit.ID, ""); err != nil {
		t.Fatalf("UpdateConnectionLabel: %v", err)
	}
	if !explicit.HasLabel() {
		t.Error("empty label should stay set")
	}

	if err := g.UpdateConnectionLabel("missing", "x"); !errs.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestAddConnectionUnknownEndpoints(t *testing.T) {
	g := newTestGraph()
	if _, err := g.AddConnection("ghost", StartNodeID, nil); !errs.IsNotFound(err) {
		t.Errorf("source: err = %v, want not found", err)
	}
	if _, err := g.AddConnection(StartNodeID, "ghost", nil); !errs.IsNotFound(err) {
		t.Errorf("target: err = %v, want not found", err)
	}
	if g.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount = %d, want 0", g.ConnectionCount())
	}
}

func TestRemoveConnection(t *testing.T) {
	g := newTestGraph()
	n, _ := g.AddNode(TypeEnd, Position{})
	c, _ := g.AddConnection(StartNodeID, n.ID, nil)
	c.Condition = StringPtr("digits == '1'")

	g.RemoveConnection("missing")
	if g.ConnectionCount() != 1 {
		t.Fatalf("unknown id removed something")
	}
	g.RemoveConnection(c.ID)
	if g.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount = %d, want 0", g.ConnectionCount())
	}
}

func TestMoveNodeClamps(t *testing.T) {
	g := newTestGraph()
	n, _ := g.AddNode(TypePixel, Position{X: 50, Y: 50})
	if err := g.MoveNode(n.ID, Position{X: -50, Y: -50}); err != nil {
		t.Fatalf("MoveNode: %v", err)
	}
	if n.Position != (Position{}) {
		t.Errorf("Position = %+v, want origin", n.Position)
	}
}

func TestRestore(t *testing.T) {
	play := DefaultConfig(TypePlay)
	tests := []struct {
		name    string
		nodes   []Node
		conns   []Connection
		wantErr bool
	}{
		{
			name: "Valid",
			nodes: []Node{
				{ID: "s", Type: TypeStart, Data: NodeData{Label: "Call Start", Config: EmptyConfig{}}},
				{ID: "p", Type: TypePlay, Data: NodeData{Label: "Greeting", Config: play}},
			},
			conns: []Connection{{ID: "c", Source: "s", Target: "p"}},
		},
		{
			name:    "NoStart",
			nodes:   []Node{{ID: "p", Type: TypePlay, Data: NodeData{Config: play}}},
			wantErr: true,
		},
		{
			name: "TwoStarts",
			nodes: []Node{
				{ID: "a", Type: TypeStart, Data: NodeData{Config: EmptyConfig{}}},
				{ID: "b", Type: TypeStart, Data: NodeData{Config: EmptyConfig{}}},
			},
			wantErr: true,
		},
		{
			name: "Dangling",
			nodes: []Node{
				{ID: "s", Type: TypeStart, Data: NodeData{Config: EmptyConfig{}}},
			},
			conns:   []Connection{{ID: "c", Source: "s", Target: "gone"}},
			wantErr: true,
		},
		{
			name: "DuplicateNode",
			nodes: []Node{
				{ID: "s", Type: TypeStart, Data: NodeData{Config: EmptyConfig{}}},
				{ID: "s", Type: TypePlay, Data: NodeData{Config: play}},
			},
			wantErr: true,
		},
		{
			name: "DuplicateConnection",
			nodes: []Node{
				{ID: "s", Type: TypeStart, Data: NodeData{Config: EmptyConfig{}}},
			},
			conns: []Connection{
				{ID: "c", Source: "s", Target: "s"},
				{ID: "c", Source: "s", Target: "s"},
			},
			wantErr: true,
		},
		{
			name: "ConfigMismatch",
			nodes: []Node{
				{ID: "s", Type: TypeStart, Data: NodeData{Config: EmptyConfig{}}},
				{ID: "m", Type: TypeMenu, Data: NodeData{Config: play}},
			},
			wantErr: true,
		},
		{
			name: "NegativePosition",
			nodes: []Node{
				{ID: "s", Type: TypeStart, Position: Position{X: -1}, Data: NodeData{Config: EmptyConfig{}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Restore(tt.nodes, tt.conns)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Restore err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errs.Is(err, errs.ErrCodeInvalidFormat) {
					t.Errorf("err code = %s, want %s", errs.GetCode(err), errs.ErrCodeInvalidFormat)
				}
				return
			}
			if g.NodeCount() != len(tt.nodes) || g.ConnectionCount() != len(tt.conns) {
				t.Errorf("counts = %d/%d, want %d/%d", g.NodeCount(), g.ConnectionCount(), len(tt.nodes), len(tt.conns))
			}
		})
	}
}

// TestInvariantsUnderRandomEdits drives the store with a random edit script
// and checks the structural invariants after every step.
func TestInvariantsUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	g := newTestGraph()
	types := NodeTypes()

	pick := func() string {
		nodes := g.Nodes()
		return nodes[rng.IntN(len(nodes))].ID
	}

	for step := range 2000 {
		switch rng.IntN(6) {
		case 0, 1:
			typ := types[rng.IntN(len(types))]
			pos := Position{X: rng.Float64()*800 - 200, Y: rng.Float64()*800 - 200}
			if _, err := g.AddNode(typ, pos); err != nil {
				t.Fatalf("step %d: AddNode: %v", step, err)
			}
		case 2:
			_ = g.RemoveNode(pick())
		case 3:
			if _, err := g.AddConnection(pick(), pick(), nil); err != nil {
				t.Fatalf("step %d: AddConnection: %v", step, err)
			}
		case 4:
			if conns := g.Connections(); len(conns) > 0 {
				g.RemoveConnection(conns[rng.IntN(len(conns))].ID)
			}
		case 5:
			_ = g.MoveNode(pick(), Position{X: rng.Float64()*400 - 200, Y: rng.Float64()*400 - 200})
		}

		if err := g.Validate(); err != nil {
			t.Fatalf("step %d: invariant broken: %v", step, err)
		}
	}
}
