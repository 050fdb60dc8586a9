package editor

import (
	"fmt"

	"github.com/matzehuels/ivrflow/pkg/viewport"
)

// Mode is the active interaction state.
type Mode int

// Interaction modes.
const (
	Idle Mode = iota
	NodeSelected
	Connecting
	Dragging
	PanningCanvas
	EditingLabel
)

var modeNames = [...]string{
	Idle:          "idle",
	NodeSelected:  "node-selected",
	Connecting:    "connecting",
	Dragging:      "dragging",
	PanningCanvas: "panning",
	EditingLabel:  "editing-label",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// TargetKind says whether a label edit targets a node or a connection.
type TargetKind int

const (
	TargetNode TargetKind = iota
	TargetConnection
)

func (k TargetKind) String() string {
	if k == TargetConnection {
		return "connection"
	}
	return "node"
}

// Target identifies a labelled element.
type Target struct {
	Kind TargetKind
	ID   string
}

// State is a snapshot of the interaction state. Only the fields belonging to
// Mode are meaningful:
//
//	NodeSelected   NodeID
//	Connecting     NodeID (the source)
//	Dragging       NodeID, Grab
//	PanningCanvas  Pan
//	EditingLabel   Target, Draft
type State struct {
	Mode   Mode
	NodeID string
	Grab   viewport.Point
	Pan    viewport.PanGesture
	Target Target
	Draft  string
}

func (s State) String() string {
	switch s.Mode {
	case NodeSelected, Connecting, Dragging:
		return fmt.Sprintf("%s(%s)", s.Mode, s.NodeID)
	case EditingLabel:
		return fmt.Sprintf("%s(%s %s)", s.Mode, s.Target.Kind, s.Target.ID)
	default:
		return s.Mode.String()
	}
}

// references reports whether s points at node id, directly or as an edit target.
func (s State) references(id string) bool {
	switch s.Mode {
	case NodeSelected, Connecting, Dragging:
		return s.NodeID == id
	case EditingLabel:
		return s.Target.Kind == TargetNode && s.Target.ID == id
	}
	return false
}

func idle() State { return State{Mode: Idle} }

func selected(id string) State { return State{Mode: NodeSelected, NodeID: id} }
