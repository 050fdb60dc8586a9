package editor

import (
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/viewport"
)

// Event is an input to [Editor.Handle].
type Event interface {
	event()
}

// HitKind classifies what a pointer event landed on.
type HitKind int

const (
	HitCanvas HitKind = iota
	HitNode
	HitConnection
)

// Hit is the result of the view layer's hit test.
type Hit struct {
	Kind HitKind
	ID   string
}

// CanvasHit is a hit on the empty canvas background.
func CanvasHit() Hit { return Hit{Kind: HitCanvas} }

// NodeHit is a hit on the body of node id.
func NodeHit(id string) Hit { return Hit{Kind: HitNode, ID: id} }

// ConnectionHit is a hit on connection id.
func ConnectionHit(id string) Hit { return Hit{Kind: HitConnection, ID: id} }

// Key is a keyboard key the editor reacts to.
type Key int

const (
	KeyEnter Key = iota
	KeyEscape
	KeyDelete
)

// Pointer events. At is in screen coordinates.
type (
	PointerDown struct {
		At  viewport.Point
		Hit Hit
	}
	PointerMove  struct{ At viewport.Point }
	PointerUp    struct{ At viewport.Point }
	PointerLeave struct{}
	Click        struct {
		At  viewport.Point
		Hit Hit
	}
	Wheel struct {
		DeltaY   float64
		Modifier bool
	}
)

// Element events.
type (
	// ActivateHandle starts drawing a connection from NodeID.
	ActivateHandle struct{ NodeID string }
	// ActivateLabel starts editing the label of Target.
	ActivateLabel struct{ Target Target }
	// EditText replaces the draft of the active label edit.
	EditText struct{ Text string }
	// KeyPress is a key press outside of any text field, or Enter/Escape
	// inside the label field.
	KeyPress struct{ Key Key }
	// Blur is the label field losing focus.
	Blur struct{}
)

// Commands issued from toolbars and side panels.
type (
	ZoomIn    struct{}
	ZoomOut   struct{}
	ResetView struct{}
	// AddNode adds a node of Type. With At nil the node is placed at the
	// viewport's placement anchor, otherwise at the screen point *At.
	AddNode struct {
		Type flow.NodeType
		At   *viewport.Point
	}
	// DeleteSelection removes the selected node.
	DeleteSelection struct{}
	// DeleteConnection removes connection ID.
	DeleteConnection struct{ ID string }
	// UpdateConfig shallow-merges Partial into the config of NodeID.
	UpdateConfig struct {
		NodeID  string
		Partial map[string]any
	}
)

func (PointerDown) event()      {}
func (PointerMove) event()      {}
func (PointerUp) event()        {}
func (PointerLeave) event()     {}
func (Click) event()            {}
func (Wheel) event()            {}
func (ActivateHandle) event()   {}
func (ActivateLabel) event()    {}
func (EditText) event()         {}
func (KeyPress) event()         {}
func (Blur) event()             {}
func (ZoomIn) event()           {}
func (ZoomOut) event()          {}
func (ResetView) event()        {}
func (AddNode) event()          {}
func (DeleteSelection) event()  {}
func (DeleteConnection) event() {}
func (UpdateConfig) event()     {}
