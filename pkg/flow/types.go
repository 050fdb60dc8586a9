package flow

import "slices"

// NodeType identifies the variant of a node.
type NodeType string

// Node variants.
const (
	TypeStart      NodeType = "start"
	TypeCondition  NodeType = "condition"
	TypeAction     NodeType = "action"
	TypeMenu       NodeType = "menu"
	TypeGather     NodeType = "gather"
	TypePlay       NodeType = "play"
	TypeHours      NodeType = "hours"
	TypeRouter     NodeType = "router"
	TypeSplitter   NodeType = "splitter"
	TypePixel      NodeType = "pixel"
	TypeJavaScript NodeType = "javascript"
	TypeEnd        NodeType = "end"
)

// StartNodeID is the id of the start node created by [New].
const StartNodeID = "start"

// StartLabel is the display name of the start node.
const StartLabel = "Call Start"

// DefaultConnectionLabel is the label given to a connection drawn without one.
const DefaultConnectionLabel = "Default"

// addable lists the variants an operator can add, in palette order.
var addable = []NodeType{
	TypeCondition,
	TypeAction,
	TypeMenu,
	TypeGather,
	TypePlay,
	TypeHours,
	TypeRouter,
	TypeSplitter,
	TypePixel,
	TypeJavaScript,
	TypeEnd,
}

// NodeTypes returns the addable node variants (every type except start).
func NodeTypes() []NodeType { return slices.Clone(addable) }

// Valid reports whether t is a known node type, including start.
func (t NodeType) Valid() bool {
	return t == TypeStart || slices.Contains(addable, t)
}

// Position is a point in world coordinates (unscaled, unpanned).
type Position struct {
	X float64 `json:"x" bson:"x" yaml:"x"`
	Y float64 `json:"y" bson:"y" yaml:"y"`
}

// Clamp returns p with both axes floored at zero.
func (p Position) Clamp() Position {
	return Position{X: max(p.X, 0), Y: max(p.Y, 0)}
}

// Node is one step of a flow.
//
// Nodes returned by [Graph] point into the store; change them only through
// Graph methods so the invariants hold.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NodeData holds the mutable, operator-facing part of a node.
type NodeData struct {
	Label  string `json:"label"`
	Config Config `json:"config"`
}

// IsStart reports whether n is the start node.
func (n *Node) IsStart() bool { return n.Type == TypeStart }

// Connection is a directed edge transferring control from Source to Target.
//
// Label distinguishes absence (nil) from an explicitly empty label (""),
// which the view layer shows as "+". Condition is an opaque routing predicate
// interpreted only by the execution engine.
type Connection struct {
	ID        string  `json:"id" bson:"id" yaml:"id"`
	Source    string  `json:"source" bson:"source" yaml:"source"`
	Target    string  `json:"target" bson:"target" yaml:"target"`
	Label     *string `json:"label,omitempty" bson:"label,omitempty" yaml:"label,omitempty"`
	Condition *string `json:"condition,omitempty" bson:"condition,omitempty" yaml:"condition,omitempty"`
}

// HasLabel reports whether a label is set, even an empty one.
func (c *Connection) HasLabel() bool { return c.Label != nil }

// LabelText returns the label, or "" when absent.
func (c *Connection) LabelText() string {
	if c.Label == nil {
		return ""
	}
	return *c.Label
}

// Touches reports whether nodeID is the source or target of c.
func (c *Connection) Touches(nodeID string) bool {
	return c.Source == nodeID || c.Target == nodeID
}

// StringPtr returns a pointer to s, for optional connection labels.
func StringPtr(s string) *string { return &s }
