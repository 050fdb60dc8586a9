package flow

import (
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// StartPosition is where [New] places the start node.
var StartPosition = Position{X: 250, Y: 50}

// Graph owns the nodes and connections of a flow and exposes the only
// mutation entry points. Nodes and connections keep insertion order so
// serialization is deterministic.
//
// The zero value is not usable - use [New] or [Restore].
type Graph struct {
	nodes []*Node
	index map[string]*Node
	conns []*Connection
	ids   IDGenerator
	log   *log.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDGenerator sets the id source for new nodes and connections.
func WithIDGenerator(gen IDGenerator) Option {
	return func(g *Graph) {
		if gen != nil {
			g.ids = gen
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.log = l
		}
	}
}

func newGraph(opts []Option) *Graph {
	g := &Graph{
		index: make(map[string]*Node),
		ids:   UUIDGenerator{},
		log:   log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// New creates a graph holding a single start node.
func New(opts ...Option) *Graph {
	g := newGraph(opts)
	g.insert(&Node{
		ID:       StartNodeID,
		Type:     TypeStart,
		Position: StartPosition,
		Data:     NodeData{Label: StartLabel, Config: EmptyConfig{}},
	})
	return g
}

// Restore rebuilds a graph from persisted nodes and connections.
//
// Configs are taken verbatim; no default generation runs. The result is
// checked with [Graph.Validate] and rejected with ErrCodeInvalidFormat if any
// invariant is broken.
func Restore(nodes []Node, conns []Connection, opts ...Option) (*Graph, error) {
	g := newGraph(opts)
	for i := range nodes {
		n := nodes[i]
		if _, dup := g.index[n.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "duplicate node id %q", n.ID)
		}
		g.insert(&n)
	}
	for i := range conns {
		c := conns[i]
		g.conns = append(g.conns, &c)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) insert(n *Node) {
	g.nodes = append(g.nodes, n)
	g.index[n.ID] = n
}

// newID allocates an id that is unused by both nodes and connections.
func (g *Graph) newID(kind string) string {
	for {
		id := g.ids.NewID(kind)
		if _, taken := g.index[id]; taken {
			continue
		}
		if _, taken := g.Connection(id); taken {
			continue
		}
		return id
	}
}

// =============================================================================
// Queries
// =============================================================================

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// NodeCount returns the number of nodes, including the start node.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// StartID returns the id of the start node, or "" if the graph has none.
func (g *Graph) StartID() string {
	for _, n := range g.nodes {
		if n.IsStart() {
			return n.ID
		}
	}
	return ""
}

// Connection returns the connection with the given id.
func (g *Graph) Connection(id string) (*Connection, bool) {
	for _, c := range g.conns {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Connections returns all connections in insertion order.
func (g *Graph) Connections() []*Connection { return slices.Clone(g.conns) }

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int { return len(g.conns) }

// Incident returns the connections whose source or target is nodeID.
func (g *Graph) Incident(nodeID string) []*Connection {
	var out []*Connection
	for _, c := range g.conns {
		if c.Touches(nodeID) {
			out = append(out, c)
		}
	}
	return out
}

// Outgoing returns the connections leaving nodeID.
func (g *Graph) Outgoing(nodeID string) []*Connection {
	var out []*Connection
	for _, c := range g.conns {
		if c.Source == nodeID {
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// Node mutations
// =============================================================================

// AddNode creates a node of type t at pos with the registry's default config
// and label. The position is clamped to the non-negative quadrant.
//
// t must be an addable type; the start node cannot be added twice.
func (g *Graph) AddNode(t NodeType, pos Position) (*Node, error) {
	if t == TypeStart {
		return nil, errs.New(errs.ErrCodeStructuralRejection, "a flow has exactly one start node")
	}
	if !t.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidNodeType, "unknown node type %q", t)
	}
	n := &Node{
		ID:       g.newID(KindNode),
		Type:     t,
		Position: pos.Clamp(),
		Data:     NodeData{Label: DefaultLabel(t), Config: DefaultConfig(t)},
	}
	g.insert(n)
	g.log.Debug("node added", "id", n.ID, "type", t)
	return n, nil
}

// RemoveNode deletes a node and every connection that touches it.
// Removing the start node is rejected with ErrCodeStructuralRejection and
// leaves the graph unchanged.
func (g *Graph) RemoveNode(id string) error {
	n, ok := g.index[id]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "node %q not found", id)
	}
	if n.IsStart() {
		return errs.New(errs.ErrCodeStructuralRejection, "cannot remove the start node")
	}

	before := len(g.conns)
	g.conns = slices.DeleteFunc(g.conns, func(c *Connection) bool { return c.Touches(id) })
	g.nodes = slices.DeleteFunc(g.nodes, func(x *Node) bool { return x.ID == id })
	delete(g.index, id)

	g.log.Debug("node removed", "id", id, "cascaded", before-len(g.conns))
	return nil
}

// MoveNode sets a node's position, clamped to the non-negative quadrant.
func (g *Graph) MoveNode(id string, pos Position) error {
	n, ok := g.index[id]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "node %q not found", id)
	}
	n.Position = pos.Clamp()
	return nil
}

// UpdateNodeLabel sets a node's display name after trimming whitespace.
// A blank label is rejected and the previous label kept.
func (g *Graph) UpdateNodeLabel(id, label string) error {
	n, ok := g.index[id]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "node %q not found", id)
	}
	if err := errs.ValidateLabel(label); err != nil {
		return err
	}
	n.Data.Label = strings.TrimSpace(label)
	return nil
}

// UpdateNodeConfig shallow-merges partial into the node's config. Keys not
// present in partial keep their values. Keys outside the variant's schema,
// or values of the wrong shape, are rejected and the config is unchanged.
func (g *Graph) UpdateNodeConfig(id string, partial map[string]any) error {
	n, ok := g.index[id]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "node %q not found", id)
	}
	merged, err := MergeConfig(n.Type, n.Data.Config, partial)
	if err != nil {
		return err
	}
	n.Data.Config = merged
	return nil
}

// SetNodeConfig replaces a node's config with a complete variant value.
// The variant must belong to the node's type.
func (g *Graph) SetNodeConfig(id string, cfg Config) error {
	n, ok := g.index[id]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "node %q not found", id)
	}
	if cfg == nil || cfg.NodeType() != n.Type {
		return errs.New(errs.ErrCodeInvalidInput, "config does not match node type %q", n.Type)
	}
	n.Data.Config = cfg
	return nil
}

// =============================================================================
// Connection mutations
// =============================================================================

// AddConnection connects source to target. A nil label becomes
// [DefaultConnectionLabel]; a pointer to "" is kept as an explicit empty label.
// Both endpoints must exist.
func (g *Graph) AddConnection(source, target string, label *string) (*Connection, error) {
	if _, ok := g.index[source]; !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "source node %q not found", source)
	}
	if _, ok := g.index[target]; !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "target node %q not found", target)
	}
	if label == nil {
		label = StringPtr(DefaultConnectionLabel)
	} else {
		label = StringPtr(*label)
	}
	c := &Connection{
		ID:     g.newID(KindConnection),
		Source: source,
		Target: target,
		Label:  label,
	}
	g.conns = append(g.conns, c)
	g.log.Debug("connection added", "id", c.ID, "source", source, "target", target)
	return c, nil
}

// UpdateConnectionLabel sets a connection's label verbatim. The empty string
// is a valid explicit label.
func (g *Graph) UpdateConnectionLabel(id, label string) error {
	c, ok := g.Connection(id)
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "connection %q not found", id)
	}
	c.Label = StringPtr(label)
	return nil
}

// UpdateConnectionCondition sets or clears (nil) the routing predicate.
func (g *Graph) UpdateConnectionCondition(id string, condition *string) error {
	c, ok := g.Connection(id)
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "connection %q not found", id)
	}
	if condition != nil {
		condition = StringPtr(*condition)
	}
	c.Condition = condition
	return nil
}

// RemoveConnection deletes a connection. Unknown ids are ignored.
func (g *Graph) RemoveConnection(id string) {
	g.conns = slices.DeleteFunc(g.conns, func(c *Connection) bool { return c.ID == id })
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks every structural invariant and returns the first violation
// as an ErrCodeInvalidFormat error:
//
//  1. exactly one start node
//  2. unique node and connection ids
//  3. no dangling connection endpoints
//  4. each config matches its node's type
//  5. non-negative positions
func (g *Graph) Validate() error {
	starts := 0
	for _, n := range g.nodes {
		if !n.Type.Valid() {
			return errs.New(errs.ErrCodeInvalidFormat, "node %q has unknown type %q", n.ID, n.Type)
		}
		if n.IsStart() {
			starts++
		}
		if n.Data.Config == nil || n.Data.Config.NodeType() != n.Type {
			return errs.New(errs.ErrCodeInvalidFormat, "node %q config does not match type %q", n.ID, n.Type)
		}
		if n.Position.X < 0 || n.Position.Y < 0 {
			return errs.New(errs.ErrCodeInvalidFormat, "node %q has negative position", n.ID)
		}
	}
	if starts != 1 {
		return errs.New(errs.ErrCodeInvalidFormat, "flow must have exactly one start node, found %d", starts)
	}

	seen := make(map[string]bool, len(g.conns))
	for _, c := range g.conns {
		if seen[c.ID] {
			return errs.New(errs.ErrCodeInvalidFormat, "duplicate connection id %q", c.ID)
		}
		seen[c.ID] = true
		if _, ok := g.index[c.Source]; !ok {
			return errs.New(errs.ErrCodeInvalidFormat, "connection %q has unknown source %q", c.ID, c.Source)
		}
		if _, ok := g.index[c.Target]; !ok {
			return errs.New(errs.ErrCodeInvalidFormat, "connection %q has unknown target %q", c.ID, c.Target)
		}
	}
	return nil
}
