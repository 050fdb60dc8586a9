// Package flow provides the call-routing flow graph: node variants, their
// per-type configuration, and the mutable graph store the editor operates on.
//
// # Overview
//
// A flow is a directed graph whose nodes are telephony IVR operations (play
// audio, gather digits, branch on a condition, route to a buyer, ...) and whose
// connections transfer control between them. The external call-routing engine
// executes the saved flow; this package only owns its structure.
//
// # Node Variants
//
// Every node has a [NodeType] fixed at creation. Its configuration is a tagged
// union: the [Config] interface with one concrete struct per variant
// ([MenuConfig], [PlayConfig], [RouterConfig], ...). [DefaultConfig] is the
// registry the engine relies on to pre-populate required fields:
//
//	cfg := flow.DefaultConfig(flow.TypeMenu).(flow.MenuConfig)
//	cfg.Timeout // 10
//	cfg.Retries // 3
//
// # Graph Store
//
// [New] creates a graph holding exactly one start node. Structural edits go
// through [Graph] methods, which keep the invariants:
//
//  1. Exactly one node of type start; it can never be removed.
//  2. Node ids and connection ids are unique.
//  3. Every connection references existing nodes. [Graph.RemoveNode] cascades
//     to incident connections rather than leaving them dangling.
//  4. A node's config always matches the schema of its type.
//  5. Positions are clamped to x >= 0, y >= 0.
//
// Ids come from an injected [IDGenerator]; [UUIDGenerator] is the default and
// [NewSequence] gives deterministic ids for tests.
//
//	g := flow.New(flow.WithIDGenerator(flow.NewSequence()))
//	play, _ := g.AddNode(flow.TypePlay, flow.Position{X: 100, Y: 200})
//	conn, _ := g.AddConnection(g.StartID(), play.ID, nil) // label "Default"
//	_ = g.RemoveNode(play.ID)                             // conn is gone too
//
// # Concurrency
//
// Graph is not safe for concurrent use. The editor mutates it synchronously
// from a single event loop.
package flow
