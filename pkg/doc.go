// Package pkg holds the libraries behind ivrflow, an editor and store for
// IVR call-routing flows.
//
// # Overview
//
// A flow is a directed graph: a single start node, typed step nodes (menus,
// prompts, routers, business-hours checks and so on) and labeled connections
// between them. The packages split along the editing pipeline:
//
//  1. [flow] - node type registry, per-type configs and the graph store
//  2. [viewport] - zoom and pan, screen/world coordinate mapping
//  3. [editor] - the pointer and keyboard interaction state machine
//  4. [document] - the persisted flow-definition document and save path
//  5. [store] - file, Redis and MongoDB document stores
//  6. [render] - Graphviz export (DOT, SVG, PNG)
//  7. [lookup] - buyer and campaign directories for node configs
//
// # Architecture
//
//	pointer / key input
//	         ↓
//	    [editor] (interaction state machine)
//	         ↓
//	    [flow] Graph (the only mutation entry point)
//	         ↓
//	    [document] (build and validate)
//	         ↓
//	    [store] backend or file
//
// # Quick Start
//
//	g := flow.New()
//	menu, _ := g.AddNode(flow.TypeMenu, flow.Position{X: 250, Y: 200})
//	_, _ = g.AddConnection(flow.StartNodeID, menu.ID, nil)
//
//	d, err := document.Build(document.Meta{Name: "Sales line"}, g)
//
// [flow]: github.com/matzehuels/ivrflow/pkg/flow
// [viewport]: github.com/matzehuels/ivrflow/pkg/viewport
// [editor]: github.com/matzehuels/ivrflow/pkg/editor
// [document]: github.com/matzehuels/ivrflow/pkg/document
// [store]: github.com/matzehuels/ivrflow/pkg/store
// [render]: github.com/matzehuels/ivrflow/pkg/render
// [lookup]: github.com/matzehuels/ivrflow/pkg/lookup
package pkg
