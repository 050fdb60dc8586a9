// Package nodelink renders flows as Graphviz node-link diagrams.
//
// [ToDOT] produces DOT source with one node per flow step and one edge per
// connection. Node shape and fill follow the step type so branching steps
// (condition, hours) stand out from linear ones:
//
//	start, end          oval
//	condition, hours    diamond
//	router, splitter    hexagon
//	everything else     rounded box
//
// Connection labels follow the editor's convention: an absent label draws
// a bare arrow, an explicitly empty label draws "+".
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz]; no external binaries are needed.
package nodelink
