// Package render turns flows into diagrams.
//
// [Flow] is the single entry point used by the CLI and the HTTP server. It
// dispatches on an output format:
//
//	dot   Graphviz source, no rendering
//	svg   vector image, scaled to its container
//	png   raster image
//
// Layout and styling live in the [nodelink] subpackage.
package render
