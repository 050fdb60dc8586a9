// Package editor interprets pointer and keyboard input into flow edits.
//
// An [Editor] ties a [flow.Graph] and a [viewport.Viewport] to an explicit
// finite state machine. Exactly one [Mode] is active at a time:
//
//	Idle           nothing selected
//	NodeSelected   a node is the target of the property panel
//	Connecting     a connection handle was activated; the next click on a
//	               different node creates a connection
//	Dragging       a node follows the pointer
//	PanningCanvas  the canvas follows the pointer
//	EditingLabel   a node or connection label is being edited inline
//
// Because the modes are exclusive, a node drag can never pan the canvas and
// a label edit is always committed before another gesture starts.
//
// # Events
//
// Input arrives as [Event] values passed to [Editor.Handle]. The view layer
// is responsible for hit testing: it tells the editor whether a pointer
// event landed on a node, on a connection or on the bare canvas.
//
//	ed := editor.New(flow.New(), viewport.New())
//	ed.Handle(editor.PointerDown{At: p, Hit: editor.NodeHit(id)})
//	ed.Handle(editor.PointerMove{At: q})
//	ed.Handle(editor.PointerUp{At: q})
//
// Handle returns an error only for structural rejections (removing the start
// node, committing a blank node label). The editor state and the graph are
// left unchanged by a rejected operation.
//
// # Concurrency
//
// An Editor is single-threaded. Every event is applied synchronously; callers
// serialize access.
package editor
