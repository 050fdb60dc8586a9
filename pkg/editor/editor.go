package editor

import (
	"errors"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/viewport"
)

// Editor is the interaction state machine over a graph and a viewport.
type Editor struct {
	graph *flow.Graph
	view  *viewport.Viewport
	log   *log.Logger

	state State
	// resume is the state restored when a drag, pan or label edit ends.
	resume State
	// moved is set once the pointer moves during a drag or pan.
	moved bool
	// suppressClick swallows the click that ends a canvas pan.
	suppressClick bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger for state transitions and rejections.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an idle editor over g and v.
func New(g *flow.Graph, v *viewport.Viewport, opts ...Option) *Editor {
	e := &Editor{
		graph:  g,
		view:   v,
		log:    log.Default(),
		state:  idle(),
		resume: idle(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the edited graph.
func (e *Editor) Graph() *flow.Graph { return e.graph }

// Viewport returns the canvas viewport.
func (e *Editor) Viewport() *viewport.Viewport { return e.view }

// State returns the current interaction state.
func (e *Editor) State() State { return e.state }

// Selected returns the node shown in the property panel, if any. A node stays
// selected while it is dragged or while a label is edited from the selection.
func (e *Editor) Selected() (string, bool) {
	switch e.state.Mode {
	case NodeSelected, Dragging:
		return e.state.NodeID, true
	case EditingLabel:
		if e.resume.Mode == NodeSelected {
			return e.resume.NodeID, true
		}
	}
	return "", false
}

// Handle applies one event. See the package documentation for the errors it
// returns.
func (e *Editor) Handle(ev Event) error {
	switch ev := ev.(type) {
	case PointerDown:
		return e.pointerDown(ev)
	case PointerMove:
		e.pointerMove(ev.At)
	case PointerUp:
		e.release()
	case PointerLeave:
		e.release()
	case Click:
		return e.click(ev)
	case Wheel:
		e.view.Wheel(ev.DeltaY, ev.Modifier)
	case ActivateHandle:
		return e.activateHandle(ev.NodeID)
	case ActivateLabel:
		return e.activateLabel(ev.Target)
	case EditText:
		if e.state.Mode == EditingLabel {
			e.state.Draft = ev.Text
		}
	case KeyPress:
		return e.key(ev.Key)
	case Blur:
		if e.state.Mode == EditingLabel {
			return e.commitLabel()
		}
	case ZoomIn:
		e.view.ZoomIn()
	case ZoomOut:
		e.view.ZoomOut()
	case ResetView:
		e.view.Reset()
	case AddNode:
		return e.addNode(ev)
	case DeleteSelection:
		if e.state.Mode == NodeSelected {
			return e.removeNode(e.state.NodeID)
		}
	case DeleteConnection:
		e.removeConnection(ev.ID)
	case UpdateConfig:
		return e.graph.UpdateNodeConfig(ev.NodeID, ev.Partial)
	}
	return nil
}

// busy reports whether a pointer gesture owns the pointer.
func (e *Editor) busy() bool {
	return e.state.Mode == Dragging || e.state.Mode == PanningCanvas
}

// finishEdit commits a pending label edit, if any.
func (e *Editor) finishEdit() error {
	if e.state.Mode != EditingLabel {
		return nil
	}
	return e.commitLabel()
}

// =============================================================================
// Pointer gestures
// =============================================================================

func (e *Editor) pointerDown(ev PointerDown) error {
	err := e.finishEdit()
	if e.busy() || e.state.Mode == Connecting {
		// While connecting, the click that follows decides the outcome.
		return err
	}

	e.moved = false
	e.suppressClick = false

	switch ev.Hit.Kind {
	case HitNode:
		n, ok := e.graph.Node(ev.Hit.ID)
		if !ok {
			return err
		}
		grab := e.view.ScreenToWorld(ev.At).Sub(viewport.Point(n.Position))
		e.resume = e.state
		e.set(State{Mode: Dragging, NodeID: n.ID, Grab: grab})
	case HitCanvas:
		e.resume = e.state
		e.set(State{Mode: PanningCanvas, Pan: e.view.BeginPan(ev.At)})
	}
	return err
}

func (e *Editor) pointerMove(at viewport.Point) {
	switch e.state.Mode {
	case Dragging:
		pos := e.view.ScreenToWorld(at).Sub(e.state.Grab)
		if err := e.graph.MoveNode(e.state.NodeID, flow.Position(pos)); err != nil {
			e.set(idle())
			return
		}
		e.moved = true
	case PanningCanvas:
		e.view.PanTo(e.state.Pan, at)
		if at != e.state.Pan.StartScreen {
			e.moved = true
		}
	}
}

// release ends a drag or pan on pointer-up or when the pointer leaves the canvas.
func (e *Editor) release() {
	switch e.state.Mode {
	case Dragging:
		if e.moved {
			e.log.Debug("node moved", "id", e.state.NodeID)
		}
		e.set(selected(e.state.NodeID))
		e.resume = idle()
	case PanningCanvas:
		e.suppressClick = e.moved
		e.set(e.resume)
		e.resume = idle()
	}
}

func (e *Editor) click(ev Click) error {
	if e.suppressClick {
		e.suppressClick = false
		return nil
	}
	err := e.finishEdit()
	if e.busy() {
		return err
	}

	if e.state.Mode == Connecting {
		source := e.state.NodeID
		e.set(idle())
		if ev.Hit.Kind == HitNode && ev.Hit.ID != source {
			c, cerr := e.graph.AddConnection(source, ev.Hit.ID, nil)
			if cerr != nil {
				return errors.Join(err, cerr)
			}
			e.log.Debug("connected", "id", c.ID, "source", source, "target", ev.Hit.ID)
		}
		return err
	}

	switch ev.Hit.Kind {
	case HitNode:
		if _, ok := e.graph.Node(ev.Hit.ID); ok {
			e.set(selected(ev.Hit.ID))
		}
	case HitCanvas:
		e.set(idle())
	}
	return err
}

// =============================================================================
// Handles, labels and keys
// =============================================================================

func (e *Editor) activateHandle(id string) error {
	err := e.finishEdit()
	if e.busy() {
		return err
	}
	if _, ok := e.graph.Node(id); !ok {
		return errors.Join(err, errs.New(errs.ErrCodeNotFound, "node %q not found", id))
	}
	e.set(State{Mode: Connecting, NodeID: id})
	return err
}

func (e *Editor) activateLabel(t Target) error {
	// A new edit force-commits the previous one.
	err := e.finishEdit()
	if e.busy() {
		return err
	}
	draft, ok := e.labelOf(t)
	if !ok {
		return errors.Join(err, errs.New(errs.ErrCodeNotFound, "%s %q not found", t.Kind, t.ID))
	}
	e.resume = e.state
	if e.resume.Mode == Connecting {
		// Editing a label is an unrelated action and cancels the connect gesture.
		e.resume = idle()
	}
	e.set(State{Mode: EditingLabel, Target: t, Draft: draft})
	return err
}

func (e *Editor) labelOf(t Target) (string, bool) {
	switch t.Kind {
	case TargetNode:
		if n, ok := e.graph.Node(t.ID); ok {
			return n.Data.Label, true
		}
	case TargetConnection:
		if c, ok := e.graph.Connection(t.ID); ok {
			return c.LabelText(), true
		}
	}
	return "", false
}

// commitLabel writes the draft and leaves EditingLabel. A rejected node label
// keeps its previous value; the edit still ends.
func (e *Editor) commitLabel() error {
	t, draft := e.state.Target, e.state.Draft
	e.set(e.resume)
	e.resume = idle()

	var err error
	switch t.Kind {
	case TargetNode:
		err = e.graph.UpdateNodeLabel(t.ID, draft)
	case TargetConnection:
		err = e.graph.UpdateConnectionLabel(t.ID, draft)
	}
	if err != nil {
		e.log.Warn("label rejected", "target", t.Kind, "id", t.ID, "err", err)
	}
	return err
}

func (e *Editor) key(k Key) error {
	switch e.state.Mode {
	case EditingLabel:
		switch k {
		case KeyEnter:
			return e.commitLabel()
		case KeyEscape:
			e.set(e.resume)
			e.resume = idle()
		}
	case Connecting:
		if k == KeyEscape {
			e.set(idle())
		}
	case NodeSelected:
		switch k {
		case KeyEscape:
			e.set(idle())
		case KeyDelete:
			return e.removeNode(e.state.NodeID)
		}
	}
	return nil
}

// =============================================================================
// Commands
// =============================================================================

func (e *Editor) addNode(ev AddNode) error {
	err := e.finishEdit()
	if e.busy() {
		return err
	}
	pos := e.view.PlacementPoint()
	if ev.At != nil {
		pos = e.view.ScreenToWorld(*ev.At)
	}
	n, aerr := e.graph.AddNode(ev.Type, flow.Position(pos))
	if aerr != nil {
		return errors.Join(err, aerr)
	}
	e.set(selected(n.ID))
	return err
}

// removeNode deletes a node and drops any interaction state that points at it.
func (e *Editor) removeNode(id string) error {
	if err := e.graph.RemoveNode(id); err != nil {
		if errs.IsStructuralRejection(err) {
			e.log.Warn("delete rejected", "id", id, "err", err)
		}
		return err
	}
	if e.state.references(id) {
		e.set(idle())
	}
	if e.resume.references(id) {
		e.resume = idle()
	}
	return nil
}

func (e *Editor) removeConnection(id string) {
	e.graph.RemoveConnection(id)
	if e.state.Mode == EditingLabel && e.state.Target.Kind == TargetConnection && e.state.Target.ID == id {
		e.set(e.resume)
		e.resume = idle()
	}
}

func (e *Editor) set(next State) {
	if next != e.state {
		e.log.Debug("state", "from", e.state, "to", next)
	}
	e.state = next
}
