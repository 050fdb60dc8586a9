// Package viewport maps between screen coordinates and the world coordinates
// in which flow nodes are stored.
//
// A [Viewport] holds a zoom factor and a pan offset. Every pointer-derived
// position goes through [Viewport.ScreenToWorld], and everything drawn goes
// back through [Viewport.WorldToScreen]:
//
//	world  = (screen - origin - pan) / zoom
//	screen = world*zoom + pan + origin
//
// origin is the top-left corner of the canvas on screen. Using the one pair
// of formulas everywhere keeps dragged, connected and newly placed nodes
// aligned at every zoom level.
package viewport

import "math"

// Zoom limits and step sizes.
const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	DefaultZoom = 1.0

	// ButtonStep is the zoom change of [Viewport.ZoomIn] and [Viewport.ZoomOut].
	ButtonStep = 0.2
	// WheelStep is the zoom change of one modified wheel event.
	WheelStep = 0.1
)

// DefaultAnchor is the screen point, relative to the canvas origin, where
// nodes added without a pointer position appear.
var DefaultAnchor = Point{X: 300, Y: 200}

// Point is a 2D coordinate, in screen or world space depending on context.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p*k.
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Viewport is the zoom and pan state of the canvas. It is not safe for
// concurrent use; the editor owns it.
type Viewport struct {
	zoom   float64
	pan    Point
	origin Point
	anchor Point
}

// Option configures a Viewport.
type Option func(*Viewport)

// WithOrigin sets the canvas origin in screen coordinates.
func WithOrigin(p Point) Option {
	return func(v *Viewport) { v.origin = p }
}

// WithAnchor sets the placement anchor, relative to the canvas origin.
func WithAnchor(p Point) Option {
	return func(v *Viewport) { v.anchor = p }
}

// New returns a viewport at zoom 1.0 with no pan.
func New(opts ...Option) *Viewport {
	v := &Viewport{zoom: DefaultZoom, anchor: DefaultAnchor}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Pan returns the current pan offset.
func (v *Viewport) Pan() Point { return v.pan }

// Origin returns the canvas origin in screen coordinates.
func (v *Viewport) Origin() Point { return v.origin }

// SetOrigin moves the canvas origin, e.g. after the canvas is laid out again.
func (v *Viewport) SetOrigin(p Point) { v.origin = p }

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(z float64) { v.zoom = clampZoom(z) }

// SetPan sets the pan offset.
func (v *Viewport) SetPan(p Point) { v.pan = p }

// ZoomIn increases zoom by [ButtonStep].
func (v *Viewport) ZoomIn() { v.SetZoom(v.zoom + ButtonStep) }

// ZoomOut decreases zoom by [ButtonStep].
func (v *Viewport) ZoomOut() { v.SetZoom(v.zoom - ButtonStep) }

// Wheel applies one wheel event. Without a modifier the event is not a zoom
// gesture and Wheel reports false, leaving the viewport unchanged. With a
// modifier, scrolling up (negative deltaY) zooms in by [WheelStep] and
// scrolling down zooms out.
func (v *Viewport) Wheel(deltaY float64, modifier bool) bool {
	if !modifier || deltaY == 0 {
		return false
	}
	if deltaY < 0 {
		v.SetZoom(v.zoom + WheelStep)
	} else {
		v.SetZoom(v.zoom - WheelStep)
	}
	return true
}

// Reset restores zoom 1.0 and zero pan.
func (v *Viewport) Reset() {
	v.zoom = DefaultZoom
	v.pan = Point{}
}

// ScreenToWorld converts a screen point to world coordinates.
func (v *Viewport) ScreenToWorld(p Point) Point {
	return p.Sub(v.origin).Sub(v.pan).Scale(1 / v.zoom)
}

// WorldToScreen converts a world point to screen coordinates.
func (v *Viewport) WorldToScreen(p Point) Point {
	return p.Scale(v.zoom).Add(v.pan).Add(v.origin)
}

// ScreenDelta converts a screen-space distance to a world-space distance.
func (v *Viewport) ScreenDelta(d Point) Point { return d.Scale(1 / v.zoom) }

// PlacementPoint returns the world position for a node added without a
// pointer, so it shows up at the same screen spot whatever the pan and zoom.
func (v *Viewport) PlacementPoint() Point {
	return v.ScreenToWorld(v.origin.Add(v.anchor))
}

// PanGesture records where a canvas pan started.
type PanGesture struct {
	StartScreen Point
	StartPan    Point
}

// BeginPan starts a pan at screen point p.
func (v *Viewport) BeginPan(p Point) PanGesture {
	return PanGesture{StartScreen: p, StartPan: v.pan}
}

// PanTo updates the pan offset for a pan gesture whose pointer is now at p:
// pan = start pan + (p - start point).
func (v *Viewport) PanTo(g PanGesture, p Point) {
	v.pan = g.StartPan.Add(p.Sub(g.StartScreen))
}

// clampZoom rounds to hundredths so repeated steps do not drift, then clamps.
func clampZoom(z float64) float64 {
	z = math.Round(z*100) / 100
	return min(max(z, MinZoom), MaxZoom)
}
