package camera

import "math"

// Motion and zoom constants.
const (
	// Accel scales a pan gesture into added velocity.
	Accel = 0.8
	// Damping is applied to velocity once per Integrate.
	Damping = 0.85
	// ZoomStep is the multiplicative factor of one scroll notch.
	ZoomStep = 1.1
	MinZoom  = 0.2
	MaxZoom  = 5.0

	// settleEpsilon is the speed below which the camera counts as at rest.
	settleEpsilon = 1e-3
)

// State is a read-only copy of the camera.
type State struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Zoom   float64 `json:"zoom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Camera maps between world coordinates and screen pixels. The offset
// (X, Y) is added to world coordinates before scaling, so panning right
// increases X and moves content right on screen.
type Camera struct {
	x, y   float64
	vx, vy float64
	zoom   float64
	width  float64
	height float64
}

// New creates a camera at the origin with zoom 1 for a viewport of the
// given size in pixels.
func New(width, height float64) *Camera {
	return &Camera{zoom: 1, width: width, height: height}
}

// ScreenToWorld converts a viewport pixel position to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	wx := (sx-c.width/2)/c.zoom - c.x
	wy := (sy-c.height/2)/c.zoom - c.y
	return wx, wy
}

// WorldToScreen is the inverse of ScreenToWorld.
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	sx := (wx+c.x)*c.zoom + c.width/2
	sy := (wy+c.y)*c.zoom + c.height/2
	return sx, sy
}

// Pan adds velocity for a drag of (dx, dy) screen pixels. The effect is
// divided by zoom so a drag covers the same screen distance at any zoom.
func (c *Camera) Pan(dx, dy float64) {
	c.vx += dx / c.zoom * Accel
	c.vy += dy / c.zoom * Accel
}

// Integrate advances the inertial motion by one step.
func (c *Camera) Integrate() {
	c.x += c.vx
	c.y += c.vy
	c.vx *= Damping
	c.vy *= Damping
}

// Settled reports whether the camera has effectively stopped moving.
func (c *Camera) Settled() bool {
	return math.Hypot(c.vx, c.vy) < settleEpsilon
}

// Zoom steps the zoom in (sign > 0) or out (sign < 0) around the viewport
// centre. The result is clamped to [MinZoom, MaxZoom].
func (c *Camera) Zoom(sign int) {
	c.zoom = nextZoom(c.zoom, sign)
}

// ZoomAt steps the zoom like Zoom but keeps the world point under the
// screen position (sx, sy) fixed.
func (c *Camera) ZoomAt(sign int, sx, sy float64) {
	old := c.zoom
	c.zoom = nextZoom(old, sign)
	if c.zoom == old {
		return
	}
	dx := sx - c.width/2
	dy := sy - c.height/2
	c.x += dx/c.zoom - dx/old
	c.y += dy/c.zoom - dy/old
}

func nextZoom(z float64, sign int) float64 {
	switch {
	case sign > 0:
		z *= ZoomStep
	case sign < 0:
		z /= ZoomStep
	}
	return max(MinZoom, min(MaxZoom, z))
}

// Resize updates the viewport size. The world point at the centre of the
// viewport stays at the centre.
func (c *Camera) Resize(width, height float64) {
	c.width = width
	c.height = height
}

// ZoomLevel returns the current zoom factor.
func (c *Camera) ZoomLevel() float64 {
	return c.zoom
}

// State returns a copy of the camera state.
func (c *Camera) State() State {
	return State{
		X: c.x, Y: c.y,
		VX: c.vx, VY: c.vy,
		Zoom:  c.zoom,
		Width: c.width, Height: c.height,
	}
}
