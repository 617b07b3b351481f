package main

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/common"
)

// Camera maps world coordinates to the screen, centered on PosX/PosY.
type Camera struct {
	PosX float64
	PosY float64

	screenW int
	screenH int
	zoom    float64

	// smoothing factor (0..1). higher -> faster follow.
	smooth float64
}

func NewCamera(screenW, screenH int, zoom float64) *Camera {
	return &Camera{
		PosX:    float64(screenW) / 2,
		PosY:    float64(screenH) / 2,
		screenW: screenW,
		screenH: screenH,
		zoom:    zoom,
		smooth:  0.1,
	}
}

func (c *Camera) Zoom() float64 {
	return c.zoom
}

// SetZoom ignores non-positive values.
func (c *Camera) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	c.zoom = z
}

// ViewTopLeft returns the world-space top-left of the current view.
func (c *Camera) ViewTopLeft() (float64, float64) {
	viewW := float64(c.screenW) / c.zoom
	viewH := float64(c.screenH) / c.zoom
	return c.PosX - viewW/2, c.PosY - viewH/2
}

func (c *Camera) ScreenToWorld(sx, sy float64) cp.Vector {
	vx, vy := c.ViewTopLeft()
	return cp.Vector{X: vx + sx/c.zoom, Y: vy + sy/c.zoom}
}

func (c *Camera) WorldToScreen(p cp.Vector) (float32, float32) {
	vx, vy := c.ViewTopLeft()
	return float32((p.X - vx) * c.zoom), float32((p.Y - vy) * c.zoom)
}

// Follow eases the camera toward a world point.
func (c *Camera) Follow(target cp.Vector) {
	if c.smooth <= 0 {
		c.SnapTo(target)
		return
	}
	c.PosX = common.Lerp(c.PosX, target.X, c.smooth)
	c.PosY = common.Lerp(c.PosY, target.Y, c.smooth)
	c.round()
}

func (c *Camera) SnapTo(target cp.Vector) {
	c.PosX, c.PosY = target.X, target.Y
	c.round()
}

// round snaps to the 1/zoom grid so texels land on whole pixels.
func (c *Camera) round() {
	c.PosX = math.Round(c.PosX*c.zoom) / c.zoom
	c.PosY = math.Round(c.PosY*c.zoom) / c.zoom
}
