package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/obj"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
	mountDotRadius      = 2
)

var kindColors = map[obj.Kind]color.Color{
	obj.KindCockpit:  colornames.Steelblue,
	obj.KindTube:     colornames.Slategray,
	obj.KindThruster: colornames.Darkorange,
	obj.KindCannon:   colornames.Firebrick,
	obj.KindBeam:     colornames.Mediumpurple,
	obj.KindRocket:   colornames.Gold,
}

// drawModules renders every module from its draw snapshot. Mount points are
// only shown in the editor.
func drawModules(screen *ebiten.Image, cam *Camera, mods []obj.DrawData, editing bool) {
	for _, d := range mods {
		drawOutline(screen, cam, d.Polygon, kindColor(d.Kind), 2)

		if d.Thrust > 0 && len(d.Polygon) > 0 {
			back := cp.ForAngle(d.Angle).Mult(-20 * d.Thrust)
			x0, y0 := cam.WorldToScreen(d.Position)
			x1, y1 := cam.WorldToScreen(d.Position.Add(back))
			vector.StrokeLine(screen, x0, y0, x1, y1, 3, colornames.Orange, true)
		}
		if len(d.Beam) == 2 {
			x0, y0 := cam.WorldToScreen(d.Beam[0])
			x1, y1 := cam.WorldToScreen(d.Beam[1])
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, colornames.Aqua, true)
		}
		if d.HasBattery {
			drawCharge(screen, cam, d)
		}
		if editing {
			for _, mp := range d.Mounts {
				x, y := cam.WorldToScreen(mp.Position)
				r := float32(mountDotRadius * mp.Highlight * cam.Zoom())
				vector.FillRect(screen, x-r, y-r, 2*r, 2*r, colornames.Lime, false)
			}
		}
	}
}

// drawCharge puts a small bar under the module's origin.
func drawCharge(screen *ebiten.Image, cam *Camera, d obj.DrawData) {
	x, y := cam.WorldToScreen(d.Position)
	w := float32(16 * cam.Zoom())
	h := float32(3 * cam.Zoom())
	x -= w / 2
	y += h * 2
	vector.FillRect(screen, x, y, w, h, colornames.Dimgray, false)
	vector.FillRect(screen, x, y, w*float32(d.Charge)/100, h, colornames.Limegreen, false)
}

func drawOutline(screen *ebiten.Image, cam *Camera, poly []cp.Vector, clr color.Color, width float32) {
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		x0, y0 := cam.WorldToScreen(a)
		x1, y1 := cam.WorldToScreen(b)
		vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)
	}
}

func kindColor(k obj.Kind) color.Color {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return colornames.White
}

// debugMode cycles with Z.
type debugMode int

const (
	debugOff debugMode = iota
	debugShapes
	debugStats
	debugModeCount
)

func (m debugMode) next() debugMode {
	return (m + 1) % debugModeCount
}

// drawPhysicsDebug overlays the chipmunk shapes of the world.
func drawPhysicsDebug(screen *ebiten.Image, cam *Camera, space *cp.Space) {
	if space == nil || screen == nil {
		return
	}
	cp.DrawSpace(space, &physicsDebugDrawer{screen: screen, cam: cam})
}

func drawStats(screen *ebiten.Image, w *obj.World, ship *obj.Ship) {
	text := fmt.Sprintf("FPS: %.1f  frame: %d\nmodules: %d  ships: %d  edges: %d",
		ebiten.ActualFPS(), w.Frame(), len(w.Modules()), len(w.Ships()), w.Graph().Len())
	if ship != nil && !ship.Empty() {
		v := ship.Body().Velocity()
		text += fmt.Sprintf("\nship mass: %.0f  speed: %.1f  spin: %.2f",
			ship.Mass(), v.Length(), ship.Body().AngularVelocity())
	}
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	cam    *Camera
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawCircle(pos, radius, outline)
	d.drawLine(pos, pos.Add(cp.ForAngle(angle).Mult(radius)), outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	drawOutline(d.screen, d.cam, verts[:count], toNRGBA(outline), 1)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, clr cp.FColor) {
	x0, y0 := d.cam.WorldToScreen(a)
	x1, y1 := d.cam.WorldToScreen(b)
	vector.StrokeLine(d.screen, x0, y0, x1, y1, 1, toNRGBA(clr), false)
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, clr cp.FColor) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, center.Add(cp.ForAngle(t).Mult(radius)))
	}
	drawOutline(d.screen, d.cam, points, toNRGBA(clr), 1)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
