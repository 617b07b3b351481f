package obj

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/common"
	"github.com/milk9111/modular/ecs"
)

// powerPullLimit caps how much a receiver asks for per tick.
const powerPullLimit = 5.0

// AttachmentState is either Standalone or Attached.
type AttachmentState interface {
	attachment()
}

// Standalone modules own a dynamic body in the space.
type Standalone struct {
	Body *cp.Body
}

// Attached modules have no body of their own; their shape hangs off the
// ship body at Offset, rotated by AngleOffset.
type Attached struct {
	Ship        ecs.Entity
	Offset      cp.Vector
	AngleOffset float64
}

func (Standalone) attachment() {}
func (Attached) attachment() {}

// Metadata is the editor/serialization record of how a module was placed.
// Angle is in degrees. ParentMount and MountOn are -1 until connected.
type Metadata struct {
	X, Y        float64
	Angle       float64
	Compatible  bool
	ParentMount int
	MountOn     int
}

type Module struct {
	id       ecs.Entity
	def      *kindDef
	mounts   []*MountPoint
	battery  *Battery
	triggers []*Trigger
	behavior behavior
	Meta     Metadata

	state     AttachmentState
	shape     *cp.Shape
	lastPower float64
}

func (m *Module) ID() ecs.Entity { return m.id }
func (m *Module) Kind() Kind { return m.def.kind }
func (m *Module) Battery() *Battery { return m.battery }
func (m *Module) Mounts() []*MountPoint { return m.mounts }
func (m *Module) Triggers() []*Trigger { return m.triggers }
func (m *Module) State() AttachmentState { return m.state }
func (m *Module) Shape() *cp.Shape { return m.shape }
func (m *Module) Compatible() bool { return m.Meta.Compatible }
func (m *Module) Mass() float64 { return m.def.mass }
func (m *Module) LastPower() float64 { return m.lastPower }
func (m *Module) IsProjectile() bool { return m.def.projectile }
func (m *Module) hasBattery() bool { return m.battery.Capacity() > 0 }

func (m *Module) Mount(index int) (*MountPoint, bool) {
	if index < 0 || index >= len(m.mounts) {
		return nil, false
	}
	return m.mounts[index], true
}

// Attachment reports the ship binding when attached.
func (m *Module) Attachment() (Attached, bool) {
	st, ok := m.state.(Attached)
	return st, ok
}

// TriggerMap returns code -> action for serialization.
func (m *Module) TriggerMap() map[string]string {
	if len(m.triggers) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.triggers))
	for _, t := range m.triggers {
		out[string(t.Code)] = t.Action
	}
	return out
}

// frame returns the body carrying the module shape and the module's pose
// in that body's local frame.
func (m *Module) frame(w *World) (*cp.Body, cp.Vector, float64) {
	switch st := m.state.(type) {
	case Standalone:
		return st.Body, cp.Vector{}, 0
	case Attached:
		s, ok := w.Ship(st.Ship)
		if !ok {
			return nil, st.Offset, st.AngleOffset
		}
		return s.body, st.Offset, st.AngleOffset
	}
	return nil, cp.Vector{}, 0
}

// Body is the rigid body currently simulating the module: its own body when
// standalone, the ship body when attached.
func (m *Module) Body(w *World) *cp.Body {
	body, _, _ := m.frame(w)
	return body
}

func (m *Module) LocalToWorld(w *World, p cp.Vector) cp.Vector {
	body, off, angle := m.frame(w)
	if body == nil {
		return off.Add(p)
	}
	return body.LocalToWorld(off.Add(p.Rotate(cp.ForAngle(angle))))
}

func (m *Module) WorldToLocal(w *World, p cp.Vector) cp.Vector {
	body, off, angle := m.frame(w)
	if body == nil {
		return p.Sub(off)
	}
	return body.WorldToLocal(p).Sub(off).Rotate(cp.ForAngle(-angle))
}

func (m *Module) WorldPosition(w *World) cp.Vector {
	return m.LocalToWorld(w, cp.Vector{})
}

func (m *Module) WorldAngle(w *World) float64 {
	body, _, angle := m.frame(w)
	if body == nil {
		return angle
	}
	return body.Angle() + angle
}

// WorldVelocity is the velocity of the module's origin, including the
// contribution of the carrying body's spin.
func (m *Module) WorldVelocity(w *World) cp.Vector {
	body, _, _ := m.frame(w)
	if body == nil {
		return cp.Vector{}
	}
	r := m.WorldPosition(w).Sub(body.Position())
	return body.Velocity().Add(r.Perp().Mult(body.AngularVelocity()))
}

func (m *Module) AngularVelocity(w *World) float64 {
	body, _, _ := m.frame(w)
	if body == nil {
		return 0
	}
	return body.AngularVelocity()
}

// ApplyImpulse pushes whichever body carries the module at a world point.
func (m *Module) ApplyImpulse(w *World, impulse, point cp.Vector) {
	body, _, _ := m.frame(w)
	if body == nil {
		return
	}
	body.ApplyImpulseAtWorldPoint(impulse, point)
}

// WorldPolygon returns the module outline in world space.
func (m *Module) WorldPolygon(w *World) []cp.Vector {
	out := make([]cp.Vector, len(m.def.geometry))
	for i, v := range m.def.geometry {
		out[i] = m.LocalToWorld(w, v)
	}
	return out
}

// Contains reports whether a world point lies inside the module outline.
func (m *Module) Contains(w *World, p cp.Vector) bool {
	if m.shape == nil {
		return false
	}
	m.shape.CacheBB()
	return m.shape.PointQuery(p).Distance <= 0
}

// StartTrigger propagates a control value to every module downstream of m.
// m itself is not latched.
func (m *Module) StartTrigger(w *World, code TriggerCode, value bool) {
	w.graph.Walk(m.id, func(e ecs.Entity) {
		if child, ok := w.Module(e); ok {
			child.Trigger(code, value)
		}
	})
}

// Trigger latches value on every binding for code. Cockpits hold their own
// bindings inert.
func (m *Module) Trigger(code TriggerCode, value bool) bool {
	if m.def.kind == KindCockpit {
		return false
	}
	matched := false
	for _, t := range m.triggers {
		if t.Code == code {
			t.Value = value
			matched = true
		}
	}
	return matched
}

// TriggerValue returns the latched value for code.
func (m *Module) TriggerValue(code TriggerCode) bool {
	for _, t := range m.triggers {
		if t.Code == code && t.Value {
			return true
		}
	}
	return false
}

func (m *Module) handleTriggers(w *World) {
	for _, t := range m.triggers {
		if t.Value {
			w.perform(m, t.Action)
		}
	}
}

// ReceivePower tops up from src, asking for at most powerPullLimit and
// using the receiver's own fill percentage as priority so emptier
// batteries are served first.
func (m *Module) ReceivePower(src *Battery) {
	if m.battery.Full() {
		return
	}
	requested := common.Cap(m.battery.Deficit(), powerPullLimit)
	got, ok := src.DrawPower(requested, m.battery.Percentage())
	if !ok {
		m.lastPower = 0
		return
	}
	m.battery.AddPower(got)
	m.lastPower = got
}

// syncMeta copies the live pose into the placement record.
func (m *Module) syncMeta(w *World) {
	p := m.WorldPosition(w)
	m.Meta.X, m.Meta.Y = p.X, p.Y
	m.Meta.Angle = common.RadToDeg(common.NormalizeAngle(m.WorldAngle(w)))
}
