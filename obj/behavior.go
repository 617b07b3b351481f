package obj

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	ActionThrust = "thrust"
	ActionFire   = "fire"
	ActionBeam   = "beam"

	thrustDraw    = 0.5
	thrustImpulse = 4.0
	thrustDecay   = 0.1

	fireDraw      = 10.0
	fireCooldown  = 10.0
	cooldownDecay = 0.1

	beamDraw    = 1.0
	beamImpulse = 2.0

	rocketThrustTime = 2.0
	rocketLifetime   = 3.0
	rocketImpulse    = 30.0
)

// behavior is the per-kind part of a module. perform reports whether the
// action belongs to the kind; unknown actions fall through to scripts.
type behavior interface {
	perform(w *World, m *Module, action string) bool
	update(w *World, m *Module)
}

func newBehavior(kind Kind) behavior {
	switch kind {
	case KindThruster:
		return &thruster{}
	case KindCannon:
		return &cannon{}
	case KindBeam:
		return &beam{}
	case KindRocket:
		return &rocket{}
	}
	return passive{}
}

// passive covers cockpits and tubes.
type passive struct{}

func (passive) perform(*World, *Module, string) bool { return false }
func (passive) update(*World, *Module) {}

type thruster struct {
	thrust float64
}

func (t *thruster) perform(w *World, m *Module, action string) bool {
	if action != ActionThrust {
		return false
	}
	if _, ok := m.battery.DrawPower(thrustDraw, 0); !ok {
		return true
	}
	dir := cp.ForAngle(m.WorldAngle(w))
	m.ApplyImpulse(w, dir.Mult(thrustImpulse), m.WorldPosition(w))
	t.thrust = 1
	return true
}

func (t *thruster) update(*World, *Module) {
	t.thrust = math.Max(t.thrust-thrustDecay, 0)
}

type cannon struct {
	timeout float64
}

func (c *cannon) perform(w *World, m *Module, action string) bool {
	if action != ActionFire {
		return false
	}
	if c.timeout > 0 {
		return true
	}
	if _, ok := m.battery.DrawPower(fireDraw, 0); !ok {
		return true
	}
	w.spawnRocket(m)
	c.timeout += fireCooldown
	return true
}

func (c *cannon) update(*World, *Module) {
	c.timeout = math.Max(c.timeout-cooldownDecay, 0)
}

type beam struct {
	ttl        int
	start, end cp.Vector
	hit        bool
}

func (b *beam) perform(w *World, m *Module, action string) bool {
	if action != ActionBeam {
		return false
	}
	if _, ok := m.battery.DrawPower(beamDraw, 0); !ok {
		return true
	}
	dir := cp.ForAngle(m.WorldAngle(w) + math.Pi)
	b.start = m.LocalToWorld(w, m.def.muzzle)
	b.end = b.start.Add(dir.Mult(w.opts.BeamRange))
	b.hit = false
	if target, point, ok := w.physics.SegmentFirst(b.start, b.end, m.group(w)); ok {
		b.end = point
		b.hit = true
		if other, ok := w.Module(target); ok {
			other.ApplyImpulse(w, dir.Mult(beamImpulse), point)
		}
	}
	b.ttl = 2
	return true
}

func (b *beam) update(*World, *Module) {
	if b.ttl > 0 {
		b.ttl--
	}
}

// rocket burns for rocketThrustTime and is removed after rocketLifetime.
type rocket struct {
	age float64
}

func (r *rocket) perform(*World, *Module, string) bool { return false }

func (r *rocket) update(w *World, m *Module) {
	r.age += w.opts.Dt
	switch {
	case r.age < rocketThrustTime:
		dir := cp.ForAngle(m.WorldAngle(w))
		m.ApplyImpulse(w, dir.Mult(rocketImpulse/float64(w.opts.SubSteps)), m.WorldPosition(w))
	case r.age > rocketLifetime:
		w.ScheduleRemove(m.id)
	}
}
