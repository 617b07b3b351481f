package obj

import (
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/ecs"
)

// Ship is a composite rigid body made of attached modules. Its body origin
// sits on the children's center of mass after every UpdateShip.
type Ship struct {
	id       ecs.Entity
	body     *cp.Body
	children []ecs.Entity
	cockpit  ecs.Entity
	mass     float64
	inertia  float64
}

func (s *Ship) ID() ecs.Entity { return s.id }
func (s *Ship) Body() *cp.Body { return s.body }
func (s *Ship) Mass() float64 { return s.mass }
func (s *Ship) Inertia() float64 { return s.inertia }
func (s *Ship) Empty() bool { return len(s.children) == 0 }
func (s *Ship) Cockpit() ecs.Entity { return s.cockpit }

// Children returns attached module handles in attach order.
func (s *Ship) Children() []ecs.Entity {
	return slices.Clone(s.children)
}

func (s *Ship) Has(e ecs.Entity) bool {
	return slices.Contains(s.children, e)
}

// Add attaches a standalone module and recomputes the composite body.
func (s *Ship) Add(w *World, m *Module) bool {
	return w.Attach(m, s)
}

// AddModules attaches every module, then recomputes once.
func (s *Ship) AddModules(w *World, ms ...*Module) int {
	n := 0
	for _, m := range ms {
		if w.attach(m, s) {
			n++
		}
	}
	if n > 0 {
		s.UpdateShip(w)
	}
	return n
}

// Remove detaches m if it belongs to this ship.
func (s *Ship) Remove(w *World, m *Module) bool {
	st, ok := m.Attachment()
	if !ok || st.Ship != s.id {
		return false
	}
	return w.Detach(m)
}

// SetCockpit picks the first attached cockpit as the control root.
func (s *Ship) SetCockpit(w *World) (*Module, bool) {
	s.cockpit = 0
	for _, e := range s.children {
		if m, ok := w.Module(e); ok && m.Kind() == KindCockpit {
			s.cockpit = e
			return m, true
		}
	}
	return nil, false
}

// UpdateShip recomputes mass, center of mass and moment of inertia from the
// children, moves the body origin onto the center of mass and shifts every
// child offset so world positions do not change.
func (s *Ship) UpdateShip(w *World) {
	if len(s.children) == 0 {
		s.mass, s.inertia = 0, 0
		w.physics.RemoveBody(s.body)
		return
	}

	var total, inertia float64
	var weighted cp.Vector
	for _, e := range s.children {
		m, ok := w.Module(e)
		if !ok {
			continue
		}
		st := m.state.(Attached)
		mass := m.def.mass
		total += mass
		weighted = weighted.Add(st.Offset.Mult(mass))
		verts := transformPoly(m.def.geometry, cp.Vector{}, st.AngleOffset)
		inertia += cp.MomentForPoly(mass, len(verts), verts, st.Offset, 0)
	}
	center := weighted.Mult(1 / total)

	// keep the velocity of every point on the body when the origin moves
	shift := s.body.LocalToWorld(center).Sub(s.body.Position())
	s.body.SetVelocityVector(s.body.Velocity().Add(shift.Perp().Mult(s.body.AngularVelocity())))
	s.body.SetPosition(s.body.LocalToWorld(center))
	s.body.SetMass(total)
	s.body.SetMoment(inertia)
	s.mass, s.inertia = total, inertia

	for _, e := range s.children {
		m, ok := w.Module(e)
		if !ok {
			continue
		}
		st := m.state.(Attached)
		st.Offset = st.Offset.Sub(center)
		m.state = st
		w.reshape(m, s.body, st.Offset, st.AngleOffset, shipGroup(s.id))
	}
	w.physics.Reindex(s.body)
}

// Attach moves a standalone module onto s and recomputes s. Attaching an
// already attached module is a no-op.
func (w *World) Attach(m *Module, s *Ship) bool {
	if !w.attach(m, s) {
		return false
	}
	s.UpdateShip(w)
	return true
}

func (w *World) attach(m *Module, s *Ship) bool {
	if m == nil || s == nil {
		return false
	}
	st, ok := m.state.(Standalone)
	if !ok {
		return false
	}
	body := st.Body

	if len(s.children) == 0 {
		s.body.SetPosition(body.Position())
		s.body.SetVelocityVector(body.Velocity())
		s.body.SetAngularVelocity(body.AngularVelocity())
		w.physics.AddBody(s.body)
	}

	offset := s.body.WorldToLocal(body.Position())
	angleOffset := body.Angle() - s.body.Angle()

	w.physics.RemoveShape(m.shape)
	w.physics.RemoveBody(body)

	m.state = Attached{Ship: s.id, Offset: offset, AngleOffset: angleOffset}
	w.reshape(m, s.body, offset, angleOffset, shipGroup(s.id))
	s.children = append(s.children, m.id)
	delete(w.free, m.id)

	w.log.Debug().Stringer("module", m.id).Stringer("ship", s.id).Msg("attached")
	return true
}

// Detach gives m its own body at its current world pose and velocity, drops
// all of its connections and recomputes the former ship. Detaching a
// standalone module is a no-op.
func (w *World) Detach(m *Module) bool {
	st, ok := m.state.(Attached)
	if !ok {
		return false
	}
	s, _ := w.Ship(st.Ship)
	w.detach(m)
	if s != nil {
		s.UpdateShip(w)
		if s.cockpit == m.id {
			s.SetCockpit(w)
		}
	}
	return true
}

func (w *World) detach(m *Module) {
	st := m.state.(Attached)
	pos := m.WorldPosition(w)
	angle := m.WorldAngle(w)
	vel := m.WorldVelocity(w)
	spin := m.AngularVelocity(w)

	w.physics.RemoveShape(m.shape)

	body := cp.NewBody(m.def.mass, m.def.moment)
	body.SetPosition(pos)
	body.SetAngle(angle)
	body.SetVelocityVector(vel)
	body.SetAngularVelocity(spin)
	body.UserData = m.id
	w.physics.AddBody(body)

	m.state = Standalone{Body: body}
	w.reshape(m, body, cp.Vector{}, 0, moduleGroup(m.id))

	if s, ok := w.Ship(st.Ship); ok {
		s.children = slices.DeleteFunc(s.children, func(e ecs.Entity) bool { return e == m.id })
	}
	if m.Meta.Compatible {
		w.free[m.id] = struct{}{}
	}
	w.graph.RemoveForObject(m.id)
	m.Meta.ParentMount, m.Meta.MountOn = -1, -1

	w.log.Debug().Stringer("module", m.id).Stringer("ship", st.Ship).Msg("detached")
}
