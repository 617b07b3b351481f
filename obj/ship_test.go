package obj

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachDetachRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		pos   cp.Vector
		deg   float64
		vel   cp.Vector
		spin  float64
		shipX float64
	}{
		{"still", cp.Vector{X: 100, Y: 50}, 30, cp.Vector{}, 0, 0},
		{"moving", cp.Vector{X: -40, Y: 12}, -90, cp.Vector{X: 5, Y: -2}, 0, 300},
		{"spinning", cp.Vector{X: 7, Y: 7}, 180, cp.Vector{X: 1, Y: 1}, 0.5, -20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld(t)
			m := mustModule(t, w, KindThruster, c.pos.X, c.pos.Y, c.deg, nil)
			body := m.Body(w)
			body.SetVelocityVector(c.vel)
			body.SetAngularVelocity(c.spin)
			angle := body.Angle()

			s := w.NewShip(c.shipX, 0, 0)
			require.True(t, w.Attach(m, s))

			st, ok := m.Attachment()
			require.True(t, ok)
			assert.Equal(t, s.ID(), st.Ship)
			assertVec(t, c.pos, m.WorldPosition(w))
			assert.InDelta(t, angle, m.WorldAngle(w), eps)
			assertVec(t, c.vel, s.Body().Velocity())
			assert.InDelta(t, c.spin, s.Body().AngularVelocity(), eps)
			assert.NotContains(t, w.FreeModules(), m)

			require.True(t, w.Detach(m))
			_, attached := m.Attachment()
			assert.False(t, attached)
			assertVec(t, c.pos, m.Body(w).Position())
			assert.InDelta(t, angle, m.Body(w).Angle(), eps)
			assertVec(t, c.vel, m.Body(w).Velocity())
			assert.InDelta(t, c.spin, m.Body(w).AngularVelocity(), eps)
			assert.Contains(t, w.FreeModules(), m)

			assert.True(t, s.Empty())
			assert.Zero(t, s.Mass())
			assert.False(t, w.physics.HasBody(s.Body()), "empty ship body must leave the space")
		})
	}
}

func TestAttachIsIdempotent(t *testing.T) {
	w := newTestWorld(t)
	m := mustModule(t, w, KindTube, 10, 10, 0, nil)
	s := w.NewShip(0, 0, 0)
	other := w.NewShip(50, 50, 0)

	require.True(t, s.Add(w, m))
	before := m.WorldPosition(w)
	assert.False(t, s.Add(w, m))
	assert.False(t, other.Add(w, m))
	assert.Len(t, s.Children(), 1)
	assert.True(t, other.Empty())
	assertVec(t, before, m.WorldPosition(w))

	assert.False(t, other.Remove(w, m), "not a child of other")
	assert.True(t, s.Remove(w, m))
	assert.False(t, w.Detach(m))
}

func TestShipMassAndCenter(t *testing.T) {
	w := newTestWorld(t)
	a := mustModule(t, w, KindCockpit, 0, 0, 0, nil)
	b := mustModule(t, w, KindTube, 100, 0, 90, nil)
	c := mustModule(t, w, KindThruster, 40, -60, 45, nil)

	s := w.NewShip(500, 500, 0.3)
	assert.Equal(t, 3, s.AddModules(w, a, b, c))

	assert.Equal(t, a.Mass()+b.Mass()+c.Mass(), s.Mass())
	assert.Greater(t, s.Inertia(), 0.0)
	assertVec(t, cp.Vector{X: 140.0 / 3, Y: -20}, s.Body().Position())

	var weighted cp.Vector
	for _, m := range []*Module{a, b, c} {
		st, ok := m.Attachment()
		require.True(t, ok)
		weighted = weighted.Add(st.Offset.Mult(m.Mass()))
	}
	assertVec(t, cp.Vector{}, weighted)

	assertVec(t, cp.Vector{X: 0, Y: 0}, a.WorldPosition(w))
	assertVec(t, cp.Vector{X: 100, Y: 0}, b.WorldPosition(w))
	assertVec(t, cp.Vector{X: 40, Y: -60}, c.WorldPosition(w))
	assert.InDelta(t, math.Pi/2, b.WorldAngle(w), eps)

	require.True(t, w.Detach(b))
	assert.Equal(t, a.Mass()+c.Mass(), s.Mass())
	assertVec(t, cp.Vector{X: 20, Y: -30}, s.Body().Position())
	assertVec(t, cp.Vector{X: 0, Y: 0}, a.WorldPosition(w))
	assertVec(t, cp.Vector{X: 40, Y: -60}, c.WorldPosition(w))
	assert.ElementsMatch(t, s.Children(), []ecs.Entity{a.ID(), c.ID()})
}

func TestRemoveModuleFromShip(t *testing.T) {
	w := newTestWorld(t)
	a := mustModule(t, w, KindCockpit, 0, 0, 0, nil)
	b := mustModule(t, w, KindTube, 60, 0, 0, nil)
	s := w.NewShip(0, 0, 0)
	s.AddModules(w, a, b)
	s.SetCockpit(w)
	_, err := w.graph.Connect(a.ID(), b.ID(), 1, 0)
	require.NoError(t, err)

	require.True(t, w.RemoveModule(a.ID()))
	_, ok := w.Module(a.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, w.graph.Len())
	assert.Equal(t, b.Mass(), s.Mass())
	assert.False(t, s.Cockpit().Valid(), "cockpit handle cleared when the cockpit leaves")
	assert.False(t, w.RemoveModule(a.ID()))
}

func TestRemoveShip(t *testing.T) {
	w := newTestWorld(t)
	ship, _, _, _, _ := chainShip(t, w)
	loose := mustModule(t, w, KindTube, 500, 500, 0, nil)

	assert.Equal(t, 4, w.RemoveShip(ship))
	assert.True(t, ship.Empty())
	assert.False(t, w.Physics().HasBody(ship.Body()))
	assert.Zero(t, w.Graph().Len())

	mods := w.Modules()
	require.Len(t, mods, 1)
	assert.Equal(t, loose.ID(), mods[0].ID())
	assert.Zero(t, w.RemoveShip(nil))
}

func TestSpinningShipKeepsChildVelocities(t *testing.T) {
	w := newTestWorld(t)
	a := mustModule(t, w, KindCockpit, 0, 0, 0, nil)
	b := mustModule(t, w, KindTube, 60, 0, 0, nil)
	c := mustModule(t, w, KindThruster, 0, 60, 0, nil)
	s := w.NewShip(0, 0, 0)
	require.Equal(t, 3, s.AddModules(w, a, b, c))
	s.Body().SetVelocityVector(cp.Vector{X: 3, Y: -1})
	s.Body().SetAngularVelocity(1)

	snapshot := func() []cp.Vector {
		return []cp.Vector{a.WorldVelocity(w), c.WorldVelocity(w)}
	}
	before := snapshot()

	tube := mustModule(t, w, KindTube, 0, 200, 0, nil)
	require.True(t, w.Attach(tube, s))
	for i, v := range snapshot() {
		assertVec(t, before[i], v, "child %d after attach", i)
	}
	assert.InDelta(t, 1, s.Body().AngularVelocity(), eps)

	require.True(t, w.Detach(b))
	for i, v := range snapshot() {
		assertVec(t, before[i], v, "child %d after detach", i)
	}
}
